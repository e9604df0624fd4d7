package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/jobscript/internal/script"
)

func newCommandCmd() *cobra.Command {
	var jf jobFlags
	cmd := &cobra.Command{
		Use:   "command <template-id>",
		Short: "Print the resolved command line of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := lookupTemplate(args[0])
			if err != nil {
				return err
			}
			opts, err := jf.options(cmd, tmpl)
			if err != nil {
				return err
			}
			line, err := script.NewGenerator(logger).GenerateCommand(tmpl, opts.Config, opts.Files, opts.ImagePath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}
	jf.register(cmd)
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var jf jobFlags
	var outPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "generate <template-id>",
		Short: "Generate a Slurm batch script",
		Long: `Resolves the template against the job configuration and uploaded files and
prints the batch script. Any resolution failure (missing required file,
unknown transform, malformed mem or time) aborts with an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := lookupTemplate(args[0])
			if err != nil {
				return err
			}
			opts, err := jf.options(cmd, tmpl)
			if err != nil {
				return err
			}
			generated, err := script.NewGenerator(logger).GenerateSlurmScript(opts)
			if err != nil {
				return err
			}

			out := generated.FullScript
			if asJSON {
				data, err := json.MarshalIndent(generated, "", "  ")
				if err != nil {
					return fmt.Errorf("encode script: %w", err)
				}
				out = string(data) + "\n"
			}

			if outPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			}
			if err := os.WriteFile(outPath, []byte(out), 0o755); err != nil {
				return fmt.Errorf("write script: %w", err)
			}
			logger.Info("script written", "template", tmpl.TemplateID, "path", outPath)
			return nil
		},
	}
	jf.register(cmd)
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the script to a file instead of stdout")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the script sections and resolved variables as JSON")
	return cmd
}

// errInvalidPreview makes the preview command exit non-zero after printing.
var errInvalidPreview = errors.New("script preview has errors")

func newPreviewCmd() *cobra.Command {
	var jf jobFlags
	var asText bool

	cmd := &cobra.Command{
		Use:   "preview <template-id>",
		Short: "Validate a job and preview its script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := lookupTemplate(args[0])
			if err != nil {
				return err
			}
			opts, err := jf.options(cmd, tmpl)
			if err != nil {
				return err
			}
			p := script.NewGenerator(logger).GeneratePreview(opts)

			w := cmd.OutOrStdout()
			if asText {
				printPreview(w, p)
			} else {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(p); err != nil {
					return fmt.Errorf("encode preview: %w", err)
				}
			}
			if !p.Valid {
				return errInvalidPreview
			}
			return nil
		},
	}
	jf.register(cmd)
	cmd.Flags().BoolVar(&asText, "text", false, "Print a human-readable report instead of JSON")
	return cmd
}

func printPreview(w io.Writer, p *script.ScriptPreview) {
	status := "VALID"
	if !p.Valid {
		status = "INVALID"
	}
	rs := p.ResourceSummary
	mem := rs.Memory
	if rs.MemoryHuman != "" {
		mem += " (" + rs.MemoryHuman + ")"
	}
	fmt.Fprintf(w, "Status:    %s\n", status)
	fmt.Fprintf(w, "Nodes:     %d\n", rs.Nodes)
	fmt.Fprintf(w, "Cores:     %d\n", rs.Cores)
	fmt.Fprintf(w, "Memory:    %s\n", mem)
	fmt.Fprintf(w, "Time:      %s\n", rs.Time)
	if rs.GPUs > 0 {
		fmt.Fprintf(w, "GPUs:      %d\n", rs.GPUs)
	}
	for _, e := range p.Errors {
		fmt.Fprintf(w, "ERROR:     %s\n", e)
	}
	for _, warn := range p.Warnings {
		fmt.Fprintf(w, "WARNING:   %s\n", warn)
	}
	if p.Script != "" {
		fmt.Fprintf(w, "\n%s\n%s", strings.Repeat("-", 60), p.Script)
	}
}

func newMainExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "main-exec <template-id>",
		Short: "Print the template as an embeddable script fragment",
		Long: `Prints the template's commands with placeholders left for the shell to
expand, for embedding in a larger batch script that exports the variables.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := lookupTemplate(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), script.GenerateMainExecScript(tmpl, settings.Image))
			return nil
		},
	}
	return cmd
}
