// Package script assembles Slurm batch scripts from command templates.
package script

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/me/jobscript/internal/logging"
	"github.com/me/jobscript/internal/resolve"
	"github.com/me/jobscript/internal/subst"
	"github.com/me/jobscript/pkg/jobtmpl"
)

const (
	// ImageVar is bound to the Apptainer image path in every generated script.
	ImageVar = "APPTAINER_IMAGE"

	DefaultOutputPattern = "slurm-%j.out"
	DefaultErrorPattern  = "slurm-%j.err"
)

// ErrNoTemplate is returned when Options carries no template.
var ErrNoTemplate = errors.New("no command template given")

// Options describes one script generation request.
type Options struct {
	Template  *jobtmpl.CommandTemplate
	Config    jobtmpl.JobResourceConfig
	Files     jobtmpl.UploadedFiles
	ImagePath string

	// JobName defaults to the template ID.
	JobName string
	// OutputFile and ErrorFile default to DefaultOutputPattern and
	// DefaultErrorPattern.
	OutputFile string
	ErrorFile  string
}

// GeneratedScript is a complete batch script plus its sections.
type GeneratedScript struct {
	Header       string                    `json:"header"`
	Environment  string                    `json:"environment"`
	PreCommands  string                    `json:"pre_commands,omitempty"`
	MainCommand  string                    `json:"main_command"`
	PostCommands string                    `json:"post_commands,omitempty"`
	FullScript   string                    `json:"full_script"`
	Variables    jobtmpl.ResolvedVariables `json:"variables"`
}

// Generator builds scripts. It is stateless apart from its logger and may be
// shared between goroutines.
type Generator struct {
	resolver *resolve.Resolver
	logger   *slog.Logger
}

// NewGenerator creates a Generator. A nil logger discards diagnostics.
func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Generator{
		resolver: resolve.New(logger),
		logger:   logger.With("component", "generator"),
	}
}

// resolve resolves all template variables and binds the image path.
func (g *Generator) resolve(tmpl *jobtmpl.CommandTemplate, cfg jobtmpl.JobResourceConfig, files jobtmpl.UploadedFiles, imagePath string) (jobtmpl.ResolvedVariables, error) {
	if tmpl == nil {
		return nil, ErrNoTemplate
	}
	vars, err := g.resolver.ResolveAll(tmpl, cfg, files)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", tmpl.TemplateID, err)
	}
	vars[ImageVar] = jobtmpl.StringValue(imagePath)
	return vars, nil
}

// GenerateCommand resolves tmpl's variables and substitutes them into its
// command format.
func (g *Generator) GenerateCommand(tmpl *jobtmpl.CommandTemplate, cfg jobtmpl.JobResourceConfig, files jobtmpl.UploadedFiles, imagePath string) (string, error) {
	vars, err := g.resolve(tmpl, cfg, files, imagePath)
	if err != nil {
		return "", err
	}
	return subst.Substitute(tmpl.Command.Format, vars), nil
}

// GenerateSlurmScript builds the full batch script. Any resolution failure
// is returned as an error.
func (g *Generator) GenerateSlurmScript(opts Options) (*GeneratedScript, error) {
	vars, err := g.resolve(opts.Template, opts.Config, opts.Files, opts.ImagePath)
	if err != nil {
		return nil, err
	}
	tmpl := opts.Template

	out := &GeneratedScript{
		Header:       header(opts),
		Environment:  environment(vars),
		PreCommands:  commandBlock("# Pre-processing commands", tmpl.PreCommands, vars),
		MainCommand:  "# Main command\n" + mpiPrefix(tmpl, opts.Config.NTasks) + subst.Substitute(tmpl.Command.Format, vars),
		PostCommands: commandBlock("# Post-processing commands", tmpl.PostCommands, vars),
		Variables:    vars,
	}

	sections := []string{out.Header, out.Environment}
	for _, s := range []string{out.PreCommands, out.MainCommand, out.PostCommands} {
		if s != "" {
			sections = append(sections, s)
		}
	}
	sections = append(sections, completion(tmpl))
	out.FullScript = strings.Join(sections, "\n\n") + "\n"

	g.logger.Debug("generated script", "template", tmpl.TemplateID, "variables", len(vars), "bytes", len(out.FullScript))
	return out, nil
}

// mpiPrefix returns the mpirun launcher for MPI templates running more than
// one task.
func mpiPrefix(tmpl *jobtmpl.CommandTemplate, ntasks int) string {
	if tmpl.Command.RequiresMPI && ntasks > 1 {
		return fmt.Sprintf("mpirun -np %d ", ntasks)
	}
	return ""
}

func header(opts Options) string {
	cfg := opts.Config
	jobName := opts.JobName
	if jobName == "" {
		jobName = opts.Template.TemplateID
	}
	outFile := opts.OutputFile
	if outFile == "" {
		outFile = DefaultOutputPattern
	}
	errFile := opts.ErrorFile
	if errFile == "" {
		errFile = DefaultErrorPattern
	}

	lines := []string{"#!/bin/bash"}
	directive := func(name string, value any) {
		lines = append(lines, fmt.Sprintf("#SBATCH --%s=%v", name, value))
	}
	if jobName != "" {
		directive("job-name", jobName)
	}
	if cfg.Partition != "" {
		directive("partition", cfg.Partition)
	}
	directive("nodes", cfg.Nodes)
	directive("ntasks", cfg.NTasks)
	directive("cpus-per-task", cfg.CPUsPerTask)
	directive("mem", cfg.Mem)
	directive("time", cfg.Time)
	if gpus := cfg.GPUCount(); gpus > 0 {
		directive("gres", fmt.Sprintf("gpu:%d", gpus))
	}
	directive("output", outFile)
	directive("error", errFile)
	return strings.Join(lines, "\n")
}

// environment exports every resolved variable, FILE_ variables first.
func environment(vars jobtmpl.ResolvedVariables) string {
	lines := []string{"# Environment variables"}
	for _, name := range vars.Names() {
		lines = append(lines, exportLine(name, vars[name]))
	}
	return strings.Join(lines, "\n")
}

func exportLine(name string, v jobtmpl.Value) string {
	if v.IsNumber() {
		return fmt.Sprintf("export %s=%s", name, v.String())
	}
	return fmt.Sprintf("export %s=%s", name, quote(v.String()))
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`")

// quote wraps s in double quotes. Parameter expansion stays live.
func quote(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}

// commandBlock substitutes each command and prefixes the block with title.
// An empty command list yields an empty block.
func commandBlock(title string, commands []string, vars jobtmpl.ResolvedVariables) string {
	if len(commands) == 0 {
		return ""
	}
	lines := make([]string, 0, len(commands)+1)
	lines = append(lines, title)
	for _, c := range commands {
		lines = append(lines, subst.Substitute(c, vars))
	}
	return strings.Join(lines, "\n")
}

func completion(tmpl *jobtmpl.CommandTemplate) string {
	name := tmpl.DisplayName
	if name == "" {
		name = tmpl.TemplateID
	}
	return fmt.Sprintf("echo %s", quote("Job completed: "+name))
}
