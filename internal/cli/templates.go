package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/jobscript/internal/subst"
	"github.com/me/jobscript/pkg/jobtmpl"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect the template catalog",
	}
	cmd.AddCommand(newTemplatesListCmd(), newTemplatesShowCmd())
	return cmd
}

func newTemplatesListCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog()
			if err != nil {
				return err
			}
			templates := c.List()
			if category != "" {
				templates = c.ByCategory(jobtmpl.Category(category))
			}

			w := cmd.OutOrStdout()
			if len(templates) == 0 {
				fmt.Fprintln(w, "No templates found.")
				return nil
			}
			fmt.Fprintf(w, "%-30s  %-15s  %s\n", "TEMPLATE ID", "CATEGORY", "NAME")
			fmt.Fprintf(w, "%-30s  %-15s  %s\n", "-----------", "--------", "----")
			for _, t := range templates {
				fmt.Fprintf(w, "%-30s  %-15s  %s\n", t.TemplateID, t.Category, t.DisplayName)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only list templates in this category")
	return cmd
}

func newTemplatesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <template-id>",
		Short: "Show a template's command, variables and outputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := lookupTemplate(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			fmt.Fprintf(w, "Template:     %s\n", t.TemplateID)
			fmt.Fprintf(w, "Name:         %s\n", t.DisplayName)
			if t.Category != "" {
				fmt.Fprintf(w, "Category:     %s\n", t.Category)
			}
			if t.Description != "" {
				fmt.Fprintf(w, "Description:  %s\n", strings.TrimSpace(t.Description))
			}
			fmt.Fprintf(w, "Command:      %s\n", t.Command.Format)
			fmt.Fprintf(w, "MPI:          %t\n", t.Command.RequiresMPI)
			if names := subst.Names(t.Command.Format); len(names) > 0 {
				fmt.Fprintf(w, "Placeholders: %s\n", strings.Join(names, ", "))
			}

			if len(t.Variables.Dynamic) > 0 {
				fmt.Fprintln(w, "\nDynamic variables:")
				for _, name := range sortedNames(t.Variables.Dynamic) {
					d := t.Variables.Dynamic[name]
					xform := strings.Join(d.Transform, " | ")
					if xform == "" {
						xform = "-"
					}
					fmt.Fprintf(w, "  %-20s  %-20s  %-30s  %s\n", name, d.Source, xform, requiredLabel(d.Required))
				}
			}
			if len(t.Variables.InputFiles) > 0 {
				fmt.Fprintln(w, "\nInput files:")
				for _, name := range sortedNames(t.Variables.InputFiles) {
					f := t.Variables.InputFiles[name]
					fmt.Fprintf(w, "  %-20s  %-20s  %-30s  %s\n", name, jobtmpl.FileVarName(f.FileKey), f.Pattern, requiredLabel(f.Required))
				}
			}
			if len(t.Variables.OutputFiles) > 0 {
				fmt.Fprintln(w, "\nOutput files:")
				for _, name := range sortedNames(t.Variables.OutputFiles) {
					o := t.Variables.OutputFiles[name]
					collect := ""
					if o.Collect {
						collect = "collect"
					}
					fmt.Fprintf(w, "  %-20s  %-30s  %s\n", name, o.Pattern, collect)
				}
			}
			return nil
		},
	}
}

func requiredLabel(required bool) string {
	if required {
		return "required"
	}
	return "optional"
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
