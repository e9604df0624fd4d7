package script

import (
	"fmt"
	"strings"

	"github.com/me/jobscript/pkg/jobtmpl"
)

const rule = "# =========================================================="

// GenerateMainExecScript renders tmpl as a script fragment meant to be
// embedded in a larger batch script. Placeholders stay unresolved and are
// expanded by the shell from the exported environment. For MPI templates
// the task count is read from SLURM_NTASKS at run time.
func GenerateMainExecScript(tmpl *jobtmpl.CommandTemplate, imagePath string) string {
	var b strings.Builder

	b.WriteString(rule + "\n")
	name := tmpl.DisplayName
	if name == "" {
		name = tmpl.TemplateID
	}
	fmt.Fprintf(&b, "# Template: %s (%s)\n", name, tmpl.TemplateID)
	if tmpl.Description != "" {
		for _, line := range strings.Split(strings.TrimSpace(tmpl.Description), "\n") {
			fmt.Fprintf(&b, "# %s\n", line)
		}
	}
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "# Command format: %s\n", tmpl.Command.Format)

	if imagePath != "" {
		fmt.Fprintf(&b, "\nexport %s=%s\n", ImageVar, quote(imagePath))
	}

	if len(tmpl.PreCommands) > 0 {
		b.WriteString("\n# Pre-processing commands\n")
		for _, c := range tmpl.PreCommands {
			b.WriteString(c + "\n")
		}
	}

	b.WriteString("\n# Main command\n")
	if tmpl.Command.RequiresMPI {
		b.WriteString(`if [ "${SLURM_NTASKS:-1}" -gt 1 ]; then` + "\n")
		fmt.Fprintf(&b, "    mpirun -np ${SLURM_NTASKS} %s\n", tmpl.Command.Format)
		b.WriteString("else\n")
		fmt.Fprintf(&b, "    %s\n", tmpl.Command.Format)
		b.WriteString("fi\n")
	} else {
		b.WriteString(tmpl.Command.Format + "\n")
	}

	if len(tmpl.PostCommands) > 0 {
		b.WriteString("\n# Post-processing commands\n")
		for _, c := range tmpl.PostCommands {
			b.WriteString(c + "\n")
		}
	}

	return b.String()
}
