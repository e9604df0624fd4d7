package resolve

import (
	"sort"

	"github.com/me/jobscript/pkg/jobtmpl"
)

// ValidationResult lists required variables absent from a resolved mapping.
type ValidationResult struct {
	Valid       bool     `json:"valid"`
	MissingVars []string `json:"missing_vars,omitempty"`
}

// ValidateResolvedVariables checks an already resolved mapping for required
// dynamic variables and required input files. Dynamic variables are
// reported by name, files by their FILE_ variable name.
func ValidateResolvedVariables(tmpl *jobtmpl.CommandTemplate, resolved jobtmpl.ResolvedVariables) ValidationResult {
	var missing []string
	for name, def := range tmpl.Variables.Dynamic {
		if !def.Required {
			continue
		}
		if _, ok := resolved[name]; !ok {
			missing = append(missing, name)
		}
	}
	for _, def := range tmpl.Variables.InputFiles {
		if !def.Required {
			continue
		}
		fileVar := jobtmpl.FileVarName(def.FileKey)
		if _, ok := resolved[fileVar]; !ok {
			missing = append(missing, fileVar)
		}
	}
	sort.Strings(missing)
	return ValidationResult{Valid: len(missing) == 0, MissingVars: missing}
}
