// Package resolve turns a command template's variable declarations into a
// flat name to value mapping, using a job resource configuration for dynamic
// variables and the uploaded file set for input-file variables.
package resolve

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/me/jobscript/internal/logging"
	"github.com/me/jobscript/internal/transform"
	"github.com/me/jobscript/pkg/jobtmpl"
)

// SlurmNamespace is the only supported source namespace.
const SlurmNamespace = "slurm"

// Resolver resolves template variables. It holds no state besides its
// logger and is safe for concurrent use.
type Resolver struct {
	logger *slog.Logger
}

// New creates a Resolver. A nil logger discards diagnostics.
func New(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Resolver{logger: logger.With("component", "resolver")}
}

// ParseSource validates a source path of the form slurm.<field> and returns
// the configuration field it names.
func ParseSource(path string) (jobtmpl.ConfigField, error) {
	ns, name, _ := strings.Cut(path, ".")
	if ns != SlurmNamespace {
		return "", &jobtmpl.SourceError{Source: path, Err: fmt.Errorf("%w: %q", jobtmpl.ErrUnsupportedSource, ns)}
	}
	field, ok := jobtmpl.ParseConfigField(name)
	if !ok {
		return "", &jobtmpl.SourceError{Source: path, Err: fmt.Errorf("%w: %q", jobtmpl.ErrFieldNotFound, name)}
	}
	return field, nil
}

// ResolveSourcePath reads the configuration field named by path.
func ResolveSourcePath(path string, cfg jobtmpl.JobResourceConfig) (jobtmpl.Value, error) {
	field, err := ParseSource(path)
	if err != nil {
		return jobtmpl.Value{}, err
	}
	v, ok := cfg.Lookup(field)
	if !ok {
		return jobtmpl.Value{}, &jobtmpl.SourceError{Source: path, Err: fmt.Errorf("%w: %q is not set", jobtmpl.ErrFieldNotFound, field)}
	}
	return v, nil
}

// ResolveDynamicVariable resolves def's source and applies its transforms.
func ResolveDynamicVariable(def jobtmpl.DynamicVariable, cfg jobtmpl.JobResourceConfig) (jobtmpl.Value, error) {
	v, err := ResolveSourcePath(def.Source, cfg)
	if err != nil {
		return jobtmpl.Value{}, err
	}
	return transform.ApplyChain(def.Transform, v)
}

// dynamicResult is the outcome of resolving one dynamic variable. Skipped is
// set when an optional variable failed and is left out of the result.
type dynamicResult struct {
	Value   jobtmpl.Value
	Skipped error
}

func resolveDynamic(name string, def jobtmpl.DynamicVariable, cfg jobtmpl.JobResourceConfig) (dynamicResult, error) {
	v, err := ResolveDynamicVariable(def, cfg)
	switch {
	case err == nil:
		return dynamicResult{Value: v}, nil
	case def.Required:
		return dynamicResult{}, &jobtmpl.VariableError{Variable: name, Err: err}
	default:
		return dynamicResult{Skipped: err}, nil
	}
}

// ResolveDynamicVariables resolves every dynamic variable of tmpl. A failing
// required variable aborts resolution; a failing optional variable is
// omitted and logged.
func (r *Resolver) ResolveDynamicVariables(tmpl *jobtmpl.CommandTemplate, cfg jobtmpl.JobResourceConfig) (jobtmpl.ResolvedVariables, error) {
	out := make(jobtmpl.ResolvedVariables, len(tmpl.Variables.Dynamic))
	for _, name := range sortedKeys(tmpl.Variables.Dynamic) {
		res, err := resolveDynamic(name, tmpl.Variables.Dynamic[name], cfg)
		if err != nil {
			return nil, err
		}
		if res.Skipped != nil {
			r.logger.Warn("skipping optional variable",
				"template", tmpl.TemplateID, "variable", name, "error", res.Skipped)
			continue
		}
		out[name] = res.Value
	}
	return out, nil
}

// ResolveInputFileVariables binds FILE_<KEY> (and FILE_<KEY>_COUNT for
// multi-file uploads) for every input-file variable with an upload.
func ResolveInputFileVariables(tmpl *jobtmpl.CommandTemplate, files jobtmpl.UploadedFiles) (jobtmpl.ResolvedVariables, error) {
	out := make(jobtmpl.ResolvedVariables)
	for _, name := range sortedKeys(tmpl.Variables.InputFiles) {
		def := tmpl.Variables.InputFiles[name]
		paths, ok := files[def.FileKey]
		if !ok {
			if def.Required {
				return nil, &jobtmpl.MissingFileError{Variable: name, Key: def.FileKey, Description: def.Description}
			}
			continue
		}
		out[jobtmpl.FileVarName(def.FileKey)] = jobtmpl.StringValue(paths.Joined())
		if paths.Multi {
			out[jobtmpl.FileCountVarName(def.FileKey)] = jobtmpl.IntValue(int64(len(paths.Paths)))
		}
	}
	return out, nil
}

// MissingFiles returns one error per required input file without an upload,
// in variable name order.
func MissingFiles(tmpl *jobtmpl.CommandTemplate, files jobtmpl.UploadedFiles) []*jobtmpl.MissingFileError {
	var missing []*jobtmpl.MissingFileError
	for _, name := range sortedKeys(tmpl.Variables.InputFiles) {
		def := tmpl.Variables.InputFiles[name]
		if !def.Required {
			continue
		}
		if _, ok := files[def.FileKey]; !ok {
			missing = append(missing, &jobtmpl.MissingFileError{Variable: name, Key: def.FileKey, Description: def.Description})
		}
	}
	return missing
}

// ResolveAll merges dynamic and file variables. File variables are merged
// last and win on a name collision.
func (r *Resolver) ResolveAll(tmpl *jobtmpl.CommandTemplate, cfg jobtmpl.JobResourceConfig, files jobtmpl.UploadedFiles) (jobtmpl.ResolvedVariables, error) {
	vars, err := r.ResolveDynamicVariables(tmpl, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve dynamic variables: %w", err)
	}
	fileVars, err := ResolveInputFileVariables(tmpl, files)
	if err != nil {
		return nil, fmt.Errorf("resolve input files: %w", err)
	}
	for k, v := range fileVars {
		vars[k] = v
	}
	r.logger.Debug("resolved variables", "template", tmpl.TemplateID, "count", len(vars))
	return vars, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
