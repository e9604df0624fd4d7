// Package jobconfig decodes job resource configurations and uploaded file
// sets from documents and command-line flags.
package jobconfig

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/me/jobscript/internal/transform"
	"github.com/me/jobscript/pkg/jobtmpl"
)

var timePattern = regexp.MustCompile(`^\d+(:\d+){0,2}$`)

// Defaults returns the configuration used when a field is not given.
func Defaults() jobtmpl.JobResourceConfig {
	return jobtmpl.JobResourceConfig{
		Nodes:       1,
		NTasks:      1,
		CPUsPerTask: 1,
		Mem:         "4G",
		Time:        "01:00:00",
	}
}

// ParseConfig decodes a YAML or JSON job configuration over Defaults and
// validates it.
func ParseConfig(data []byte) (jobtmpl.JobResourceConfig, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return jobtmpl.JobResourceConfig{}, fmt.Errorf("parse job config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return jobtmpl.JobResourceConfig{}, err
	}
	return cfg, nil
}

// Validate checks integer fields are positive and mem and time match the
// Slurm literal grammar.
func Validate(cfg jobtmpl.JobResourceConfig) error {
	var errs []error
	positive := func(name string, v int) {
		if v < 1 {
			errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", name, v))
		}
	}
	positive("nodes", cfg.Nodes)
	positive("ntasks", cfg.NTasks)
	positive("cpus_per_task", cfg.CPUsPerTask)

	if _, err := transform.ParseMemoryKB(cfg.Mem); err != nil {
		errs = append(errs, fmt.Errorf("mem: %w", err))
	}
	if !timePattern.MatchString(cfg.Time) {
		errs = append(errs, fmt.Errorf("time: %w: %q, expected HH:MM:SS, MM:SS or SS", jobtmpl.ErrInvalidFormat, cfg.Time))
	}
	if cfg.GPU != nil && *cfg.GPU < 0 {
		errs = append(errs, fmt.Errorf("gpu must not be negative, got %d", *cfg.GPU))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid job config: %w", errors.Join(errs...))
	}
	return nil
}

// ParseFiles decodes a YAML or JSON mapping of file key to path or paths.
func ParseFiles(data []byte) (jobtmpl.UploadedFiles, error) {
	files := make(jobtmpl.UploadedFiles)
	if err := yaml.Unmarshal(data, &files); err != nil {
		return nil, fmt.Errorf("parse uploaded files: %w", err)
	}
	return files, nil
}

// ParseFileFlags builds an uploaded file set from key=path arguments.
// Repeating a key collects its paths into a multi-file entry, as does a
// single key=path1,path2 argument.
func ParseFileFlags(args []string) (jobtmpl.UploadedFiles, error) {
	files := make(jobtmpl.UploadedFiles)
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" || value == "" {
			return nil, fmt.Errorf("invalid file argument %q, expected key=path", arg)
		}
		paths := strings.Split(value, ",")
		existing, seen := files[key]
		switch {
		case seen:
			files[key] = jobtmpl.MultiplePaths(append(existing.Paths, paths...)...)
		case len(paths) > 1:
			files[key] = jobtmpl.MultiplePaths(paths...)
		default:
			files[key] = jobtmpl.SinglePath(value)
		}
	}
	return files, nil
}

// Merge returns a copy of base with every entry of overlay applied on top.
func Merge(base, overlay jobtmpl.UploadedFiles) jobtmpl.UploadedFiles {
	out := make(jobtmpl.UploadedFiles, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
