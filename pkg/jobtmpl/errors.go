package jobtmpl

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrUnknownTransform  = errors.New("unknown transform")
	ErrInvalidFormat     = errors.New("invalid format")
	ErrUnsupportedSource = errors.New("unsupported source type")
	ErrFieldNotFound     = errors.New("field not found")
	ErrMissingFile       = errors.New("required file not uploaded")
)

// TransformError reports a failed transform invocation.
type TransformError struct {
	Transform string
	Value     string
	Err       error
}

func (e *TransformError) Error() string {
	if errors.Is(e.Err, ErrUnknownTransform) {
		return fmt.Sprintf("%v: %q", e.Err, e.Transform)
	}
	return fmt.Sprintf("transform %s(%q): %v", e.Transform, e.Value, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// SourceError reports a dynamic variable source path that could not be resolved.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %q: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// VariableError attributes a resolution failure to a template variable.
type VariableError struct {
	Variable string
	Err      error
}

func (e *VariableError) Error() string {
	return fmt.Sprintf("variable %s: %v", e.Variable, e.Err)
}

func (e *VariableError) Unwrap() error {
	return e.Err
}

// MissingFileError reports a required input file with no upload.
type MissingFileError struct {
	Variable    string
	Key         string
	Description string
}

func (e *MissingFileError) Error() string {
	desc := e.Description
	if desc == "" {
		desc = e.Variable
	}
	return fmt.Sprintf("%v: %s (key: %s)", ErrMissingFile, desc, e.Key)
}

func (e *MissingFileError) Unwrap() error {
	return ErrMissingFile
}
