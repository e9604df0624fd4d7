// Package jobtmpl defines command templates, job resource configuration and
// the values produced when a template is resolved against them.
package jobtmpl

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category is an informational tag on a template.
type Category string

const (
	CategorySimulation     Category = "simulation"
	CategoryPreprocessing  Category = "preprocessing"
	CategoryPostprocessing Category = "postprocessing"
	CategoryAnalysis       Category = "analysis"
	CategoryVisualization  Category = "visualization"
	CategoryUtility        Category = "utility"
	CategoryCustom         Category = "custom"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategorySimulation,
	CategoryPreprocessing,
	CategoryPostprocessing,
	CategoryAnalysis,
	CategoryVisualization,
	CategoryUtility,
	CategoryCustom,
}

// CommandTemplate is a declarative description of one runnable command.
type CommandTemplate struct {
	TemplateID   string    `yaml:"template_id" json:"template_id"`
	DisplayName  string    `yaml:"display_name" json:"display_name"`
	Description  string    `yaml:"description,omitempty" json:"description,omitempty"`
	Category     Category  `yaml:"category,omitempty" json:"category,omitempty"`
	Command      Command   `yaml:"command" json:"command"`
	Variables    Variables `yaml:"variables,omitempty" json:"variables,omitempty"`
	PreCommands  []string  `yaml:"pre_commands,omitempty" json:"pre_commands,omitempty"`
	PostCommands []string  `yaml:"post_commands,omitempty" json:"post_commands,omitempty"`
}

// Command holds the command line format and its launch requirements.
type Command struct {
	Executable  string `yaml:"executable,omitempty" json:"executable,omitempty"`
	Format      string `yaml:"format" json:"format"`
	RequiresMPI bool   `yaml:"requires_mpi,omitempty" json:"requires_mpi,omitempty"`
}

// Variables groups the three kinds of template variables.
type Variables struct {
	Dynamic     map[string]DynamicVariable   `yaml:"dynamic,omitempty" json:"dynamic,omitempty"`
	InputFiles  map[string]InputFileVariable `yaml:"input_files,omitempty" json:"input_files,omitempty"`
	OutputFiles map[string]OutputFile        `yaml:"output_files,omitempty" json:"output_files,omitempty"`
}

// DynamicVariable is derived from a job configuration field, optionally
// passed through one or more transforms.
type DynamicVariable struct {
	Source      string         `yaml:"source" json:"source"`
	Transform   TransformChain `yaml:"transform,omitempty" json:"transform,omitempty"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Required    bool           `yaml:"required,omitempty" json:"required,omitempty"`
}

// InputFileVariable names an uploaded file by its file key.
type InputFileVariable struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Pattern     string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Required    bool   `yaml:"required,omitempty" json:"required,omitempty"`
	FileKey     string `yaml:"file_key" json:"file_key"`
}

// OutputFile describes an artifact the command is expected to produce.
// It is informational only and never resolved.
type OutputFile struct {
	Pattern     string `yaml:"pattern" json:"pattern"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Collect     bool   `yaml:"collect,omitempty" json:"collect,omitempty"`
}

// TransformChain is an ordered list of transform names. In documents it may
// be written as a single string or as a list.
type TransformChain []string

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (c *TransformChain) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}
		if name == "" {
			*c = nil
			return nil
		}
		*c = TransformChain{name}
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		*c = names
		return nil
	default:
		return fmt.Errorf("line %d: transform must be a string or a list of strings", node.Line)
	}
}

// FileVarName returns the environment variable name bound to a file key.
func FileVarName(fileKey string) string {
	return "FILE_" + strings.ToUpper(fileKey)
}

// FileCountVarName returns the name of the count variable set when a file
// key maps to several paths.
func FileCountVarName(fileKey string) string {
	return FileVarName(fileKey) + "_COUNT"
}

// UnmarshalJSON accepts a string or an array of strings.
func (c *TransformChain) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if name == "" {
			*c = nil
		} else {
			*c = TransformChain{name}
		}
		return nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("transform must be a string or a list of strings: %w", err)
	}
	*c = names
	return nil
}
