package jobtmpl

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FilePaths is the set of paths uploaded for one file key. A key bound to a
// single path and a key bound to a one-element list are distinguished, since
// only the list form produces a count variable.
type FilePaths struct {
	Paths []string
	Multi bool
}

// SinglePath binds a file key to exactly one path.
func SinglePath(p string) FilePaths {
	return FilePaths{Paths: []string{p}}
}

// MultiplePaths binds a file key to an ordered list of paths.
func MultiplePaths(ps ...string) FilePaths {
	return FilePaths{Paths: ps, Multi: true}
}

// Joined returns the paths separated by single spaces.
func (f FilePaths) Joined() string {
	return strings.Join(f.Paths, " ")
}

// UnmarshalYAML accepts a scalar path or a sequence of paths.
func (f *FilePaths) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var p string
		if err := node.Decode(&p); err != nil {
			return err
		}
		*f = SinglePath(p)
		return nil
	case yaml.SequenceNode:
		var ps []string
		if err := node.Decode(&ps); err != nil {
			return err
		}
		*f = MultiplePaths(ps...)
		return nil
	default:
		return fmt.Errorf("line %d: file entry must be a path or a list of paths", node.Line)
	}
}

// MarshalYAML writes the single form as a scalar and the multi form as a list.
func (f FilePaths) MarshalYAML() (any, error) {
	if !f.Multi && len(f.Paths) == 1 {
		return f.Paths[0], nil
	}
	return f.Paths, nil
}

// UnmarshalJSON accepts a string or an array of strings.
func (f *FilePaths) UnmarshalJSON(data []byte) error {
	var p string
	if err := json.Unmarshal(data, &p); err == nil {
		*f = SinglePath(p)
		return nil
	}
	var ps []string
	if err := json.Unmarshal(data, &ps); err != nil {
		return fmt.Errorf("file entry must be a path or a list of paths: %w", err)
	}
	*f = MultiplePaths(ps...)
	return nil
}

// MarshalJSON mirrors MarshalYAML.
func (f FilePaths) MarshalJSON() ([]byte, error) {
	if !f.Multi && len(f.Paths) == 1 {
		return json.Marshal(f.Paths[0])
	}
	return json.Marshal(f.Paths)
}

// UploadedFiles maps a file key to the paths uploaded for it.
type UploadedFiles map[string]FilePaths
