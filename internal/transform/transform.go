// Package transform implements the fixed set of named value transforms that
// dynamic template variables may apply to a job configuration field.
package transform

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/me/jobscript/pkg/jobtmpl"
)

// Kind identifies one transform.
type Kind int

const (
	Identity Kind = iota
	MemoryToKB
	MemoryToMB
	MemoryToGB
	TimeToSeconds
	TimeToMinutes
	TimeToHours
	Basename
	Dirname
	RemoveExtension
	RemoveAllExtensions
	Uppercase
	Lowercase
	ToString
	ToInt
)

var kindNames = [...]string{
	Identity:            "identity",
	MemoryToKB:          "memory_to_kb",
	MemoryToMB:          "memory_to_mb",
	MemoryToGB:          "memory_to_gb",
	TimeToSeconds:       "time_to_seconds",
	TimeToMinutes:       "time_to_minutes",
	TimeToHours:         "time_to_hours",
	Basename:            "basename",
	Dirname:             "dirname",
	RemoveExtension:     "remove_extension",
	RemoveAllExtensions: "remove_all_extensions",
	Uppercase:           "uppercase",
	Lowercase:           "lowercase",
	ToString:            "to_string",
	ToInt:               "to_int",
}

type fn func(jobtmpl.Value) (jobtmpl.Value, error)

// registry is indexed by Kind.
var registry = [...]fn{
	Identity:            identity,
	MemoryToKB:          memoryToKB,
	MemoryToMB:          memoryToMB,
	MemoryToGB:          memoryToGB,
	TimeToSeconds:       timeToSeconds,
	TimeToMinutes:       timeToMinutes,
	TimeToHours:         timeToHours,
	Basename:            basename,
	Dirname:             dirname,
	RemoveExtension:     removeExtension,
	RemoveAllExtensions: removeAllExtensions,
	Uppercase:           uppercase,
	Lowercase:           lowercase,
	ToString:            toString,
	ToInt:               toInt,
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Names returns every registered transform name.
func Names() []string {
	out := make([]string, len(kindNames))
	copy(out, kindNames[:])
	return out
}

// Parse maps a transform name to its Kind. The empty name parses as Identity.
func Parse(name string) (Kind, error) {
	if name == "" {
		return Identity, nil
	}
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, &jobtmpl.TransformError{Transform: name, Err: jobtmpl.ErrUnknownTransform}
}

// ParseChain parses every name in chain.
func ParseChain(chain []string) ([]Kind, error) {
	kinds := make([]Kind, 0, len(chain))
	for _, name := range chain {
		k, err := Parse(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// Apply runs the transform on v.
func (k Kind) Apply(v jobtmpl.Value) (jobtmpl.Value, error) {
	if k < 0 || int(k) >= len(registry) {
		return jobtmpl.Value{}, &jobtmpl.TransformError{Transform: k.String(), Err: jobtmpl.ErrUnknownTransform}
	}
	out, err := registry[k](v)
	if err != nil {
		return jobtmpl.Value{}, &jobtmpl.TransformError{Transform: k.String(), Value: v.String(), Err: err}
	}
	return out, nil
}

// Apply looks up a transform by name and runs it on v. The empty name and
// "identity" return v unchanged.
func Apply(name string, v jobtmpl.Value) (jobtmpl.Value, error) {
	k, err := Parse(name)
	if err != nil {
		return jobtmpl.Value{}, err
	}
	return k.Apply(v)
}

// ApplyChain folds Apply over names from left to right.
func ApplyChain(names []string, v jobtmpl.Value) (jobtmpl.Value, error) {
	for _, name := range names {
		var err error
		if v, err = Apply(name, v); err != nil {
			return jobtmpl.Value{}, err
		}
	}
	return v, nil
}

func identity(v jobtmpl.Value) (jobtmpl.Value, error) {
	return v, nil
}

func basename(v jobtmpl.Value) (jobtmpl.Value, error) {
	s := v.String()
	return jobtmpl.StringValue(s[strings.LastIndex(s, "/")+1:]), nil
}

func dirname(v jobtmpl.Value) (jobtmpl.Value, error) {
	s := v.String()
	i := strings.LastIndex(s, "/")
	if i <= 0 {
		return jobtmpl.StringValue("/"), nil
	}
	return jobtmpl.StringValue(s[:i]), nil
}

func removeExtension(v jobtmpl.Value) (jobtmpl.Value, error) {
	s := v.String()
	if i := strings.LastIndex(s, "."); i > 0 {
		return jobtmpl.StringValue(s[:i]), nil
	}
	return jobtmpl.StringValue(s), nil
}

func removeAllExtensions(v jobtmpl.Value) (jobtmpl.Value, error) {
	s := v.String()
	if i := strings.Index(s, "."); i > 0 {
		return jobtmpl.StringValue(s[:i]), nil
	}
	return jobtmpl.StringValue(s), nil
}

func uppercase(v jobtmpl.Value) (jobtmpl.Value, error) {
	return jobtmpl.StringValue(strings.ToUpper(v.String())), nil
}

func lowercase(v jobtmpl.Value) (jobtmpl.Value, error) {
	return jobtmpl.StringValue(strings.ToLower(v.String())), nil
}

func toString(v jobtmpl.Value) (jobtmpl.Value, error) {
	return jobtmpl.StringValue(v.String()), nil
}

func toInt(v jobtmpl.Value) (jobtmpl.Value, error) {
	if n, ok := v.Number(); ok {
		return jobtmpl.NumberValue(math.Floor(n)), nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
	if err != nil {
		return jobtmpl.Value{}, fmt.Errorf("%w: not a number", jobtmpl.ErrInvalidFormat)
	}
	return jobtmpl.NumberValue(math.Floor(n)), nil
}
