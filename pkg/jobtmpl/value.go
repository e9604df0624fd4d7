package jobtmpl

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Value is a resolved variable value: either a string or a number.
type Value struct {
	str     string
	num     float64
	numeric bool
}

// StringValue wraps a string.
func StringValue(s string) Value {
	return Value{str: s}
}

// NumberValue wraps a number.
func NumberValue(f float64) Value {
	return Value{num: f, numeric: true}
}

// IntValue wraps an integer.
func IntValue(i int64) Value {
	return NumberValue(float64(i))
}

// IsNumber reports whether v holds a number.
func (v Value) IsNumber() bool {
	return v.numeric
}

// Number returns the numeric value. The second result is false for strings.
func (v Value) Number() (float64, bool) {
	return v.num, v.numeric
}

// String renders the value as text. Numbers use the shortest decimal form
// that round-trips, without exponent notation.
func (v Value) String() string {
	if !v.numeric {
		return v.str
	}
	if math.IsInf(v.num, 0) || math.IsNaN(v.num) {
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return strconv.FormatFloat(v.num, 'f', -1, 64)
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.numeric != o.numeric {
		return false
	}
	if v.numeric {
		return v.num == o.num
	}
	return v.str == o.str
}

// MarshalJSON writes numbers as JSON numbers and strings as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.numeric {
		return []byte(v.String()), nil
	}
	return json.Marshal(v.str)
}

// ResolvedVariables maps a variable name to its resolved value. It is built
// fresh for every generation call.
type ResolvedVariables map[string]Value

// Names returns the variable names with FILE_ variables first, each group
// sorted by name.
func (r ResolvedVariables) Names() []string {
	var files, others []string
	for name := range r {
		if strings.HasPrefix(name, "FILE_") {
			files = append(files, name)
		} else {
			others = append(others, name)
		}
	}
	sort.Strings(files)
	sort.Strings(others)
	return append(files, others...)
}

// Clone returns a shallow copy.
func (r ResolvedVariables) Clone() ResolvedVariables {
	out := make(ResolvedVariables, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
