package transform

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/me/jobscript/pkg/jobtmpl"
)

// memoryPattern matches a Slurm memory literal. A missing unit means MB.
var memoryPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)([KMGTkmgt])?$`)

var kbPerUnit = map[string]float64{
	"K": 1,
	"M": 1024,
	"G": 1024 * 1024,
	"T": 1024 * 1024 * 1024,
	"":  1024,
}

// ParseMemoryKB converts a memory literal such as "16G" or "512" to kilobytes.
func ParseMemoryKB(s string) (int64, error) {
	m := memoryPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: memory %q, expected a number with optional K, M, G or T suffix", jobtmpl.ErrInvalidFormat, s)
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: memory %q: %v", jobtmpl.ErrInvalidFormat, s, err)
	}
	return int64(math.Floor(n * kbPerUnit[strings.ToUpper(m[2])])), nil
}

// ParseTimeSeconds converts HH:MM:SS, MM:SS or SS to seconds.
func ParseTimeSeconds(s string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: time %q, expected HH:MM:SS, MM:SS or SS", jobtmpl.ErrInvalidFormat, s)
	}
	var total int64
	for _, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: time %q, component %q is not a number", jobtmpl.ErrInvalidFormat, s, p)
		}
		total = total*60 + int64(n)
	}
	return total, nil
}

func memoryToKB(v jobtmpl.Value) (jobtmpl.Value, error) {
	kb, err := ParseMemoryKB(v.String())
	if err != nil {
		return jobtmpl.Value{}, err
	}
	return jobtmpl.IntValue(kb), nil
}

func memoryToMB(v jobtmpl.Value) (jobtmpl.Value, error) {
	kb, err := ParseMemoryKB(v.String())
	if err != nil {
		return jobtmpl.Value{}, err
	}
	return jobtmpl.IntValue(kb / 1024), nil
}

func memoryToGB(v jobtmpl.Value) (jobtmpl.Value, error) {
	kb, err := ParseMemoryKB(v.String())
	if err != nil {
		return jobtmpl.Value{}, err
	}
	return jobtmpl.NumberValue(float64(kb) / (1024 * 1024)), nil
}

func timeToSeconds(v jobtmpl.Value) (jobtmpl.Value, error) {
	sec, err := ParseTimeSeconds(v.String())
	if err != nil {
		return jobtmpl.Value{}, err
	}
	return jobtmpl.IntValue(sec), nil
}

func timeToMinutes(v jobtmpl.Value) (jobtmpl.Value, error) {
	sec, err := ParseTimeSeconds(v.String())
	if err != nil {
		return jobtmpl.Value{}, err
	}
	return jobtmpl.IntValue(sec / 60), nil
}

func timeToHours(v jobtmpl.Value) (jobtmpl.Value, error) {
	sec, err := ParseTimeSeconds(v.String())
	if err != nil {
		return jobtmpl.Value{}, err
	}
	return jobtmpl.NumberValue(float64(sec) / 3600), nil
}
