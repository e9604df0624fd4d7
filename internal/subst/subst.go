// Package subst replaces ${NAME} and $NAME placeholders in text with resolved
// variable values.
package subst

import (
	"strings"

	"github.com/me/jobscript/pkg/jobtmpl"
)

// Substitute replaces every placeholder in text whose name is in vars.
//
// Two forms are recognised. ${NAME} takes everything between the braces as
// the name. $NAME takes the longest run of letters, digits and underscores
// after the dollar sign, so $NAME_X names NAME_X and never NAME. Unknown
// names are left as written. The scan is a single pass over text, so a
// substituted value is never expanded again.
func Substitute(text string, vars jobtmpl.ResolvedVariables) string {
	if len(vars) == 0 || !strings.Contains(text, "$") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		if text[i] != '$' {
			j := strings.IndexByte(text[i:], '$')
			if j < 0 {
				b.WriteString(text[i:])
				break
			}
			b.WriteString(text[i : i+j])
			i += j
			continue
		}

		name, end := placeholderAt(text, i)
		if v, ok := vars[name]; ok && name != "" {
			b.WriteString(v.String())
			i = end
			continue
		}
		b.WriteByte('$')
		i++
	}
	return b.String()
}

// placeholderAt parses the placeholder starting at the '$' at text[i]. It
// returns the name and the index just past the placeholder, or an empty name
// when no placeholder starts there.
func placeholderAt(text string, i int) (string, int) {
	start := i + 1
	if start < len(text) && text[start] == '{' {
		closing := strings.IndexByte(text[start+1:], '}')
		if closing < 0 {
			return "", start
		}
		return text[start+1 : start+1+closing], start + 1 + closing + 1
	}
	end := start
	for end < len(text) && isIdentByte(text[end]) {
		end++
	}
	return text[start:end], end
}

func isIdentByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// Names returns the distinct placeholder names referenced in text, in order
// of first appearance.
func Names(text string) []string {
	var names []string
	seen := make(map[string]bool)
	for i := 0; i < len(text); i++ {
		if text[i] != '$' {
			continue
		}
		name, end := placeholderAt(text, i)
		if name == "" {
			continue
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		i = end - 1
	}
	return names
}
