package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([a-z][a-z0-9_]*)\}`)

// renderTemplate substitutes {name} placeholders from vars. A placeholder
// without a value is a wiring defect and fails the render; literal braces
// that do not look like a placeholder pass through untouched.
func renderTemplate(text string, vars map[string]string) (string, error) {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(text, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := vars[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("template names unknown placeholder(s): %s", strings.Join(missing, ", "))
	}
	return out, nil
}
