// internal/notifications/templates/render.go
package templates

import "regexp"

var tokenPattern = regexp.MustCompile(`\{([a-zA-Z][a-zA-Z0-9_]*)\}`)

// renderString substitutes {key} tokens from variables. Tokens with no value
// are left verbatim and returned so the caller can log them. Rendering the
// same template with the same variables is idempotent.
func renderString(template string, variables map[string]string) (string, []string) {
	var missing []string

	rendered := tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		key := token[1 : len(token)-1]
		if value, ok := variables[key]; ok {
			return value
		}
		missing = append(missing, key)
		return token
	})

	return rendered, missing
}
