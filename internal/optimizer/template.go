package optimizer

import (
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{(.*?)\}\}`)

// Context is the flat key/value lookup a template is resolved against. The
// batch layer builds it from the product's current field values plus computed
// entries like a timestamp.
type Context map[string]string

// ResolveTemplate substitutes {{key}} placeholders from ctx. Keys are trimmed
// of surrounding whitespace before lookup; a key present in ctx substitutes
// its value (including the empty string), a missing key substitutes "".
// Substituted values are not re-scanned.
func ResolveTemplate(template string, ctx Context) string {
	if template == "" {
		return ""
	}
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		key := strings.TrimSpace(match[2 : len(match)-2])
		if value, ok := ctx[key]; ok {
			return value
		}
		return ""
	})
}
