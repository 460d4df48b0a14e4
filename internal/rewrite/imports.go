package rewrite

import (
	"strings"

	"github.com/agentic-research/seedstamp/api"
)

// EnsureImport inserts rule.Line on its own line after the first occurrence
// of rule.After, or at the top of the text when After is empty. Nothing
// happens when the line is already present or the anchor is missing.
func EnsureImport(text string, rule *api.ImportRule) (string, bool) {
	if rule == nil || rule.Line == "" || strings.Contains(text, rule.Line) {
		return text, false
	}
	if rule.After == "" {
		return rule.Line + "\n" + text, true
	}
	i := strings.Index(text, rule.After)
	if i < 0 {
		return text, false
	}
	at := i + len(rule.After)
	return text[:at] + "\n" + rule.Line + text[at:], true
}
