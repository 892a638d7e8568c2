package llm

import (
	"regexp"
	"strings"
)

var fenceOpen = regexp.MustCompile("```[A-Za-z]*")

// SanitizeJSON strips Markdown code fences and keeps the span from the first
// '{' to the last '}'. Text without such a pair is returned trimmed.
func SanitizeJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = fenceOpen.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
