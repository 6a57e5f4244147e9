package blogservice

import (
	"regexp"
	"strings"
)

var scriptTagRX = regexp.MustCompile(`(?is)<\s*script[^>]*>(.*?)<\s*/\s*script\s*>`)

// sanitizeMarkdown removes script blocks, including ones spanning several lines, and trims the result.
func sanitizeMarkdown(markdown string) string {
	return strings.TrimSpace(scriptTagRX.ReplaceAllString(markdown, ""))
}
