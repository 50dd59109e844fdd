package render

import (
	"strings"
)

// Markdown renders markdown content for terminal display.
func Markdown(content string, opts Options) (string, error) {
	tr, err := shared.borrow(opts)
	if err != nil {
		return "", err
	}
	defer shared.release(opts, tr)

	return tr.Render(content)
}

// SourceLine formats the citation shown under an answer, or "" when there is none.
func SourceLine(source string) string {
	if source == "" {
		return ""
	}
	return "Source: " + source
}

// Answer renders a bot answer. If markdown rendering fails the raw text is
// returned so an answer is never lost.
func Answer(content string, opts Options) string {
	out, err := Markdown(content, opts)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
