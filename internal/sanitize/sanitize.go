// Package sanitize turns model output into plain text that Telegram shows as
// written, without parse mode.
package sanitize

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	policy   = bluemonday.StrictPolicy()
	markdown = goldmark.New()

	listItem   = regexp.MustCompile(`<li>`)
	blockBreak = regexp.MustCompile(`</li>|<br\s*/?>|</?(?:p|div|pre|ul|ol|blockquote|h[1-6])>`)
	blankRuns  = regexp.MustCompile(`\n\s*\n+`)
)

// PlainText renders markdown, drops every tag and collapses blank runs.
// Block elements become line breaks and list items keep a "- " bullet.
func PlainText(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return strings.TrimSpace(text)
	}

	out := listItem.ReplaceAllString(buf.String(), "- ")
	out = blockBreak.ReplaceAllStringFunc(out, func(tag string) string {
		if tag == "</li>" {
			return ""
		}
		return "\n"
	})
	out = policy.Sanitize(out)
	out = blankRuns.ReplaceAllString(out, "\n\n")

	return strings.TrimSpace(html.UnescapeString(out))
}
