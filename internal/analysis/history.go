package analysis

import (
	"strings"
	"time"

	"github.com/mentalx/mentalxbot/internal/database"
)

// RenderHistory formats messages as "[<RFC3339>] <content>" lines in the
// given order. A multi-line message yields one line per non-blank content
// line, each carrying the message timestamp.
func RenderHistory(messages []*database.Message) []string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		if m == nil {
			continue
		}
		prefix := "[" + m.Timestamp.UTC().Format(time.RFC3339) + "] "
		for _, part := range strings.Split(m.Content, "\n") {
			if part = strings.TrimSpace(part); part != "" {
				lines = append(lines, prefix+part)
			}
		}
	}
	return lines
}

// WordCount counts whitespace-separated words across message contents.
// Timestamps are not counted.
func WordCount(messages []*database.Message) int {
	total := 0
	for _, m := range messages {
		if m != nil {
			total += len(strings.Fields(m.Content))
		}
	}
	return total
}

// Window keeps the last n non-blank lines, joined by newlines. Lines that
// still contain newlines are split first, so the window is measured in lines.
func Window(lines []string, n int) string {
	var kept []string
	for _, line := range lines {
		for _, part := range strings.Split(line, "\n") {
			if part = strings.TrimSpace(part); part != "" {
				kept = append(kept, part)
			}
		}
	}
	if n > 0 && len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, "\n")
}
