package sanitize_test

import (
	"testing"

	"github.com/mentalx/mentalxbot/internal/sanitize"
)

func TestPlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "   ", want: ""},
		{name: "plain", in: "Hello there", want: "Hello there"},
		{name: "emphasis", in: "**Take care**, _friend_", want: "Take care, friend"},
		{name: "entities", in: "a < b & c", want: "a < b & c"},
		{name: "heading and paragraph", in: "# Title\n\nbody", want: "Title\n\nbody"},
		{name: "list", in: "- a\n- b", want: "- a\n- b"},
		{name: "inline html", in: "hi <b>there</b>", want: "hi there"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := sanitize.PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
