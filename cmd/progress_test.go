package cmd

import (
	"bytes"
	"testing"

	"github.com/khanhnv2901/iwtools/internal/observability"
)

func TestProgressFor(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		verbose  bool
		terminal bool
		want     bool
	}{
		{name: "colorized terminal", format: observability.FormatColorized, terminal: true, want: true},
		{name: "not a terminal", format: observability.FormatColorized},
		{name: "verbose", format: observability.FormatColorized, verbose: true, terminal: true},
		{name: "raw json", format: observability.FormatRaw, terminal: true},
		{name: "pretty json", format: observability.FormatPretty, terminal: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := progressFor(&bytes.Buffer{}, tt.format, tt.verbose, tt.terminal)
			if (got != nil) != tt.want {
				t.Fatalf("progressFor returned indicator=%v, want %v", got != nil, tt.want)
			}
		})
	}
}
