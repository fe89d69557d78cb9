package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/khanhnv2901/iwtools/internal/observability"
)

func TestWriteDocument(t *testing.T) {
	raw := []byte(`{ "grade" : "A", "items": [1, 2] }`)

	tests := []struct {
		name   string
		format string
		want   string
	}{
		{name: "raw", format: observability.FormatRaw, want: `{"grade":"A","items":[1,2]}` + "\n"},
		{name: "pretty", format: observability.FormatPretty, want: "{\n    \"grade\": \"A\",\n    \"items\": [\n        1,\n        2\n    ]\n}\n"},
		{name: "colorized writes nothing", format: observability.FormatColorized, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeDocument(&buf, tt.format, "", raw); err != nil {
				t.Fatalf("writeDocument: %v", err)
			}
			if buf.String() != tt.want {
				t.Fatalf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestWriteDocumentToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	writeFile(t, path, "stale content that is longer than the document")

	var stdout bytes.Buffer
	if err := writeDocument(&stdout, observability.FormatRaw, path, []byte(`{"a": 1}`)); err != nil {
		t.Fatalf("writeDocument: %v", err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected nothing on stdout, got %q", stdout.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Fatalf("expected file to be replaced, got %q", data)
	}
}

func TestWriteDocumentRejectsInvalidJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeDocument(&buf, observability.FormatRaw, "", []byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestErrorDocument(t *testing.T) {
	got := string(errorDocument(errors.New(`quota "daily" exceeded`)))
	if got != `{"error":"quota \"daily\" exceeded"}` {
		t.Fatalf("unexpected error document %s", got)
	}
}
