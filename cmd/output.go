package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/go-homedir"

	"github.com/khanhnv2901/iwtools/internal/observability"
	consts "github.com/khanhnv2901/iwtools/internal/shared/constants"
)

// writeDocument emits raw as compact or indented JSON for the JSON formats.
// The colorized format writes nothing here. With an output path the document
// replaces the file content; otherwise it goes to stdout.
func writeDocument(stdout io.Writer, format, outputPath string, raw []byte) error {
	var buf bytes.Buffer
	switch format {
	case observability.FormatRaw:
		if err := json.Compact(&buf, raw); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	case observability.FormatPretty:
		if err := json.Indent(&buf, raw, "", "    "); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	default:
		return nil
	}

	if outputPath == "" {
		buf.WriteByte('\n')
		_, err := stdout.Write(buf.Bytes())
		return err
	}

	path, err := homedir.Expand(outputPath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), consts.DefaultFilePerm); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}

// errorDocument is the JSON body emitted when a run fails.
func errorDocument(err error) []byte {
	data, _ := json.Marshal(map[string]string{"error": err.Error()})
	return data
}
