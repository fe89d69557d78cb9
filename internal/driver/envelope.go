package driver

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/khanhnv2901/iwtools/internal/results"
	sharedErrors "github.com/khanhnv2901/iwtools/internal/shared/errors"
)

const (
	statusStarted  = "test_started"
	statusCached   = "test_cached"
	statusRunning  = "in_progress"
	statusFinished = "finished"
)

// envelope holds the control fields shared by every vendor response.
type envelope struct {
	Status      *results.Scalar `json:"status"`
	Error       json.RawMessage `json:"error"`
	JobID       results.Scalar  `json:"job_id"`
	TestID      results.Scalar  `json:"test_id"`
	MultipleIPs json.RawMessage `json:"multiple_ips"`
}

func parseEnvelope(body []byte) (envelope, error) {
	var env envelope
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return env, fmt.Errorf("%w: expected a JSON object, got %s", sharedErrors.ErrUnexpectedShape, preview(trimmed))
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return env, fmt.Errorf("%w: %v", sharedErrors.ErrUnexpectedShape, err)
	}
	return env, nil
}

func (e envelope) hasStatus() bool {
	return e.Status != nil
}

func (e envelope) status() string {
	if e.Status == nil {
		return ""
	}
	return e.Status.String()
}

func (e envelope) hasError() bool {
	return present(e.Error)
}

func (e envelope) hasMultipleIPs() bool {
	return present(e.MultipleIPs)
}

// present treats null, false and empty strings as absent.
func present(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", `""`:
		return false
	}
	return true
}

// errorText renders an error field. Strings are returned verbatim.
func errorText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err == nil {
		return buf.String()
	}
	return string(raw)
}

func preview(body []byte) string {
	const limit = 64
	if len(body) == 0 {
		return "empty body"
	}
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
