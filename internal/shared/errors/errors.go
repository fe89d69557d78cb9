package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Driver errors
	ErrUnexpectedShape    = errors.New("unexpected response shape")
	ErrUnexpectedStatus   = errors.New("unexpected test status")
	ErrIPNotResolved      = errors.New("Passed IP was not resolved")
	ErrUnsupportedService = errors.New("unsupported service type")
	ErrEmptyTarget        = errors.New("target cannot be empty")

	// Policy errors
	ErrUnknownGrade     = errors.New("unknown grade")
	ErrInvalidRuleValue = errors.New("invalid rule value")
	ErrRuleNotSupported = errors.New("rule not supported")

	ErrValidation = errors.New("validation error")
)

// TransportError reports a failure to reach the vendor API or a non-2xx answer.
// StatusCode is zero when no HTTP response was received.
type TransportError struct {
	Op         string
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%d %s for url: %s", e.StatusCode, statusText(e.StatusCode), e.URL)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s failed", e.Op, e.URL)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// VendorError carries an explicit error message returned by the vendor API.
type VendorError struct {
	Message        string
	Recommendation string
	// Inline joins the recommendation with a space instead of a newline.
	Inline bool
}

func (e *VendorError) Error() string {
	if e.Recommendation == "" {
		return e.Message
	}
	sep := "\n"
	if e.Inline {
		sep = " "
	}
	return e.Message + sep + "Recommendation: " + e.Recommendation
}

// ValidationError signals malformed CLI input caught before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ConfigLoadError indicates a policy or key file could not be read or parsed.
type ConfigLoadError struct {
	Path string
	Err  error
}

func (e *ConfigLoadError) Error() string {
	return fmt.Sprintf("can't load config file %s: %v", e.Path, e.Err)
}

func (e *ConfigLoadError) Unwrap() error {
	return e.Err
}

func statusText(code int) string {
	switch {
	case code >= 500:
		return "Server Error"
	case code >= 400:
		return "Client Error"
	case code >= 300:
		return "Redirect"
	}
	return "Unexpected Status"
}
