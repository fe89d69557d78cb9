package results

import (
	"bytes"
	"encoding/json"
	"fmt"

	sharedErrors "github.com/khanhnv2901/iwtools/internal/shared/errors"
)

type validator interface {
	validate() error
}

// decode unmarshals raw into T and runs its shape checks. Every failure wraps
// ErrUnexpectedShape so callers can tell schema drift from transport errors.
func decode[T any](service Service, raw []byte) (*T, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: %s result is empty", sharedErrors.ErrUnexpectedShape, service)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %s result: %v", sharedErrors.ErrUnexpectedShape, service, err)
	}
	if v, ok := any(&out).(validator); ok {
		if err := v.validate(); err != nil {
			return nil, fmt.Errorf("%w: %s result: %v", sharedErrors.ErrUnexpectedShape, service, err)
		}
	}
	return &out, nil
}

// missing reports a required field that was absent from the payload.
func missing(path string) error {
	return fmt.Errorf("missing field %s", path)
}

// Decode decodes raw into the schema for service. The returned value is one
// of *WebsecResult, *SSLResult, *DarkwebResult, *EmailResult, *MobileResult or
// *CloudResult.
func Decode(service Service, raw []byte) (any, error) {
	switch service {
	case Websec:
		return DecodeWebsec(raw)
	case SSL:
		return DecodeSSL(raw)
	case Darkweb:
		return DecodeDarkweb(raw)
	case Email:
		return DecodeEmail(raw)
	case Mobile:
		return DecodeMobile(raw)
	case Cloud:
		return DecodeCloud(raw)
	}
	return nil, fmt.Errorf("%w: %q", sharedErrors.ErrUnsupportedService, service)
}
