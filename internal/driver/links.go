package driver

import (
	"fmt"
	"strings"

	"github.com/khanhnv2901/iwtools/internal/results"
	consts "github.com/khanhnv2901/iwtools/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/iwtools/internal/shared/errors"
)

// Link returns the public page of a completed test.
func Link(baseURL string, service results.Service, raw []byte) (string, error) {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = consts.DefaultAPIBaseURL
	}

	doc, err := results.Decode(service, raw)
	if err != nil {
		return "", err
	}

	switch r := doc.(type) {
	case *results.WebsecResult:
		return fmt.Sprintf("%s/websec/%s/%s/", base, r.UnicodeHostname, r.ShortID), nil
	case *results.SSLResult:
		return fmt.Sprintf("%s/ssl/%s/%s/", base, r.ServerInfo.UnicodeHostname.Value, r.Internals.ShortID), nil
	case *results.DarkwebResult:
		return fmt.Sprintf("%s/darkweb/%s/%s/", base, r.UnicodeOrigURL, r.Internals.ID), nil
	case *results.EmailResult:
		return fmt.Sprintf("%s/email/%s/%s/", base, r.Internals.Hostname, r.Internals.ShortID), nil
	case *results.MobileResult:
		return fmt.Sprintf("%s/mobile/%s/%s/", base, r.Data.AppInfo.AppID, r.Data.AppInfo.TestShortID), nil
	case *results.CloudResult:
		return fmt.Sprintf("%s/cloud/%s/", base, r.Parameters.Target), nil
	}
	return "", fmt.Errorf("%w: %q", sharedErrors.ErrUnsupportedService, service)
}
