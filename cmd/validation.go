package cmd

import (
	"net"
	"regexp"
	"strings"

	"golang.org/x/net/idna"

	"github.com/khanhnv2901/iwtools/internal/observability"
	"github.com/khanhnv2901/iwtools/internal/results"
	consts "github.com/khanhnv2901/iwtools/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/iwtools/internal/shared/errors"
)

var (
	hostPortPattern = regexp.MustCompile(`^[\w-]+\.[\w-]+((\.[\w-]+)+)?:\d+$`)
	domainPattern   = regexp.MustCompile(`^[\w-]+\.[\w-]+((\.[\w-]+)+)?$`)
)

var outputFormats = []string{
	observability.FormatColorized,
	observability.FormatRaw,
	observability.FormatPretty,
}

func validateFormat(format string) error {
	for _, f := range outputFormats {
		if f == format {
			return nil
		}
	}
	return &sharedErrors.ValidationError{
		Field:   "format",
		Message: "invalid choice " + quote(format) + " (choose from " + strings.Join(outputFormats, ", ") + ")",
	}
}

// validateRequest rejects targets and options the vendor would refuse, before
// any network call is made.
func validateRequest(service results.Service, target, ip string, recheck bool, apiKey string) error {
	if strings.TrimSpace(target) == "" {
		return &sharedErrors.ValidationError{Field: "target", Message: sharedErrors.ErrEmptyTarget.Error()}
	}
	if recheck && apiKey == "" {
		return &sharedErrors.ValidationError{Message: "Please pass your API key to refresh the test."}
	}

	switch service {
	case results.SSL:
		if !hostPortPattern.MatchString(asciiHost(target)) {
			return &sharedErrors.ValidationError{Message: `Target format should be "hostname:port" for SSL security test.`}
		}
	case results.Darkweb:
		if isIP(target) || !domainPattern.MatchString(asciiHost(target)) {
			return &sharedErrors.ValidationError{Message: "Target format should be domain for dark web exposure test."}
		}
	case results.Websec:
		if !strings.Contains(target, ".") {
			return &sharedErrors.ValidationError{Message: "Target format should be URL for web security test."}
		}
	case results.Mobile:
		if !strings.Contains(target, ".") {
			return &sharedErrors.ValidationError{Message: "Target format should be URL or local path for mobile app security test."}
		}
	}

	if ip != "" && ip != consts.AnyIP && !isIP(ip) {
		return &sharedErrors.ValidationError{Message: "An invalid IP address was specified."}
	}
	return nil
}

// asciiHost converts internationalized labels to Punycode so the patterns can
// match them. Unconvertible input is returned unchanged and fails the match.
func asciiHost(target string) string {
	host, port := target, ""
	if i := strings.LastIndex(target, ":"); i >= 0 {
		host, port = target[:i], target[i:]
	}
	ascii, err := idna.Punycode.ToASCII(host)
	if err != nil {
		return target
	}
	return ascii + port
}

func isIP(s string) bool {
	return net.ParseIP(s) != nil
}

func quote(s string) string {
	return "'" + s + "'"
}
