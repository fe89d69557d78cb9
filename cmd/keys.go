package cmd

import (
	"bufio"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/khanhnv2901/iwtools/internal/results"
	sharedErrors "github.com/khanhnv2901/iwtools/internal/shared/errors"
)

// readAPIKey scans a key file for the first line naming service and returns
// that line's last token. Lines look like:
//
//	websec ssl ABCDE-12345-FGHIJ-67890
//	darkweb 12345-ABCDE-67890-FGHIJ
//
// An empty result means no line named the service.
func readAPIKey(path string, service results.Service) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", &sharedErrors.ConfigLoadError{Path: path, Err: err}
	}

	f, err := os.Open(expanded) // #nosec G304 -- key file path is chosen by the operator.
	if err != nil {
		return "", &sharedErrors.ConfigLoadError{Path: expanded, Err: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		for _, field := range fields {
			if field == service.String() {
				return strings.TrimSpace(fields[len(fields)-1]), nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", &sharedErrors.ConfigLoadError{Path: expanded, Err: err}
	}
	return "", nil
}
