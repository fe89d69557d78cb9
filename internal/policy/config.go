package policy

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/khanhnv2901/iwtools/internal/results"
	sharedErrors "github.com/khanhnv2901/iwtools/internal/shared/errors"
)

// DefaultConfigDir holds the per-service policy files used when no path is
// given.
const DefaultConfigDir = "config"

// DefaultConfigPath returns config/<service>.yaml.
func DefaultConfigPath(service results.Service) string {
	return filepath.Join(DefaultConfigDir, service.String()+".yaml")
}

// LoadConfig reads a JSON or YAML policy file and keeps only the keys known
// to the service registry. Services without a registry need no file.
func LoadConfig(service results.Service, path string) (Config, error) {
	if !Supported(service) {
		return Config{}, nil
	}
	if path == "" {
		path = DefaultConfigPath(service)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- policy path is chosen by the operator.
	if err != nil {
		return nil, &sharedErrors.ConfigLoadError{Path: path, Err: err}
	}

	// YAML is a superset of JSON, so one decoder covers both formats.
	var full map[string]any
	if err := yaml.Unmarshal(data, &full); err != nil {
		return nil, &sharedErrors.ConfigLoadError{Path: path, Err: err}
	}

	cfg := Config{}
	for _, key := range Keys(service) {
		if v, ok := full[key]; ok {
			cfg[key] = v
		}
	}
	return cfg, nil
}
