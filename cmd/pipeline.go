package cmd

import (
	"errors"

	"go.uber.org/zap"

	"github.com/khanhnv2901/iwtools/internal/driver"
	"github.com/khanhnv2901/iwtools/internal/policy"
	"github.com/khanhnv2901/iwtools/internal/results"
	consts "github.com/khanhnv2901/iwtools/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/iwtools/internal/shared/errors"
)

// runPipeline compares a completed result with the policy file and maps the
// verdict to an exit code: 0 passed, 3 failed, 2 unreadable policy, 1 for
// anything else.
func runPipeline(log *zap.SugaredLogger, service results.Service, configPath, baseURL string, raw []byte) error {
	cfg, err := policy.LoadConfig(service, configPath)
	if err != nil {
		var loadErr *sharedErrors.ConfigLoadError
		if errors.As(err, &loadErr) {
			log.Error(colorError("Error: "), "can't load config file. ", loadErr.Err.Error())
			return &ExitError{Code: consts.ExitCommandError, Err: err, Silent: true}
		}
		log.Error(colorError("Error: "), err.Error())
		return &ExitError{Code: consts.ExitError, Err: err, Silent: true}
	}

	checks, err := policy.Check(service, cfg, raw)
	if err != nil {
		log.Error(colorError("Error: "), err.Error())
		return &ExitError{Code: consts.ExitError, Err: err, Silent: true}
	}

	if len(checks) == 0 {
		log.Info("No checks have been made")
	}
	for _, entry := range checks {
		log.Info(formatCheckStatus(entry.Passed), " ", entry.Key)
		if entry.Msg != "" {
			log.Info(entry.Msg)
		}
	}

	verdict, code := colorSuccess("PASSED"), consts.ExitSuccess
	if !checks.Passed() {
		verdict, code = colorError("FAILED"), consts.ExitCheckFailed
	}
	log.Info("\nChecks ", verdict, "\n")

	if link, err := driver.Link(baseURL, service, raw); err == nil {
		log.Info("Test result details: ", link)
	} else {
		log.Debugw("cannot build test link", "error", err)
	}

	if code == consts.ExitSuccess {
		return nil
	}
	return &ExitError{Code: code, Err: errors.New("checks failed"), Silent: true}
}
