package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/khanhnv2901/iwtools/internal/observability"
	consts "github.com/khanhnv2901/iwtools/internal/shared/constants"
)

func TestApplyIntDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("timeout", 10, "")

	applied := 0
	applyIntDefault(flags, "timeout", 15, func(v int) {
		applied = v
	})
	if applied != 15 {
		t.Fatalf("expected setter to receive 15, got %d", applied)
	}

	// When flag already set, setter should not run.
	if err := flags.Set("timeout", "7"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	applied = 0
	applyIntDefault(flags, "timeout", 20, func(v int) {
		applied = v
	})
	if applied != 0 {
		t.Fatalf("setter should not run when flag overridden, got %d", applied)
	}
}

func TestApplyBoolDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("verbose", false, "")

	applied := false
	applyBoolDefault(flags, "verbose", true, func(v bool) {
		applied = v
	})
	if !applied {
		t.Fatal("expected setter to run with true")
	}

	if err := flags.Set("verbose", "false"); err != nil {
		t.Fatalf("failed to set bool flag: %v", err)
	}
	applied = true
	applyBoolDefault(flags, "verbose", true, func(v bool) {
		applied = v
	})
	if !applied {
		t.Fatalf("setter should not change value when flag already set")
	}
}

func TestSetStringFlagIfUnset(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", observability.FormatColorized, "")

	setStringFlagIfUnset(flags, "format", observability.FormatRaw)
	if got := flags.Lookup("format").Value.String(); got != observability.FormatRaw {
		t.Fatalf("expected format to follow config, got %s", got)
	}

	if err := flags.Set("format", observability.FormatPretty); err != nil {
		t.Fatalf("failed to set format: %v", err)
	}
	setStringFlagIfUnset(flags, "format", observability.FormatColorized)
	if got := flags.Lookup("format").Value.String(); got != observability.FormatPretty {
		t.Fatalf("expected format to remain user-provided, got %s", got)
	}
}

func TestNewCLIConfigDefaults(t *testing.T) {
	cfg := newCLIConfig()
	if cfg.API.BaseURL != consts.DefaultAPIBaseURL {
		t.Fatalf("unexpected base URL: %s", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSecs != 60 {
		t.Fatalf("unexpected timeout default: %d", cfg.API.TimeoutSecs)
	}
	if cfg.Poll.Interval != 10*time.Second {
		t.Fatalf("unexpected poll interval: %s", cfg.Poll.Interval)
	}
	if cfg.Defaults.Format != observability.FormatColorized {
		t.Fatalf("unexpected format default: %s", cfg.Defaults.Format)
	}
}

func TestLoadDefaultOverrides(t *testing.T) {
	v := viper.New()
	v.Set("api.base_url", "https://api.test")
	v.Set("api.timeout_secs", 30)
	v.Set("poll.interval_secs", 5)
	v.Set("defaults.api_keyfile", "~/.iwkeys")
	v.Set("defaults.format", observability.FormatPretty)
	v.Set("defaults.verbose", true)

	overrides := loadDefaultOverrides(v)

	if overrides.BaseURL != "https://api.test" {
		t.Fatalf("expected base URL override, got %q", overrides.BaseURL)
	}
	if overrides.TimeoutSecs == nil || *overrides.TimeoutSecs != 30 {
		t.Fatalf("expected timeout override 30, got %+v", overrides.TimeoutSecs)
	}
	if overrides.PollSecs == nil || *overrides.PollSecs != 5 {
		t.Fatalf("expected poll override 5, got %+v", overrides.PollSecs)
	}
	if overrides.APIKeyFile != "~/.iwkeys" {
		t.Fatalf("expected key file override, got %q", overrides.APIKeyFile)
	}
	if !overrides.OutputFormat || overrides.Format != observability.FormatPretty {
		t.Fatalf("expected format override, got %+v", overrides)
	}
	if overrides.Verbose == nil || !*overrides.Verbose {
		t.Fatalf("expected verbose override, got %+v", overrides.Verbose)
	}
}

func TestApplyConfigDefaultsRespectsFlags(t *testing.T) {
	var opts runOptions
	cmd := &cobra.Command{Use: "websec"}
	cmd.Flags().IntVar(&opts.timeoutSecs, "timeout", 60, "")
	cmd.Flags().DurationVar(&opts.pollInterval, "poll-interval", 10*time.Second, "")
	cmd.Flags().StringVar(&opts.format, "format", observability.FormatColorized, "")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "")
	if err := cmd.Flags().Set("timeout", "3"); err != nil {
		t.Fatalf("set timeout: %v", err)
	}

	v := viper.New()
	v.Set("api.timeout_secs", 30)
	v.Set("poll.interval_secs", 2)
	v.Set("defaults.format", observability.FormatRaw)
	v.Set("defaults.verbose", true)

	cfg := newCLIConfig()
	applyConfigDefaults(cmd, cfg, v)

	if opts.timeoutSecs != 3 {
		t.Fatalf("explicit --timeout should win, got %d", opts.timeoutSecs)
	}
	if opts.pollInterval != 2*time.Second || cfg.Poll.Interval != 2*time.Second {
		t.Fatalf("expected poll interval from config, got %s", opts.pollInterval)
	}
	if opts.format != observability.FormatRaw {
		t.Fatalf("expected format from config, got %s", opts.format)
	}
	if !opts.verbose {
		t.Fatal("expected verbose from config")
	}
}

func TestNewViperReadsFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iwtools.yaml")
	writeFile(t, path, "api:\n  base_url: https://file.test\ndefaults:\n  format: raw_json\n")
	t.Setenv("IWTOOLS_API_KEY", "env-key")
	t.Setenv("IWTOOLS_API_TIMEOUT_SECS", "12")

	v, err := newViper(path)
	if err != nil {
		t.Fatalf("newViper: %v", err)
	}

	overrides := loadDefaultOverrides(v)
	if overrides.BaseURL != "https://file.test" {
		t.Fatalf("expected base URL from file, got %q", overrides.BaseURL)
	}
	if overrides.APIKey != "env-key" {
		t.Fatalf("expected API key from env, got %q", overrides.APIKey)
	}
	if overrides.TimeoutSecs == nil || *overrides.TimeoutSecs != 12 {
		t.Fatalf("expected timeout from env, got %+v", overrides.TimeoutSecs)
	}
}

func TestNewViperMissingExplicitFile(t *testing.T) {
	if _, err := newViper(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}
