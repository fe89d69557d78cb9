package cmd

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/khanhnv2901/iwtools/internal/observability"
	consts "github.com/khanhnv2901/iwtools/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/iwtools/internal/shared/errors"
)

const envPrefix = "IWTOOLS"

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	API      APIConfig
	Poll     PollConfig
	Defaults DefaultValues
}

// APIConfig locates the vendor API.
type APIConfig struct {
	BaseURL     string
	TimeoutSecs int
}

// PollConfig paces result polling.
type PollConfig struct {
	Interval time.Duration
}

// DefaultValues represent operator-level defaults, typically derived from env/config.
type DefaultValues struct {
	APIKey     string
	APIKeyFile string
	Format     string
	Verbose    bool
}

type defaultOverrides struct {
	BaseURL      string
	TimeoutSecs  *int
	PollSecs     *int
	APIKey       string
	APIKeyFile   string
	Format       string
	OutputFormat bool
	Verbose      *bool
}

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		API: APIConfig{
			BaseURL:     consts.DefaultAPIBaseURL,
			TimeoutSecs: int(consts.DefaultHTTPTimeout / time.Second),
		},
		Poll: PollConfig{
			Interval: consts.DefaultPollInterval,
		},
		Defaults: DefaultValues{
			Format: observability.FormatColorized,
		},
	}
}

// newViper reads the app config file and binds IWTOOLS_* environment
// variables. A missing default file is not an error; a missing explicit one is.
func newViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api_key")

	if cfgFile != "" {
		path, err := homedir.Expand(cfgFile)
		if err != nil {
			return nil, &sharedErrors.ConfigLoadError{Path: cfgFile, Err: err}
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &sharedErrors.ConfigLoadError{Path: path, Err: err}
		}
		return v, nil
	}

	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}
	v.SetConfigName(".iwtools")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &sharedErrors.ConfigLoadError{Path: "$HOME/.iwtools.yaml", Err: err}
		}
	}
	return v, nil
}

func loadDefaultOverrides(v *viper.Viper) defaultOverrides {
	overrides := defaultOverrides{}

	if v.IsSet("api.base_url") {
		overrides.BaseURL = v.GetString("api.base_url")
	}

	if v.IsSet("api.timeout_secs") {
		val := v.GetInt("api.timeout_secs")
		overrides.TimeoutSecs = &val
	}

	if v.IsSet("poll.interval_secs") {
		val := v.GetInt("poll.interval_secs")
		overrides.PollSecs = &val
	}

	if v.IsSet("api_key") {
		overrides.APIKey = v.GetString("api_key")
	}

	if v.IsSet("defaults.api_keyfile") {
		overrides.APIKeyFile = v.GetString("defaults.api_keyfile")
	}

	if v.IsSet("defaults.format") {
		overrides.Format = v.GetString("defaults.format")
		overrides.OutputFormat = true
	}

	if v.IsSet("defaults.verbose") {
		val := v.GetBool("defaults.verbose")
		overrides.Verbose = &val
	}

	return overrides
}

// applyConfigDefaults merges config file defaults into the runtime config when the user
// did not explicitly override the corresponding flag.
func applyConfigDefaults(cmd *cobra.Command, cfg *CLIConfig, v *viper.Viper) {
	overrides := loadDefaultOverrides(v)
	flags := cmd.Flags()

	if overrides.BaseURL != "" {
		cfg.API.BaseURL = overrides.BaseURL
	}

	if overrides.TimeoutSecs != nil {
		applyIntDefault(flags, "timeout", *overrides.TimeoutSecs, func(v int) {
			cfg.API.TimeoutSecs = v
			setStringFlagIfUnset(flags, "timeout", strconv.Itoa(v))
		})
	}

	if overrides.PollSecs != nil {
		applyIntDefault(flags, "poll-interval", *overrides.PollSecs, func(v int) {
			cfg.Poll.Interval = time.Duration(v) * time.Second
			setStringFlagIfUnset(flags, "poll-interval", cfg.Poll.Interval.String())
		})
	}

	if overrides.APIKey != "" {
		cfg.Defaults.APIKey = overrides.APIKey
	}

	if overrides.APIKeyFile != "" {
		cfg.Defaults.APIKeyFile = overrides.APIKeyFile
	}

	if overrides.OutputFormat && overrides.Format != "" {
		cfg.Defaults.Format = overrides.Format
		setStringFlagIfUnset(flags, "format", overrides.Format)
	}

	if overrides.Verbose != nil {
		applyBoolDefault(flags, "verbose", *overrides.Verbose, func(v bool) {
			cfg.Defaults.Verbose = v
			setStringFlagIfUnset(flags, "verbose", strconv.FormatBool(v))
		})
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyBoolDefault(flags *pflag.FlagSet, name string, value bool, setter func(bool)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func setStringFlagIfUnset(flags *pflag.FlagSet, name, value string) {
	if flags == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag == nil || flag.Changed {
		return
	}
	_ = flag.Value.Set(value)
}
