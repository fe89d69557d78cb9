package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/khanhnv2901/iwtools/internal/driver"
	"github.com/khanhnv2901/iwtools/internal/observability"
	"github.com/khanhnv2901/iwtools/internal/results"
	consts "github.com/khanhnv2901/iwtools/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/iwtools/internal/shared/errors"
)

// runOptions are the flag values of one invocation.
type runOptions struct {
	apiKey       string
	apiKeyFile   string
	recheck      bool
	ip           string
	output       string
	format       string
	pipeline     bool
	configFile   string
	verbose      bool
	appConfig    string
	quick        string
	timeoutSecs  int
	pollInterval time.Duration
}

// app holds the state of one CLI invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer
	opts   runOptions
	cfg    *CLIConfig

	// Test hooks.
	httpClient *http.Client
	terminal   func() bool
	now        func() time.Time

	// started is set once a test command begins; earlier failures are
	// command line errors.
	started bool
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:   stdout,
		stderr:   stderr,
		cfg:      newCLIConfig(),
		terminal: stdoutIsTerminal,
		now:      time.Now,
	}
}

var serviceHelp = map[results.Service]string{
	results.Websec:  "URL of the website",
	results.SSL:     "hostname:port of the server",
	results.Darkweb: "domain name",
	results.Email:   "email domain name",
	results.Mobile:  "file path of a local app, its store page, or URL of a self-hosted app",
	results.Cloud:   "domain or company name",
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "iwtools",
		Short: "ImmuniWeb® Community Edition security tests from the command line",
		Long: `iwtools runs ImmuniWeb® Community Edition tests, waits for the result and
prints it as a colorized report or JSON. In pipeline mode the result is
compared with a policy file and the exit code reports the verdict:
  0 success, 1 runtime error, 2 command line or config error, 3 checks failed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(a.opts.appConfig)
			if err != nil {
				return err
			}
			applyConfigDefaults(cmd, a.cfg, v)
			return nil
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.apiKey, "api-key", "", "Pass your API key for a higher number of daily tests.")
	flags.StringVar(&a.opts.apiKeyFile, "api-keyfile", "", "Use file with API keys, one line per key:\n  websec ssl ABCDE-12345-FGHIJ-67890\n  darkweb 12345-ABCDE-67890-FGHIJ")
	flags.BoolVarP(&a.opts.recheck, "recheck", "r", false, "Force to refresh the test (API key required).")
	flags.StringVarP(&a.opts.output, "output", "o", "", "Path to the output file.")
	flags.StringVarP(&a.opts.format, "format", "f", observability.FormatColorized, "Output format: colorized_text, raw_json or pretty_json.")
	flags.BoolVarP(&a.opts.pipeline, "pipeline", "p", false, "Compare the test result with the policy file.")
	flags.StringVarP(&a.opts.configFile, "config-file", "c", "", "Policy file, JSON or YAML (default config/<test>.yaml).")
	flags.BoolVarP(&a.opts.verbose, "verbose", "v", false, "Log requests and state changes.")
	flags.StringVar(&a.opts.appConfig, "config", "", "config file (default is $HOME/.iwtools.yaml)")
	flags.IntVar(&a.opts.timeoutSecs, "timeout", a.cfg.API.TimeoutSecs, "Timeout of a single API request in seconds.")
	flags.DurationVar(&a.opts.pollInterval, "poll-interval", a.cfg.Poll.Interval, "Delay between result polls.")
	root.MarkFlagsMutuallyExclusive("api-key", "api-keyfile")

	for _, service := range results.Services() {
		root.AddCommand(a.serviceCmd(service))
	}
	root.AddCommand(newVersionCmd())
	return root
}

func (a *app) serviceCmd(service results.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   service.String() + " TARGET",
		Short: "Run the " + service.Title(),
		Long:  "Run the " + service.Title() + ".\n\nTARGET is the " + serviceHelp[service] + ".",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.started = true
			return a.runTest(cmd.Context(), service, args[0])
		},
	}

	switch service {
	case results.Websec, results.SSL:
		cmd.Flags().StringVarP(&a.opts.ip, "ip", "i", consts.AnyIP, "Force to use a specific IP address of the test's target.")
	case results.Cloud:
		cmd.Flags().StringVar(&a.opts.quick, "quick", "true", "Check the most common clouds only; \"false\" checks them all.")
	}
	return cmd
}

func (a *app) resolveAPIKey(service results.Service) (string, error) {
	switch {
	case a.opts.apiKey != "":
		return a.opts.apiKey, nil
	case a.opts.apiKeyFile != "":
		return readAPIKey(a.opts.apiKeyFile, service)
	case a.cfg.Defaults.APIKey != "":
		return a.cfg.Defaults.APIKey, nil
	case a.cfg.Defaults.APIKeyFile != "":
		return readAPIKey(a.cfg.Defaults.APIKeyFile, service)
	}
	return "", nil
}

func (a *app) runTest(ctx context.Context, service results.Service, target string) error {
	opts := a.opts
	if err := validateFormat(opts.format); err != nil {
		return err
	}
	apiKey, err := a.resolveAPIKey(service)
	if err != nil {
		return err
	}
	if err := validateRequest(service, target, opts.ip, opts.recheck, apiKey); err != nil {
		return err
	}

	logPath := ""
	if opts.format == observability.FormatColorized {
		logPath = opts.output
	}
	zl, closeLog := observability.New(observability.Config{
		Format:     opts.format,
		OutputPath: logPath,
		Verbose:    opts.verbose,
	}, zapcore.AddSync(a.stdout))
	defer func() {
		_ = zl.Sync()
		_ = closeLog()
	}()
	log := zl.Sugar()

	req := driver.Request{
		Target:  target,
		IP:      opts.ip,
		APIKey:  apiKey,
		Recheck: opts.recheck,
		Quick:   opts.quick != "false",
	}
	for _, line := range renderHeader(service, req) {
		log.Info(line)
	}

	drv, err := driver.New(service, req, driver.Options{
		Quiet:        opts.format != observability.FormatColorized,
		PollInterval: opts.pollInterval,
		BaseURL:      a.cfg.API.BaseURL,
		Timeout:      time.Duration(opts.timeoutSecs) * time.Second,
		HTTPClient:   a.httpClient,
		Progress:     progressFor(a.stdout, opts.format, opts.verbose, a.terminal()),
		Logger:       log,
	})
	if err != nil {
		return err
	}

	outcome, err := drv.Start(ctx)
	if err != nil {
		log.Error(colorError("Error in run test: "), err.Error())
		if werr := writeDocument(a.stdout, opts.format, opts.output, errorDocument(err)); werr != nil {
			log.Debugw("cannot write error document", "error", werr)
		}
		return &ExitError{Code: consts.ExitError, Err: err, Silent: true}
	}
	log.Debugw("test finished", "service", service, "cache_hit", outcome.CacheHit, "polls", outcome.Polls)

	if opts.pipeline {
		return runPipeline(log, service, opts.configFile, a.cfg.API.BaseURL, outcome.Raw)
	}

	if opts.format == observability.FormatColorized {
		lines, err := renderReport(service, outcome.Raw, reportContext{baseURL: a.cfg.API.BaseURL, now: a.now()})
		if err != nil {
			log.Debugw("cannot render report", "error", err)
			log.Info(colorError("Cannot print report"))
		}
		for _, line := range lines {
			log.Info(line)
		}
	}

	if err := writeDocument(a.stdout, opts.format, opts.output, outcome.Raw); err != nil {
		return &ExitError{Code: consts.ExitError, Err: err}
	}
	return nil
}

// execute runs the CLI with args and returns the process exit code.
func (a *app) execute(ctx context.Context, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return consts.ExitSuccess
	}

	code := exitCodeFor(err)
	if !a.started && code == consts.ExitError {
		code = consts.ExitCommandError
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Silent {
		return code
	}
	fmt.Fprintln(a.stderr, colorError("Error:"), err)
	if code == consts.ExitCommandError && !isValidationOrConfig(err) {
		fmt.Fprintf(a.stderr, "Run '%s --help' for usage.\n", root.CommandPath())
	}
	return code
}

func isValidationOrConfig(err error) bool {
	var (
		validationErr *sharedErrors.ValidationError
		configErr     *sharedErrors.ConfigLoadError
	)
	return errors.As(err, &validationErr) || errors.As(err, &configErr)
}

var exit = os.Exit

// Execute runs the root command and exits with its code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := newApp(os.Stdout, os.Stderr).execute(ctx, os.Args[1:])
	stop()
	exit(code)
}
