// Package driver runs one vendor test from submission to a terminal result.
//
// Every service shares the same lifecycle:
//
//	Idle -> Submitting -> {CacheHit, Queued} -> Polling -> {Completed, Failed}
//
// Service quirks (endpoints, payloads, running-status vocabulary, the cloud
// pre-check and the mobile task list) live in per-service descriptors.
package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/khanhnv2901/iwtools/internal/results"
	"github.com/khanhnv2901/iwtools/internal/session"
	consts "github.com/khanhnv2901/iwtools/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/iwtools/internal/shared/errors"
)

// Request is the immutable input of one test run.
type Request struct {
	Target  string
	IP      string
	APIKey  string
	Recheck bool
	// Quick limits a cloud test to the most common providers.
	Quick bool
}

// Outcome is the terminal payload of a successful run.
type Outcome struct {
	Service  results.Service
	Raw      json.RawMessage
	CacheHit bool
	Polls    int
}

// ProgressFunc renders feedback until ctx is cancelled. It must return
// promptly after cancellation.
type ProgressFunc func(ctx context.Context, startMessage, doneMessage string)

// Options tune a Driver. Zero values select the production defaults.
type Options struct {
	// Quiet disables the progress task; the poll loop then blocks on its own.
	Quiet        bool
	PollInterval time.Duration
	BaseURL      string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Progress     ProgressFunc
	Logger       *zap.SugaredLogger
}

// Driver owns the session and state of a single test run.
type Driver struct {
	desc    descriptor
	req     Request
	opts    Options
	base    string
	client  *session.Client
	log     *zap.SugaredLogger
	states  []State
	polls   int
	outcome *Outcome
}

// New prepares a driver for service. No network call is made.
func New(service results.Service, req Request, opts Options) (*Driver, error) {
	desc, err := descriptorFor(service)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Target) == "" {
		return nil, sharedErrors.ErrEmptyTarget
	}
	if req.IP == "" {
		req.IP = consts.AnyIP
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = consts.DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = consts.DefaultAPIBaseURL
	}

	sessionOpts := []session.Option{
		session.WithHTTPClient(opts.HTTPClient),
		session.WithAPIKey(req.APIKey),
		session.WithLogger(opts.Logger),
	}
	if opts.Timeout > 0 && opts.HTTPClient == nil {
		sessionOpts = append(sessionOpts, session.WithTimeout(opts.Timeout))
	}
	if desc.closeConnection {
		sessionOpts = append(sessionOpts, session.WithConnectionClose())
	}

	return &Driver{
		desc:   desc,
		req:    req,
		opts:   opts,
		base:   base,
		client: session.New(sessionOpts...),
		log:    opts.Logger,
		states: []State{StateIdle},
	}, nil
}

// Service returns the service this driver runs.
func (d *Driver) Service() results.Service {
	return d.desc.service
}

// States returns every state entered so far, in order.
func (d *Driver) States() []State {
	out := make([]State, len(d.states))
	copy(out, d.states)
	return out
}

// State returns the current state.
func (d *Driver) State() State {
	return d.states[len(d.states)-1]
}

// Outcome returns the last successful outcome, or nil.
func (d *Driver) Outcome() *Outcome {
	return d.outcome
}

// Start runs the test to completion. It returns either an error or a payload
// whose status is outside the running set.
func (d *Driver) Start(ctx context.Context) (*Outcome, error) {
	d.enter(StateSubmitting)

	if d.desc.precheck != nil && !d.req.Recheck {
		raw, found, err := d.desc.precheck(ctx, d)
		if err != nil {
			return nil, d.fail(err)
		}
		if found {
			d.enter(StateCacheHit)
			return d.complete(raw, true)
		}
	}

	body, err := d.desc.submit(ctx, d)
	if err != nil {
		return nil, d.fail(err)
	}

	if d.desc.dispatch != nil {
		return d.desc.dispatch(ctx, d, body)
	}
	return d.dispatchStatus(ctx, body)
}

// dispatchStatus routes a standard submit response by its status literal.
func (d *Driver) dispatchStatus(ctx context.Context, body []byte) (*Outcome, error) {
	env, err := parseEnvelope(body)
	if err != nil {
		return nil, d.fail(err)
	}
	if env.hasError() {
		return nil, d.fail(d.vendorError(env.Error))
	}
	if d.desc.checkMultipleIPs && env.hasMultipleIPs() {
		return nil, d.fail(sharedErrors.ErrIPNotResolved)
	}

	switch env.status() {
	case statusCached:
		d.enter(StateCacheHit)
		d.log.Info("Result was found in cache, preparing the report…")
		testID := env.TestID.String()
		var raw []byte
		err := d.withProgress(ctx, func(ctx context.Context) error {
			var ferr error
			raw, ferr = d.desc.fetchCached(ctx, d, testID)
			return ferr
		})
		if err != nil {
			d.log.Error("Error while HTTP request, aborting…")
			return nil, d.fail(err)
		}
		return d.complete(raw, true)
	case statusStarted:
		d.enter(StateQueued)
		jobID := env.JobID.String()
		return d.pollUntilDone(ctx, func(ctx context.Context) ([]byte, error) {
			return d.desc.fetchJob(ctx, d, jobID)
		})
	}
	return nil, d.fail(fmt.Errorf("%w: %q", sharedErrors.ErrUnexpectedStatus, env.status()))
}

// pollUntilDone fetches at a fixed pace until the status leaves the running
// set, then completes with the last payload.
func (d *Driver) pollUntilDone(ctx context.Context, fetch func(context.Context) ([]byte, error)) (*Outcome, error) {
	raw, err := d.poll(ctx, fetch)
	if err != nil {
		return nil, d.fail(err)
	}
	return d.complete(raw, false)
}

func (d *Driver) poll(ctx context.Context, fetch func(context.Context) ([]byte, error)) ([]byte, error) {
	d.enter(StatePolling)
	limiter := rate.NewLimiter(rate.Every(d.opts.PollInterval), 1)

	var last []byte
	err := d.withProgress(ctx, func(ctx context.Context) error {
		for {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			body, err := fetch(ctx)
			d.polls++
			if err != nil {
				return err
			}
			env, err := parseEnvelope(body)
			if err != nil {
				return err
			}
			if env.hasError() {
				return d.vendorError(env.Error)
			}
			d.log.Debugw("poll", "service", d.desc.service, "attempt", d.polls, "status", env.status())
			if !d.desc.running(env) {
				last = body
				return nil
			}
		}
	})
	return last, err
}

// withProgress runs fn with the progress task alongside unless quiet. The
// progress task is cancelled as soon as fn returns.
func (d *Driver) withProgress(ctx context.Context, fn func(context.Context) error) error {
	if d.opts.Quiet || d.opts.Progress == nil {
		return fn(ctx)
	}

	g, gctx := errgroup.WithContext(ctx)
	progressCtx, stop := context.WithCancel(gctx)
	g.Go(func() error {
		d.opts.Progress(progressCtx, d.desc.service.Title()+" in progress", "Test completed")
		return nil
	})
	g.Go(func() error {
		defer stop()
		return fn(gctx)
	})
	return g.Wait()
}

// complete checks a terminal payload for an error field and records the
// outcome.
func (d *Driver) complete(raw []byte, cacheHit bool) (*Outcome, error) {
	if env, err := parseEnvelope(raw); err == nil && env.hasError() {
		return nil, d.fail(d.vendorError(env.Error))
	}
	d.enter(StateCompleted)
	d.outcome = &Outcome{
		Service:  d.desc.service,
		Raw:      json.RawMessage(raw),
		CacheHit: cacheHit,
		Polls:    d.polls,
	}
	return d.outcome, nil
}

func (d *Driver) fail(err error) error {
	d.enter(StateFailed)
	d.log.Debugw("test failed", "service", d.desc.service, "error", err)
	return err
}

func (d *Driver) enter(s State) {
	from := d.State()
	d.states = append(d.states, s)
	d.log.Debugw("state transition", "service", d.desc.service, "from", from, "to", s)
}

func (d *Driver) vendorError(raw json.RawMessage) error {
	if d.desc.vendorError != nil {
		return d.desc.vendorError(raw, d.opts.Quiet)
	}
	return &sharedErrors.VendorError{Message: errorText(raw)}
}

// endpoint joins the base URL and path.
func (d *Driver) endpoint(path string) string {
	return d.base + path
}

// isNotFound reports a 404 answer from the vendor.
func isNotFound(err error) bool {
	var te *sharedErrors.TransportError
	return errors.As(err, &te) && te.StatusCode == http.StatusNotFound
}
