package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/khanhnv2901/iwtools/internal/results"
	sharedErrors "github.com/khanhnv2901/iwtools/internal/shared/errors"
)

// descriptor captures everything that differs between services.
type descriptor struct {
	service results.Service

	// running reports whether a poll response is still in progress.
	running func(env envelope) bool

	// precheck may satisfy the run from an existing result before submit.
	precheck func(ctx context.Context, d *Driver) (raw []byte, found bool, err error)

	submit      func(ctx context.Context, d *Driver) ([]byte, error)
	fetchCached func(ctx context.Context, d *Driver, testID string) ([]byte, error)
	fetchJob    func(ctx context.Context, d *Driver, jobID string) ([]byte, error)

	// dispatch replaces the status-literal routing of the submit response.
	dispatch func(ctx context.Context, d *Driver, body []byte) (*Outcome, error)

	vendorError func(raw json.RawMessage, quiet bool) error

	checkMultipleIPs bool
	closeConnection  bool
}

func descriptorFor(service results.Service) (descriptor, error) {
	switch service {
	case results.Websec:
		return websecDescriptor(), nil
	case results.SSL:
		return sslDescriptor(), nil
	case results.Darkweb:
		return darkwebDescriptor(), nil
	case results.Email:
		return emailDescriptor(), nil
	case results.Mobile:
		return mobileDescriptor(), nil
	case results.Cloud:
		return cloudDescriptor(), nil
	}
	return descriptor{}, fmt.Errorf("%w: %q", sharedErrors.ErrUnsupportedService, service)
}

// runningIn builds a running predicate from a status vocabulary. A response
// without a status is terminal.
func runningIn(statuses ...string) func(envelope) bool {
	set := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return func(env envelope) bool {
		if !env.hasStatus() {
			return false
		}
		_, ok := set[env.status()]
		return ok
	}
}

// formService describes the services driven by cache-busted form endpoints.
type formService struct {
	service     results.Service
	submitPath  string
	resultPath  string
	submitForm  func(r Request) url.Values
	cachedField string
	// extra is added to both fetch forms.
	extra            url.Values
	checkMultipleIPs bool
	closeConnection  bool
}

func (f formService) descriptor() descriptor {
	fetch := func(field string) func(ctx context.Context, d *Driver, id string) ([]byte, error) {
		return func(ctx context.Context, d *Driver, id string) ([]byte, error) {
			form := url.Values{field: {id}}
			for k, v := range f.extra {
				form[k] = v
			}
			return d.postForm(ctx, f.resultPath, form)
		}
	}

	return descriptor{
		service: f.service,
		running: runningIn(statusRunning),
		submit: func(ctx context.Context, d *Driver) ([]byte, error) {
			return d.postForm(ctx, f.submitPath, f.submitForm(d.req))
		},
		fetchCached:      fetch(f.cachedField),
		fetchJob:         fetch("job_id"),
		checkMultipleIPs: f.checkMultipleIPs,
		closeConnection:  f.closeConnection,
	}
}

// postForm posts to a cache-busted "<path>/<unix time>.html" endpoint.
func (d *Driver) postForm(ctx context.Context, path string, form url.Values) ([]byte, error) {
	resp, err := d.client.PostForm(ctx, d.endpoint(path+"/"+cacheBuster(time.Now())+".html"), form)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// cacheBuster renders t as Unix seconds with sub-second precision.
func cacheBuster(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixNano())/float64(time.Second), 'f', 6, 64)
}

// withKey adds api_key unless it is empty.
func withKey(form url.Values, key string) url.Values {
	if key != "" {
		form.Set("api_key", key)
	}
	return form
}

// formBool renders booleans the way the vendor forms expect them.
func formBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
