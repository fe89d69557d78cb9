package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/khanhnv2901/iwtools/internal/results"
	sharedErrors "github.com/khanhnv2901/iwtools/internal/shared/errors"
)

var mobileRunning = runningIn(statusRunning, "unprocessed", "doesnt_exist")

// errUnexpectedSubmit is returned when no task of the submit list can be
// followed.
var errUnexpectedSubmit = errors.New("unexpected submit response")

// mobileTask is one entry of the upload/download submit response.
type mobileTask struct {
	ID      results.Scalar  `json:"id"`
	Status  string          `json:"status"`
	ErrorID *int            `json:"error_id"`
	Error   json.RawMessage `json:"error"`
}

func mobileDescriptor() descriptor {
	getInfo := func(ctx context.Context, d *Driver, id string) ([]byte, error) {
		resp, err := d.client.Get(ctx, d.endpoint("/mobile/api/test_info/id/"+url.PathEscape(id)), false)
		if err != nil {
			return nil, err
		}
		return resp.Body, nil
	}

	return descriptor{
		service:     results.Mobile,
		running:     mobileRunning,
		submit:      submitMobile,
		fetchCached: getInfo,
		fetchJob:    getInfo,
		dispatch:    dispatchMobile,
	}
}

// submitMobile downloads the app from a store or self-hosted URL, or uploads
// a local file.
func submitMobile(ctx context.Context, d *Driver) ([]byte, error) {
	form := withKey(url.Values{"hide_in_statistics": {"1"}}, d.req.APIKey)

	if u, err := url.Parse(d.req.Target); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		form.Set("app", d.req.Target)
		resp, err := d.client.PostForm(ctx, d.endpoint("/mobile/api/download_apk"), form)
		if err != nil {
			return nil, err
		}
		return resp.Body, nil
	}

	resp, err := d.client.PostMultipart(ctx, d.endpoint("/mobile/api/upload"), form, "file", d.req.Target)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// dispatchMobile walks the task list returned by the submit call. A task
// already accepted is polled; a known task is fetched and polled only while
// still running.
func dispatchMobile(ctx context.Context, d *Driver, body []byte) (*Outcome, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		env, err := parseEnvelope(trimmed)
		if err == nil && env.hasError() {
			return nil, d.fail(d.vendorError(env.Error))
		}
		return nil, d.fail(fmt.Errorf("%w: %w", sharedErrors.ErrUnexpectedShape, errUnexpectedSubmit))
	}

	var tasks []mobileTask
	if err := json.Unmarshal(trimmed, &tasks); err != nil {
		return nil, d.fail(fmt.Errorf("%w: %v", sharedErrors.ErrUnexpectedShape, err))
	}

	var lastErr error
	for _, task := range tasks {
		id := task.ID.String()

		if id != "" && task.Status == "success" {
			d.enter(StateQueued)
			return d.pollUntilDone(ctx, func(ctx context.Context) ([]byte, error) {
				return d.desc.fetchJob(ctx, d, id)
			})
		}

		if task.ErrorID != nil && *task.ErrorID == 0 {
			return d.followKnownTask(ctx, id)
		}

		if present(task.Error) {
			lastErr = d.vendorError(task.Error)
		}
	}

	if lastErr != nil {
		return nil, d.fail(lastErr)
	}

	for _, task := range tasks {
		if id := task.ID.String(); id != "" {
			d.enter(StateQueued)
			return d.pollUntilDone(ctx, func(ctx context.Context) ([]byte, error) {
				return d.desc.fetchJob(ctx, d, id)
			})
		}
	}
	return nil, d.fail(errUnexpectedSubmit)
}

func (d *Driver) followKnownTask(ctx context.Context, id string) (*Outcome, error) {
	raw, err := d.desc.fetchCached(ctx, d, id)
	if err != nil {
		return nil, d.fail(err)
	}
	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, d.fail(err)
	}
	if env.hasError() {
		return nil, d.fail(d.vendorError(env.Error))
	}
	if d.desc.running(env) {
		d.enter(StateQueued)
		return d.pollUntilDone(ctx, func(ctx context.Context) ([]byte, error) {
			return d.desc.fetchJob(ctx, d, id)
		})
	}
	d.enter(StateCacheHit)
	return d.complete(raw, true)
}
