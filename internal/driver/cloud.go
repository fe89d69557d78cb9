package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/khanhnv2901/iwtools/internal/results"
	sharedErrors "github.com/khanhnv2901/iwtools/internal/shared/errors"
)

const cloudTestsPath = "/cloud/api/v2/tests/"

func cloudDescriptor() descriptor {
	return descriptor{
		service: results.Cloud,
		running: func(env envelope) bool {
			return env.hasStatus() && env.status() != statusFinished
		},
		precheck:        cloudPrecheck,
		submit:          cloudSubmit,
		dispatch:        cloudDispatch,
		vendorError:     cloudVendorError,
		closeConnection: true,
	}
}

func (d *Driver) cloudResultURL() string {
	return d.endpoint(cloudTestsPath + url.PathEscape(d.req.Target) + "/")
}

// cloudPrecheck looks for an existing result. A 404 means the target was
// never tested and the run falls through to submission.
func cloudPrecheck(ctx context.Context, d *Driver) ([]byte, bool, error) {
	resp, err := d.client.Get(ctx, d.cloudResultURL(), true)
	if err != nil {
		if isNotFound(err) {
			d.log.Info("Test not found")
			return nil, false, nil
		}
		return nil, false, err
	}
	return resp.Body, true, nil
}

func cloudSubmit(ctx context.Context, d *Driver) ([]byte, error) {
	payload := map[string]any{
		"target":  d.req.Target,
		"quick":   d.req.Quick,
		"private": true,
	}
	if d.req.APIKey != "" {
		payload["api_key"] = d.req.APIKey
	}

	resp, err := d.client.PostJSON(ctx, d.endpoint(cloudTestsPath), payload)
	if err != nil {
		// Rejections come back as 4xx with the reason in the body.
		var te *sharedErrors.TransportError
		if errors.As(err, &te) && len(te.Body) > 0 {
			if env, perr := parseEnvelope(te.Body); perr == nil && env.hasError() {
				return te.Body, nil
			}
		}
		return nil, err
	}
	return resp.Body, nil
}

// cloudDispatch polls the status endpoint and then fetches the full result.
func cloudDispatch(ctx context.Context, d *Driver, body []byte) (*Outcome, error) {
	env, err := parseEnvelope(body)
	if err != nil {
		return nil, d.fail(err)
	}
	if env.hasError() {
		return nil, d.fail(d.vendorError(env.Error))
	}
	if !env.hasStatus() {
		return nil, d.fail(fmt.Errorf("%w: submit response carries no status", sharedErrors.ErrUnexpectedStatus))
	}

	d.enter(StateQueued)
	statusURL := d.cloudResultURL() + "status/?quick=" + formBool(d.req.Quick)
	_, err = d.poll(ctx, func(ctx context.Context) ([]byte, error) {
		resp, err := d.client.Get(ctx, statusURL, false)
		if err != nil {
			return nil, err
		}
		return resp.Body, nil
	})
	if err != nil {
		return nil, d.fail(err)
	}

	resp, err := d.client.Get(ctx, d.cloudResultURL(), true)
	if err != nil {
		return nil, d.fail(err)
	}
	return d.complete(resp.Body, false)
}

type cloudErrorBody struct {
	Detail []struct {
		Msg json.RawMessage `json:"msg"`
	} `json:"detail"`
}

type cloudErrorMsg struct {
	Error          string `json:"error"`
	Recommendation string `json:"recommendation"`
}

// cloudVendorError extracts error.detail[0].msg, which is either a plain
// string or an {error, recommendation} object.
func cloudVendorError(raw json.RawMessage, quiet bool) error {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &sharedErrors.VendorError{Message: s}
	}

	var body cloudErrorBody
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return &sharedErrors.VendorError{Message: "unknown error format"}
	}

	msg := body.Detail[0].Msg
	if err := json.Unmarshal(msg, &s); err == nil {
		return &sharedErrors.VendorError{Message: s}
	}
	var structured cloudErrorMsg
	if err := json.Unmarshal(msg, &structured); err != nil || structured.Error == "" {
		return &sharedErrors.VendorError{Message: "unknown error format"}
	}
	return &sharedErrors.VendorError{
		Message:        structured.Error,
		Recommendation: structured.Recommendation,
		Inline:         quiet,
	}
}
