package driver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanhnv2901/iwtools/internal/results"
	sharedErrors "github.com/khanhnv2901/iwtools/internal/shared/errors"
)

const cloudResult = `{"parameters":{"target":"example.com","quick":true},"result":{"cloud":{"stats":{}}}}`

type cloudFake struct {
	mu          sync.Mutex
	tested      bool
	statusCalls int32
	posted      map[string]any
	resultAuth  []string
	statusQuery string
	submitReply string
}

func (f *cloudFake) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/cloud/api/v2/tests/":
		_ = json.NewDecoder(r.Body).Decode(&f.posted)
		if f.submitReply != "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, f.submitReply)
			return
		}
		_, _ = io.WriteString(w, `{"status":"queued"}`)
	case strings.HasSuffix(r.URL.Path, "/status/"):
		f.statusQuery = r.URL.RawQuery
		if atomic.AddInt32(&f.statusCalls, 1) < 3 {
			_, _ = io.WriteString(w, `{"status":"in_progress"}`)
			return
		}
		f.tested = true
		_, _ = io.WriteString(w, `{"status":"finished"}`)
	case r.URL.Path == "/cloud/api/v2/tests/example.com/":
		f.resultAuth = append(f.resultAuth, r.Header.Get("Authorization"))
		if !f.tested {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"Not found."}`)
			return
		}
		_, _ = io.WriteString(w, cloudResult)
	default:
		w.WriteHeader(http.StatusTeapot)
	}
}

func TestCloudPrecheckNotFoundSubmitsAndPolls(t *testing.T) {
	fake := &cloudFake{}
	ts := httptest.NewServer(fake)
	defer ts.Close()

	d := newTestDriver(t, ts, results.Cloud, Request{Target: "example.com", APIKey: "k", Quick: true})
	out, err := d.Start(context.Background())
	require.NoError(t, err)

	assert.False(t, out.CacheHit)
	assert.Equal(t, 3, out.Polls)
	assert.JSONEq(t, cloudResult, string(out.Raw))
	assert.Equal(t, "quick=True", fake.statusQuery)
	assert.Equal(t, []string{"Bearer k", "Bearer k"}, fake.resultAuth)
	assert.Equal(t, map[string]any{"target": "example.com", "quick": true, "private": true, "api_key": "k"}, fake.posted)
	assert.Equal(t, []State{StateIdle, StateSubmitting, StateQueued, StatePolling, StateCompleted}, d.States())
}

func TestCloudPrecheckFoundIsCacheHit(t *testing.T) {
	fake := &cloudFake{tested: true}
	ts := httptest.NewServer(fake)
	defer ts.Close()

	d := newTestDriver(t, ts, results.Cloud, Request{Target: "example.com"})
	out, err := d.Start(context.Background())
	require.NoError(t, err)

	assert.True(t, out.CacheHit)
	assert.Nil(t, fake.posted)
	assert.Equal(t, []string{""}, fake.resultAuth)
}

func TestCloudRecheckSkipsPrecheck(t *testing.T) {
	fake := &cloudFake{tested: true}
	ts := httptest.NewServer(fake)
	defer ts.Close()

	d := newTestDriver(t, ts, results.Cloud, Request{Target: "example.com", APIKey: "k", Recheck: true})
	_, err := d.Start(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, fake.posted)
	assert.Len(t, fake.resultAuth, 1)
	assert.Equal(t, "quick=False", fake.statusQuery)
}

func TestCloudPrecheckServerErrorFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	d := newTestDriver(t, ts, results.Cloud, Request{Target: "example.com"})
	_, err := d.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Equal(t, StateFailed, d.State())
}

func TestCloudSubmitErrorWithRecommendation(t *testing.T) {
	reply := `{"error":{"detail":[{"msg":{"error":"Daily limit reached","recommendation":"Use an API key"}}]}}`

	for _, quiet := range []bool{true, false} {
		fake := &cloudFake{submitReply: reply}
		ts := httptest.NewServer(fake)

		d, err := New(results.Cloud, Request{Target: "example.com", Recheck: true}, Options{
			Quiet:      quiet,
			BaseURL:    ts.URL,
			HTTPClient: ts.Client(),
		})
		require.NoError(t, err)

		_, err = d.Start(context.Background())
		ts.Close()

		require.Error(t, err)
		var ve *sharedErrors.VendorError
		require.ErrorAs(t, err, &ve)
		if quiet {
			assert.Equal(t, "Daily limit reached Recommendation: Use an API key", err.Error())
		} else {
			assert.Equal(t, "Daily limit reached\nRecommendation: Use an API key", err.Error())
		}
	}
}

func TestCloudVendorErrorShapes(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: `{"detail":[{"msg":"Invalid target"}]}`, want: "Invalid target"},
		{raw: `{"detail":[{"msg":{"error":"Blocked"}}]}`, want: "Blocked"},
		{raw: `{"detail":[]}`, want: "unknown error format"},
		{raw: `"plain"`, want: "plain"},
	}
	for _, tt := range tests {
		err := cloudVendorError(json.RawMessage(tt.raw), false)
		assert.Equal(t, tt.want, err.Error(), tt.raw)
	}
}
