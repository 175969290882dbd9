package relay

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestForward(t *testing.T) {
	var gotPath, gotToken, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Admin-Token")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"paused"}`))
	}))
	defer srv.Close()

	r := New(map[string]string{"fixed": srv.URL}, "secret", discard())
	res, err := r.Forward(context.Background(), "fixed", "pause", []byte(`{}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, `{"status":"paused"}`, string(res.Body))
	assert.Equal(t, "/admin/pause", gotPath)
	assert.Equal(t, "secret", gotToken)
	assert.Equal(t, `{}`, gotBody)
}

func TestForwardPerTradeExit(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	r := New(map[string]string{"live": srv.URL}, "secret", discard())
	res, err := r.Forward(context.Background(), "live", "exit/T-42", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, "/admin/exit/T-42", gotPath)
}

func TestForwardRejectsUnknownInstance(t *testing.T) {
	r := New(map[string]string{}, "secret", discard())
	_, err := r.Forward(context.Background(), "ghost", "pause", nil)
	assert.Error(t, err)
}

func TestForwardRejectsUnknownAction(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	r := New(map[string]string{"fixed": srv.URL}, "secret", discard())
	for _, action := range []string{"shutdown", "exit/../../etc", "exit/", ""} {
		_, err := r.Forward(context.Background(), "fixed", action, nil)
		assert.Error(t, err, "action %q must be rejected", action)
	}
	assert.False(t, called, "rejected actions must never reach the engine")
}

func TestInstances(t *testing.T) {
	r := New(map[string]string{"live": "http://b", "fixed": "http://a"}, "", discard())
	assert.Equal(t, []string{"fixed", "live"}, r.Instances())
}

func TestProbe(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		_, _ = w.Write([]byte(`{"status":"running"}`))
	}))
	defer srv.Close()

	r := New(map[string]string{"live": srv.URL}, "secret", discard())
	res, err := r.Probe(context.Background(), "live", "status")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, `{"status":"running"}`, string(res.Body))
	assert.Equal(t, "/status", gotPath)
	assert.Equal(t, http.MethodGet, gotMethod)
}

func TestProbeRejectsUnknownEndpoint(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	r := New(map[string]string{"live": srv.URL}, "secret", discard())
	for _, ep := range []string{"admin/pause", "../secrets", ""} {
		_, err := r.Probe(context.Background(), "live", ep)
		assert.Error(t, err, "endpoint %q must be rejected", ep)
	}
	assert.False(t, called)
}
