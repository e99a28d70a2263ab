package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddr(t *testing.T) {
	tests := map[string]string{
		"":                "127.0.0.1:8731",
		"garbage":         "127.0.0.1:8731",
		"0.0.0.0:9000":    "127.0.0.1:9000",
		":9000":           "127.0.0.1:9000",
		"[::]:9000":       "127.0.0.1:9000",
		"127.0.0.1:8731":  "127.0.0.1:8731",
		"192.168.1.5:800": "192.168.1.5:800",
	}

	for in, want := range tests {
		assert.Equal(t, want, normalizeAddr(in), in)
	}
}

func healthServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProbe_Healthy(t *testing.T) {
	srv := healthServer(t, http.StatusOK, `{"status":"ok","monitor_running":true,"clips":3}`)

	require.NoError(t, probe(context.Background(), srv.Client(), srv.URL))
}

func TestProbe_MonitorStopped(t *testing.T) {
	srv := healthServer(t, http.StatusOK, `{"status":"ok","monitor_running":false}`)

	err := probe(context.Background(), srv.Client(), srv.URL)
	require.ErrorIs(t, err, errMonitorStopped)
}

func TestProbe_BadStatus(t *testing.T) {
	srv := healthServer(t, http.StatusServiceUnavailable, `{"error":"database unavailable"}`)

	err := probe(context.Background(), srv.Client(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestProbe_MalformedBody(t *testing.T) {
	srv := healthServer(t, http.StatusOK, `not json`)

	err := probe(context.Background(), srv.Client(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode health")
}
