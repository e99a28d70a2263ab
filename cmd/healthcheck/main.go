// Command healthcheck probes a running clipkeeper daemon and exits non-zero
// unless the API answers and the clipboard monitor is running.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	httphandler "github.com/ericfisherdev/clipkeeper/internal/adapter/driving/http"
	"github.com/ericfisherdev/clipkeeper/internal/config"
)

const probeTimeout = 2 * time.Second

var errMonitorStopped = errors.New("clipboard monitor is not running")

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	baseURL := "http://" + normalizeAddr(os.Getenv("CLIPKEEPER_LISTEN_ADDR"))
	if err := probe(ctx, &http.Client{Timeout: probeTimeout}, baseURL); err != nil {
		fmt.Fprintln(os.Stderr, "healthcheck:", err)
		os.Exit(1)
	}
}

func probe(ctx context.Context, client *http.Client, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/v1/health", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var health httphandler.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("decode health: %w", err)
	}
	if !health.MonitorRunning {
		return errMonitorStopped
	}

	return nil
}

// normalizeAddr points the probe at loopback when the daemon binds every
// interface, and falls back to the default listen address.
func normalizeAddr(raw string) string {
	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return config.DefaultListenAddr
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}

	return net.JoinHostPort(host, port)
}
