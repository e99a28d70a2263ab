package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	httphandler "github.com/ericfisherdev/clipkeeper/internal/adapter/driving/http"
)

const daemonTimeout = 2 * time.Second

// errDaemonUnavailable marks transport failures reaching the daemon. Callers
// fall back to working on the database directly.
var errDaemonUnavailable = errors.New("clipkeeper daemon not reachable")

// daemonClient talks to a running clipkeeper daemon. Copying through the
// daemon lets its monitor mark the value as seen, so a revealed password is
// not captured again.
type daemonClient struct {
	baseURL string
	http    *http.Client
}

func newDaemonClient(addr string) *daemonClient {
	return &daemonClient{
		baseURL: "http://" + daemonAddr(addr),
		http:    &http.Client{Timeout: daemonTimeout},
	}
}

// copyClip asks the daemon to copy clip id. When the daemon holds passwords
// locked, it unlocks with the passkey returned by passkey for this one copy
// and locks again afterwards.
func (c *daemonClient) copyClip(ctx context.Context, id int64, passkey func() (string, error)) (bool, error) {
	copied, err := c.postCopy(ctx, id)
	if err != nil || copied {
		return copied, err
	}

	var status httphandler.PasskeyStatusResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/passkey", nil, &status); err != nil {
		return false, err
	}
	if !status.PasskeySet || !status.Locked {
		return false, nil
	}

	pk, err := passkey()
	if err != nil || pk == "" {
		return false, err
	}

	code, err := c.do(ctx, http.MethodPost, "/api/v1/passkey/verify", httphandler.PasskeyRequest{Passkey: pk}, nil)
	if code == http.StatusUnauthorized {
		return false, errWrongPasskey
	}
	if err != nil {
		return false, err
	}
	defer func() {
		if _, err := c.do(ctx, http.MethodPost, "/api/v1/passkey/lock", nil, nil); err != nil {
			slog.Warn("failed to lock daemon passwords again", "error", err)
		}
	}()

	return c.postCopy(ctx, id)
}

func (c *daemonClient) postCopy(ctx context.Context, id int64) (bool, error) {
	var resp httphandler.CopyResponse
	if _, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/clips/%d/copy", id), nil, &resp); err != nil {
		return false, err
	}
	return resp.Copied, nil
}

// do sends a JSON request and decodes a 2xx JSON response into out when out
// is non-nil. The status code is returned even when err is non-nil.
func (c *daemonClient) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build %s request: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errDaemonUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("daemon %s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s response: %w", path, err)
		}
	}

	return resp.StatusCode, nil
}

// daemonAddr points at loopback when the daemon listens on every interface.
func daemonAddr(raw string) string {
	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return raw
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
