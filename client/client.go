// File: client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnauthorized is returned when the upstream answers 401. The middleware
// layer reacts by destroying the auth session and pointing the caller at the
// sign-in screen; individual call sites never handle it themselves.
var ErrUnauthorized = errors.New("upstream rejected the bearer token")

// APIError carries a non-2xx upstream response. Message is the first of
// {non_field_errors[0], error, detail} found in the body, so callers can
// surface the server's own wording before falling back to a generic string.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned status %d", e.Status)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Message)
}

// Config holds everything the client needs to reach the car-service API.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// OAuth2 password-grant client credentials for the token endpoint.
	OAuthClientID     string
	OAuthClientSecret string
}

// Client wraps all outbound calls to the car-service REST API. It attaches
// the caller's bearer token, extracts upstream field errors, and maps 401 to
// ErrUnauthorized. No retries, no backoff: every other failure surfaces to
// the caller unchanged.
type Client struct {
	cfg  Config
	http *http.Client
}

// New builds a Client. The timeout bounds every upstream call; a hung
// upstream must not pin gateway connections.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// send issues one JSON request against the upstream. A non-nil out is
// populated from the response body on 2xx.
func (c *Client) send(ctx context.Context, method, path, token string, params url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, params), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}

// sendForm posts a form-encoded body, used only by the OAuth token endpoint.
func (c *Client) sendForm(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path, nil), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}

func (c *Client) buildURL(path string, params url.Values) string {
	full := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(params) > 0 {
		full += "?" + params.Encode()
	}
	return full
}

// decodeAPIError extracts the upstream's own error wording when present.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body struct {
		NonFieldErrors   []string `json:"non_field_errors"`
		Err              string   `json:"error"`
		Detail           string   `json:"detail"`
		ErrorDescription string   `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		switch {
		case len(body.NonFieldErrors) > 0:
			apiErr.Message = body.NonFieldErrors[0]
		case body.Err != "":
			apiErr.Message = body.Err
		case body.Detail != "":
			apiErr.Message = body.Detail
		case body.ErrorDescription != "":
			apiErr.Message = body.ErrorDescription
		}
	}
	return apiErr
}

// Ping probes the upstream base URL for the health monitor. Any response at
// all counts as reachable; only transport errors count against health.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL("/", nil), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
