// Package gateway holds the HTTP clients for the remote learning service:
// the user-profile API (record of truth for XP and streak) and the quiz
// content API (consumed as opaque payloads).
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const requestTimeout = 10 * time.Second

// StatusError reports a non-success HTTP response from the learning API.
type StatusError struct {
	Status int
	Path   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.Status, e.Path)
}

// apiClient is the shared bearer-authenticated HTTP plumbing.
type apiClient struct {
	baseURL string
	http    *http.Client
	tokens  oauth2.TokenSource
}

func newAPIClient(baseURL string, tokens oauth2.TokenSource) apiClient {
	return apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		tokens:  tokens,
	}
}

// do issues a bearer-authenticated request. The credential is resolved
// before any network attempt, so an unauthenticated caller fails fast with
// the token source's error. The response body is decoded into out when out
// is non-nil.
func (c *apiClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("no bearer credential for %s: %w", path, err)
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	token.SetAuthHeader(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Path: path}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
