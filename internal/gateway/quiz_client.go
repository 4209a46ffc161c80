package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

// QuizClient proxies the quiz content API. Payloads are opaque here: the
// client fetches and forwards them without interpreting sections, units, or
// question content.
type QuizClient struct {
	apiClient
}

// NewQuizClient creates a quiz content client rooted at baseURL.
func NewQuizClient(baseURL string, tokens oauth2.TokenSource) *QuizClient {
	return &QuizClient{apiClient: newAPIClient(baseURL, tokens)}
}

// Sections lists the quiz sections.
func (c *QuizClient) Sections(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/quiz/sections", nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Unit fetches a single quiz unit with its questions.
func (c *QuizClient) Unit(ctx context.Context, unitID string) (json.RawMessage, error) {
	var raw json.RawMessage
	path := "/api/quiz/units/" + url.PathEscape(unitID)
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// SubmitAttempt posts a completed attempt and returns the scored result.
func (c *QuizClient) SubmitAttempt(ctx context.Context, attempt json.RawMessage) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/quiz/attempts", attempt, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Attempt fetches a previously scored attempt by ID.
func (c *QuizClient) Attempt(ctx context.Context, attemptID string) (json.RawMessage, error) {
	var raw json.RawMessage
	path := "/api/quiz/attempts/" + url.PathEscape(attemptID)
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
