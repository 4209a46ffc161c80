package gateway

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"lingoclash/internal/models"
)

// ProfileGateway is the remote record of truth for the user's XP and streak.
// The backend applies XP deltas additively and recomputes the streak; this
// client never derives either locally.
type ProfileGateway interface {
	FetchProfile(ctx context.Context) (models.Profile, error)
	PostXPDelta(ctx context.Context, delta models.XPDelta) (models.Profile, error)
}

// ProfileClient talks to the user-profile endpoints of the learning API.
type ProfileClient struct {
	apiClient
}

// NewProfileClient creates a profile client rooted at baseURL.
func NewProfileClient(baseURL string, tokens oauth2.TokenSource) *ProfileClient {
	return &ProfileClient{apiClient: newAPIClient(baseURL, tokens)}
}

// FetchProfile retrieves the current user's profile.
func (c *ProfileClient) FetchProfile(ctx context.Context) (models.Profile, error) {
	var profile models.Profile
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &profile); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

// PostXPDelta pushes an XP delta upstream and returns the updated profile,
// including the backend-recomputed streak.
func (c *ProfileClient) PostXPDelta(ctx context.Context, delta models.XPDelta) (models.Profile, error) {
	var profile models.Profile
	if err := c.do(ctx, http.MethodPost, "/api/users/xp", delta, &profile); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}
