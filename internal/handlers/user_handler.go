package handlers

import (
	"errors"
	"net/http"

	"lingoclash/internal/auth"
	"lingoclash/internal/events"
	"lingoclash/internal/gateway"
)

// UserHandler proxies the remote profile for the dashboard and streak badge.
type UserHandler struct {
	profiles gateway.ProfileGateway
	bus      *events.Bus
}

// NewUserHandler creates a new user handler
func NewUserHandler(profiles gateway.ProfileGateway, bus *events.Bus) *UserHandler {
	return &UserHandler{profiles: profiles, bus: bus}
}

// Profile fetches the remote profile and publishes it on the bus so the
// streak badge picks up its initial snapshot.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.FetchProfile(r.Context())
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "Profile fetch without signed-in principal", err)
			return
		}
		respondWithError(w, http.StatusBadGateway, ErrUpstreamUnavailable, "Profile fetch failed", err)
		return
	}

	h.bus.PublishUserUpdated(events.UserUpdated{Profile: profile})
	respondJSON(w, http.StatusOK, profile)
}
