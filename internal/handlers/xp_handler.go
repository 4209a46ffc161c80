package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"lingoclash/internal/auth"
	"lingoclash/internal/events"
	"lingoclash/internal/models"
	"lingoclash/internal/service"
	"lingoclash/internal/validation"
	"lingoclash/internal/xp"
)

// XPHandler exposes the XP engine to the browser UI: the HUD snapshot, the
// award trigger, and the manual sync endpoint.
type XPHandler struct {
	progress *service.ProgressService
	engine   *service.XPService
	bus      *events.Bus
}

// NewXPHandler creates a new XP handler
func NewXPHandler(progress *service.ProgressService, engine *service.XPService, bus *events.Bus) *XPHandler {
	return &XPHandler{progress: progress, engine: engine, bus: bus}
}

// HUD returns the current XP total and level progress. The HUD pulls this
// once on mount and then follows the event stream for updates.
func (h *XPHandler) HUD(w http.ResponseWriter, r *http.Request) {
	total := h.progress.TotalXP()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"totalXP":  total,
		"progress": xp.Progress(total),
	})
}

// Award credits XP for a completed quiz attempt. Repeating the call with the
// same attempt ID reports the same earned value but awards nothing.
func (h *XPHandler) Award(w http.ResponseWriter, r *http.Request) {
	var result models.AttemptResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "Failed to decode attempt result", err)
		return
	}

	if err := validation.ValidateAttemptResult(result); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "Rejected attempt result", err)
		return
	}

	outcome := h.engine.Award(r.Context(), result)
	respondJSON(w, http.StatusOK, outcome)
}

// Sync reconciles the local store with the remote profile and reports the
// merged state.
func (h *XPHandler) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.Reconcile(r.Context())
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "Sync without signed-in principal", err)
			return
		}
		respondWithError(w, http.StatusBadGateway, ErrUpstreamUnavailable, "Sync failed", err)
		return
	}

	publishSyncResult(h.bus, result)
	respondJSON(w, http.StatusOK, result)
}

// publishSyncResult forwards a reconciliation result onto the bus for the
// streak badge.
func publishSyncResult(bus *events.Bus, result models.SyncResult) {
	bus.PublishStreakChanged(events.StreakChanged{Days: result.Streak})
}
