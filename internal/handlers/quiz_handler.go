package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"lingoclash/internal/auth"
	"lingoclash/internal/gateway"
)

// QuizHandler forwards quiz content requests to the learning API. The
// payloads are opaque: sections, units, and scored attempts pass through
// untouched.
type QuizHandler struct {
	quiz *gateway.QuizClient
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quiz *gateway.QuizClient) *QuizHandler {
	return &QuizHandler{quiz: quiz}
}

// Sections lists the quiz sections.
func (h *QuizHandler) Sections(w http.ResponseWriter, r *http.Request) {
	raw, err := h.quiz.Sections(r.Context())
	if err != nil {
		respondUpstreamError(w, "Failed to fetch sections", err)
		return
	}
	respondJSON(w, http.StatusOK, raw)
}

// Unit fetches one quiz unit.
func (h *QuizHandler) Unit(w http.ResponseWriter, r *http.Request) {
	raw, err := h.quiz.Unit(r.Context(), r.PathValue("unitId"))
	if err != nil {
		respondUpstreamError(w, "Failed to fetch unit", err)
		return
	}
	respondJSON(w, http.StatusOK, raw)
}

// SubmitAttempt forwards a completed attempt for scoring.
func (h *QuizHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "Failed to read attempt body", err)
		return
	}

	raw, err := h.quiz.SubmitAttempt(r.Context(), json.RawMessage(body))
	if err != nil {
		respondUpstreamError(w, "Failed to submit attempt", err)
		return
	}
	respondJSON(w, http.StatusOK, raw)
}

// Attempt fetches a previously scored attempt.
func (h *QuizHandler) Attempt(w http.ResponseWriter, r *http.Request) {
	raw, err := h.quiz.Attempt(r.Context(), r.PathValue("attemptId"))
	if err != nil {
		respondUpstreamError(w, "Failed to fetch attempt", err)
		return
	}
	respondJSON(w, http.StatusOK, raw)
}

func respondUpstreamError(w http.ResponseWriter, logMsg string, err error) {
	if errors.Is(err, auth.ErrNotAuthenticated) {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, logMsg, err)
		return
	}
	var statusErr *gateway.StatusError
	if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
		respondWithError(w, http.StatusNotFound, "Not found", logMsg, err)
		return
	}
	respondWithError(w, http.StatusBadGateway, ErrUpstreamUnavailable, logMsg, err)
}
