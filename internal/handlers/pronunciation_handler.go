package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"lingoclash/internal/audio"
)

// PronunciationHandler serves reference audio for the pronunciation practice
// page. Scoring itself happens on the learning service; this only provides
// the model pronunciation to play back.
type PronunciationHandler struct {
	tts      *audio.TTSService
	audioDir string
}

// NewPronunciationHandler creates a new pronunciation handler
func NewPronunciationHandler(tts *audio.TTSService, audioDir string) *PronunciationHandler {
	return &PronunciationHandler{tts: tts, audioDir: audioDir}
}

// Audio generates (or reuses) the reference audio for a phrase and serves it.
func (h *PronunciationHandler) Audio(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.URL.Query().Get("text"))
	if text == "" || len(text) > 200 {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'text' is required and must be under 200 characters", "", nil)
		return
	}

	filename, err := h.tts.GenerateAudioFile(text)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to generate reference audio", "TTS generation failed", err)
		return
	}

	http.ServeFile(w, r, filepath.Join(h.audioDir, filename))
}
