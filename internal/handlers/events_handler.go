package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"lingoclash/internal/events"
)

// EventsHandler bridges the in-process event bus to the browser over
// server-sent events. The HUD, XP overlay, and streak badge subscribe here.
// The stream carries only events published after the connection opened; the
// UI pulls its initial snapshot from the HUD and profile endpoints.
type EventsHandler struct {
	bus *events.Bus
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(bus *events.Bus) *EventsHandler {
	return &EventsHandler{bus: bus}
}

type sseEvent struct {
	name    string
	payload interface{}
}

// Stream subscribes the connection to the bus and forwards events until the
// client disconnects.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Streaming unsupported by response writer", nil)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Buffered so bus delivery never blocks on a slow client; a client that
	// cannot keep up loses events rather than stalling the publisher.
	ch := make(chan sseEvent, 32)
	forward := func(name string, payload interface{}) {
		select {
		case ch <- sseEvent{name: name, payload: payload}:
		default:
			log.Printf("Dropping %s event for slow SSE client", name)
		}
	}

	unsubXP := h.bus.SubscribeXPChanged(func(e events.XPChanged) {
		forward("xp-changed", e)
	})
	defer unsubXP()

	unsubStreak := h.bus.SubscribeStreakChanged(func(e events.StreakChanged) {
		forward("streak-changed", e.Days)
	})
	defer unsubStreak()

	unsubUser := h.bus.SubscribeUserUpdated(func(e events.UserUpdated) {
		forward("user-updated", e.Profile)
	})
	defer unsubUser()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			data, err := json.Marshal(ev.payload)
			if err != nil {
				log.Printf("Failed to encode %s event: %v", ev.name, err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.name, data)
			flusher.Flush()
		}
	}
}
