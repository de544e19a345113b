package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tonica-app/tonica/internal/errors"
	"github.com/tonica-app/tonica/internal/logger"
)

const eventStreamBuffer = 16

// handleProgressEvents streams progress-change events for one user over
// SSE. The hub fans out every user's events; the handler filters.
func (s *Server) handleProgressEvents(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	userID := chi.URLParam(r, "userID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		handleError(w, r, errors.NewInternalError(fmt.Errorf("response writer does not support streaming")))
		return
	}

	stream, cancel := s.Hub.Subscribe(eventStreamBuffer)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	log.Info("event stream opened: user_id=%s", userID)
	defer log.Info("event stream closed: user_id=%s", userID)

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case event, open := <-stream:
			if !open {
				return
			}
			if event.UserID != userID {
				continue
			}
			data, err := json.Marshal(event)
			if err != nil {
				log.Error("failed to marshal event: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
