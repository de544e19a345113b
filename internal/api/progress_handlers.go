package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tonica-app/tonica/internal/errors"
	"github.com/tonica-app/tonica/internal/services"
)

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	snap, err := s.Progress.GetSnapshot(r.Context(), userID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := s.Progress.ResetProgress(r.Context(), userID); err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecordAttempt(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req recordAttemptRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validateStruct(req); err != nil {
		handleError(w, r, err)
		return
	}

	snap, err := s.Progress.RecordAttempt(r.Context(), userID, req.input())
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, snap)
}

func (s *Server) handleGetAttempts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	filter := services.AttemptFilter{
		TopicID:   r.URL.Query().Get("topic_id"),
		SectionID: r.URL.Query().Get("section_id"),
		Limit:     queryInt(r, "limit", 0),
	}

	attempts, err := s.Progress.GetAttempts(r.Context(), userID, filter)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"attempts": attempts,
		"count":    len(attempts),
	})
}

func (s *Server) handleCompleteTopic(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	topicID, ok := topicIDParam(r, "/complete")
	if !ok {
		handleError(w, r, errors.NewNotFoundError("route", r.URL.Path))
		return
	}

	var req completeQuizRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validateStruct(req); err != nil {
		handleError(w, r, err)
		return
	}

	snap, err := s.Progress.CompleteTopic(r.Context(), userID, topicID, *req.Passed)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleCompleteSection(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	sectionID := chi.URLParam(r, "sectionID")

	var req completeQuizRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validateStruct(req); err != nil {
		handleError(w, r, err)
		return
	}

	snap, err := s.Progress.CompleteSection(r.Context(), userID, sectionID, *req.Passed)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleSyncSection(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	sectionID := chi.URLParam(r, "sectionID")

	snap, err := s.Progress.SyncSectionProgress(r.Context(), userID, sectionID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleSectionOverview(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	overview, err := s.Progress.GetSectionOverview(r.Context(), userID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"sections": overview,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	stats, err := s.Progress.GetStats(r.Context(), userID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, stats)
}
