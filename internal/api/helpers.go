package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tonica-app/tonica/internal/errors"
	"github.com/tonica-app/tonica/internal/logger"
)

const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.FromContext(r.Context()).Error("failed to marshal response: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":"INTERNAL_ERROR","message":"failed to encode response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errors.NewBadRequestError("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		logger.FromContext(r.Context()).Debug("failed to decode request body: %v", err)
		return errors.NewBadRequestError("invalid request body")
	}
	return nil
}

// queryInt parses an integer query parameter, falling back to def when
// missing or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// queryTime parses an RFC 3339 query parameter.
func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errors.NewValidationError(name, "must be an RFC 3339 timestamp")
	}
	return &t, nil
}

// topicIDParam extracts a topic ID that rides after the progress mount
// point. Topic IDs are namespaced "sectionID/topic", so they span path
// segments and a plain route param cannot hold them; the completion route
// captures the rest of the path and strips the trailing verb.
func topicIDParam(r *http.Request, suffix string) (string, bool) {
	rest := chi.URLParam(r, "*")
	id, found := strings.CutSuffix(rest, suffix)
	if !found || id == "" {
		return "", false
	}
	return id, true
}
