package api

import (
	"net/http"
	"strings"

	"github.com/tonica-app/tonica/internal/logger"
	"github.com/tonica-app/tonica/internal/models"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	activeSince, err := queryTime(r, "active_since")
	if err != nil {
		handleError(w, r, err)
		return
	}

	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}

	perPage := 25
	switch r.URL.Query().Get("per_page") {
	case "10":
		perPage = 10
	case "25":
		perPage = 25
	case "50":
		perPage = 50
	case "100":
		perPage = 100
	}

	orderBy := r.URL.Query().Get("order_by")
	orderDir := strings.ToUpper(r.URL.Query().Get("order_dir"))
	if orderDir != "ASC" && orderDir != "DESC" {
		orderDir = "DESC"
	}

	filter := models.UserFilter{
		ActiveSince:     activeSince,
		MinQuizzesTaken: queryInt(r, "min_quizzes", 0),
		Limit:           perPage,
		Offset:          (page - 1) * perPage,
		OrderBy:         orderBy,
		OrderDir:        orderDir,
	}

	users, totalCount, err := s.Progress.ListUsers(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}

	totalPages := totalCount / perPage
	if totalCount%perPage != 0 {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}

	log.Debug("found %d users", len(users))
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"users":       users,
		"page":        page,
		"per_page":    perPage,
		"total_pages": totalPages,
		"total_count": totalCount,
	})
}
