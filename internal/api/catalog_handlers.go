package api

import (
	"net/http"

	"github.com/tonica-app/tonica/internal/errors"
)

func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.Catalog.Catalog()
	if cat == nil {
		handleError(w, r, errors.NewUnavailableError("catalog not loaded", nil))
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"source":   s.Catalog.Describe(),
		"sections": cat.Sections(),
	})
}

func (s *Server) handleReloadCatalog(w http.ResponseWriter, r *http.Request) {
	if err := s.Catalog.Reload(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}

	cat := s.Catalog.Catalog()
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"source":   s.Catalog.Describe(),
		"sections": cat.SectionCount(),
		"topics":   cat.TopicCount(),
		"warnings": cat.Warnings(),
	})
}
