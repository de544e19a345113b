package api

import (
	"github.com/tonica-app/tonica/internal/db"
	"github.com/tonica-app/tonica/internal/notify"
	"github.com/tonica-app/tonica/internal/services"
)

// Server holds the dependencies the HTTP handlers need. Construct it in
// main and mount Routes().
type Server struct {
	DB       *db.DB
	Progress services.ProgressService
	Catalog  services.CatalogService
	Hub      *notify.Hub

	CORSAllowedOrigins []string
}
