package services

import (
	"context"
	"sync"

	"github.com/tonica-app/tonica/internal/catalog"
	"github.com/tonica-app/tonica/internal/errors"
	"github.com/tonica-app/tonica/internal/logger"
)

// CatalogService holds the current content catalog and reloads it from its
// configured source on demand. Content updates ship server-side, so a
// reload swaps the catalog without a restart.
type CatalogService interface {
	// Catalog returns the currently loaded catalog, or nil before the
	// first successful Reload.
	Catalog() *catalog.Catalog
	Reload(ctx context.Context) error
	Describe() string
}

type catalogService struct {
	source catalog.Source

	mu      sync.RWMutex
	current *catalog.Catalog
}

// NewCatalogService creates a new CatalogService reading from the given
// source. Call Reload before serving.
func NewCatalogService(source catalog.Source) CatalogService {
	return &catalogService{source: source}
}

func (s *catalogService) Catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *catalogService) Reload(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Debug("reloading catalog from %s", s.source.Describe())

	sections, err := s.source.Load(ctx)
	if err != nil {
		log.Error("failed to load catalog from %s: %v", s.source.Describe(), err)
		return errors.NewUnavailableError("catalog source unavailable", err)
	}

	cat, err := catalog.New(sections)
	if err != nil {
		log.Error("failed to build catalog: %v", err)
		return errors.NewUnavailableError("catalog is invalid", err)
	}

	for _, warning := range cat.Warnings() {
		log.Warn("catalog: %s", warning)
	}

	s.mu.Lock()
	s.current = cat
	s.mu.Unlock()

	log.Info("catalog loaded: %d sections, %d topics", cat.SectionCount(), cat.TopicCount())
	return nil
}

func (s *catalogService) Describe() string {
	return s.source.Describe()
}
