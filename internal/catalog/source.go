package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tonica-app/tonica/internal/logger"
)

//go:embed catalog.json
var defaultCatalog []byte

// Source loads the catalog's section list from somewhere. Content updates
// ship server-side, so a deployment can point at a file or a content
// service instead of the embedded default.
type Source interface {
	Load(ctx context.Context) ([]Section, error)
	// Describe names the source in logs.
	Describe() string
}

// SourceFor picks the source matching the configured location: empty
// selects the embedded default, http(s) URLs the content service, and
// anything else a local file path.
func SourceFor(location string) Source {
	switch {
	case location == "":
		return EmbeddedSource{}
	case strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://"):
		return NewHTTPSource(location)
	default:
		return FileSource{Path: location}
	}
}

// EmbeddedSource serves the catalog compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Load(ctx context.Context) ([]Section, error) {
	return Parse(defaultCatalog)
}

func (EmbeddedSource) Describe() string { return "embedded" }

// FileSource reads the catalog document from a local path.
type FileSource struct {
	Path string
}

func (f FileSource) Load(ctx context.Context) ([]Section, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

func (f FileSource) Describe() string { return "file:" + f.Path }

// HTTPSource fetches the catalog document from a content service.
type HTTPSource struct {
	url        string
	httpClient *http.Client
}

func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		url:        url,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (h *HTTPSource) Load(ctx context.Context) ([]Section, error) {
	log := logger.FromContext(ctx).WithPrefix("catalog").WithField("url", h.url)

	log.Debug("fetching catalog")
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return nil, err
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		log.Error("failed to fetch catalog: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	log.Debug("catalog response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("catalog request failed: status=%d, body=%s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("catalog status %d: %s", resp.StatusCode, string(body))
	}

	var doc document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		log.Error("failed to decode catalog response: %v", err)
		return nil, err
	}

	log.Info("fetched catalog with %d sections", len(doc.Sections))
	return doc.Sections, nil
}

func (h *HTTPSource) Describe() string { return h.url }
