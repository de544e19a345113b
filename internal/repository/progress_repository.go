package repository

import (
	"context"
	"errors"

	"github.com/tonica-app/tonica/internal/models"
	"github.com/tonica-app/tonica/internal/progress"
)

// ErrCorruptSnapshot wraps a stored progress document that no longer
// decodes. Get returns it wrapped so the service layer can fall back to
// an empty snapshot instead of failing the request.
var ErrCorruptSnapshot = errors.New("corrupt progress snapshot")

// IsCorrupt reports whether err came from a snapshot that failed to decode.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorruptSnapshot)
}

// ProgressRepository handles progress snapshot persistence
type ProgressRepository interface {
	// Get returns the stored snapshot for the user, or (nil, nil) when the
	// user has none.
	Get(ctx context.Context, userID string) (*progress.Snapshot, error)
	// Put upserts the user's snapshot document.
	Put(ctx context.Context, userID string, snap progress.Snapshot) error
	// Delete removes the user's progress entirely.
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context, filter models.UserFilter) ([]models.UserSummary, error)
	Count(ctx context.Context, filter models.UserFilter) (int, error)
}
