package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tonica-app/tonica/internal/errors"
	"github.com/tonica-app/tonica/internal/logger"
	"github.com/tonica-app/tonica/internal/models"
	"github.com/tonica-app/tonica/internal/notify"
	"github.com/tonica-app/tonica/internal/progress"
	"github.com/tonica-app/tonica/internal/repository"
)

// AttemptFilter narrows GetAttempts. Zero-value fields match everything;
// Limit <= 0 uses the service default.
type AttemptFilter struct {
	TopicID   string
	SectionID string
	Limit     int
}

// SectionOverview is the per-section readout merging catalog structure
// with a user's snapshot.
type SectionOverview struct {
	SectionID            string  `json:"section_id"`
	Title                string  `json:"title"`
	TopicsCompleted      int     `json:"topics_completed"`
	TotalTopics          int     `json:"total_topics"`
	SectionQuizCompleted bool    `json:"section_quiz_completed"`
	ProgressPercentage   float64 `json:"progress_percentage"`
	Complete             bool    `json:"complete"`
	FullyComplete        bool    `json:"fully_complete"`
}

// ProgressService orchestrates the read-modify-write cycle around progress
// snapshots: load, transform, persist, notify. Writes for the same user are
// serialized; the snapshot handed to observers is only published after a
// successful persist.
type ProgressService interface {
	RecordAttempt(ctx context.Context, userID string, in progress.AttemptInput) (*progress.Snapshot, error)
	CompleteTopic(ctx context.Context, userID, topicID string, passed bool) (*progress.Snapshot, error)
	CompleteSection(ctx context.Context, userID, sectionID string, passed bool) (*progress.Snapshot, error)
	SyncSectionProgress(ctx context.Context, userID, sectionID string) (*progress.Snapshot, error)
	ResetProgress(ctx context.Context, userID string) error

	GetSnapshot(ctx context.Context, userID string) (*progress.Snapshot, error)
	GetStats(ctx context.Context, userID string) (*progress.Stats, error)
	GetAttempts(ctx context.Context, userID string, filter AttemptFilter) ([]progress.Attempt, error)
	GetSectionOverview(ctx context.Context, userID string) ([]SectionOverview, error)
	ListUsers(ctx context.Context, filter models.UserFilter) ([]models.UserSummary, int, error)
}

type progressService struct {
	repo        repository.ProgressRepository
	catalogSvc  CatalogService
	notifier    notify.Notifier
	recentLimit int
	locks       userLocks
}

// NewProgressService creates a new ProgressService. recentLimit caps
// GetAttempts when the caller gives no limit.
func NewProgressService(repo repository.ProgressRepository, catalogSvc CatalogService, notifier notify.Notifier, recentLimit int) ProgressService {
	if recentLimit <= 0 {
		recentLimit = progress.DefaultRecentAttempts
	}
	return &progressService{
		repo:        repo,
		catalogSvc:  catalogSvc,
		notifier:    notifier,
		recentLimit: recentLimit,
	}
}

func (s *progressService) RecordAttempt(ctx context.Context, userID string, in progress.AttemptInput) (*progress.Snapshot, error) {
	log := logger.FromContext(ctx)
	log.Debug("recording attempt: user_id=%s, topic_id=%s, section_id=%s, passed=%t", userID, in.TopicID, in.SectionID, in.Passed)

	return s.mutate(ctx, userID, func(snap progress.Snapshot) progress.Snapshot {
		next := snap.RecordQuizAttempt(in)
		if in.TopicQuiz && in.Passed {
			next = s.syncOwningSection(ctx, next, in.TopicID)
		}
		return next
	})
}

func (s *progressService) CompleteTopic(ctx context.Context, userID, topicID string, passed bool) (*progress.Snapshot, error) {
	log := logger.FromContext(ctx)
	log.Debug("completing topic quiz: user_id=%s, topic_id=%s, passed=%t", userID, topicID, passed)

	if topicID == "" {
		return nil, errors.NewValidationError("topic_id", "cannot be empty")
	}

	return s.mutate(ctx, userID, func(snap progress.Snapshot) progress.Snapshot {
		next := snap.CompleteTopicQuiz(topicID, passed)
		if passed {
			next = s.syncOwningSection(ctx, next, topicID)
		}
		return next
	})
}

func (s *progressService) CompleteSection(ctx context.Context, userID, sectionID string, passed bool) (*progress.Snapshot, error) {
	log := logger.FromContext(ctx)
	log.Debug("completing section quiz: user_id=%s, section_id=%s, passed=%t", userID, sectionID, passed)

	if sectionID == "" {
		return nil, errors.NewValidationError("section_id", "cannot be empty")
	}

	return s.mutate(ctx, userID, func(snap progress.Snapshot) progress.Snapshot {
		return snap.CompleteSectionQuiz(sectionID, passed)
	})
}

func (s *progressService) SyncSectionProgress(ctx context.Context, userID, sectionID string) (*progress.Snapshot, error) {
	log := logger.FromContext(ctx)
	log.Debug("syncing section progress: user_id=%s, section_id=%s", userID, sectionID)

	if sectionID == "" {
		return nil, errors.NewValidationError("section_id", "cannot be empty")
	}

	cat := s.catalogSvc.Catalog()
	if cat == nil {
		return nil, errors.NewUnavailableError("catalog not loaded", nil)
	}
	if _, ok := cat.Section(sectionID); !ok {
		return nil, errors.NewNotFoundError("section", sectionID)
	}

	return s.mutate(ctx, userID, func(snap progress.Snapshot) progress.Snapshot {
		return snap.UpdateSectionProgress(sectionID, cat.TotalTopics(sectionID))
	})
}

func (s *progressService) ResetProgress(ctx context.Context, userID string) error {
	log := logger.FromContext(ctx)
	log.Debug("resetting progress: user_id=%s", userID)

	if userID == "" {
		return errors.NewValidationError("user_id", "cannot be empty")
	}

	mu := s.locks.forUser(userID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.repo.Delete(ctx, userID); err != nil {
		log.Error("failed to reset progress for user %s: %v", userID, err)
		return errors.NewInternalError(err)
	}

	s.notifier.Notify(ctx, notify.Event{UserID: userID, At: time.Now().UTC()})
	return nil
}

func (s *progressService) GetSnapshot(ctx context.Context, userID string) (*progress.Snapshot, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting progress snapshot: user_id=%s", userID)

	if userID == "" {
		return nil, errors.NewValidationError("user_id", "cannot be empty")
	}

	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *progressService) GetStats(ctx context.Context, userID string) (*progress.Stats, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting learning stats: user_id=%s", userID)

	if userID == "" {
		return nil, errors.NewValidationError("user_id", "cannot be empty")
	}

	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := snap.Stats(time.Now().UTC())
	return &stats, nil
}

func (s *progressService) GetAttempts(ctx context.Context, userID string, filter AttemptFilter) ([]progress.Attempt, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting attempts: user_id=%s, topic_id=%s, section_id=%s, limit=%d", userID, filter.TopicID, filter.SectionID, filter.Limit)

	if userID == "" {
		return nil, errors.NewValidationError("user_id", "cannot be empty")
	}

	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	all := snap.Attempts()
	out := make([]progress.Attempt, 0, len(all))
	for _, a := range all {
		if filter.TopicID != "" && a.TopicID != filter.TopicID {
			continue
		}
		if filter.SectionID != "" && a.SectionID != filter.SectionID {
			continue
		}
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = s.recentLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *progressService) GetSectionOverview(ctx context.Context, userID string) ([]SectionOverview, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting section overview: user_id=%s", userID)

	if userID == "" {
		return nil, errors.NewValidationError("user_id", "cannot be empty")
	}

	cat := s.catalogSvc.Catalog()
	if cat == nil {
		return nil, errors.NewUnavailableError("catalog not loaded", nil)
	}

	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Recompute each section against the catalog so the overview reflects
	// the current content structure even when the stored entries are stale.
	scratch := snap
	overview := make([]SectionOverview, 0, cat.SectionCount())
	for _, sec := range cat.Sections() {
		scratch = scratch.UpdateSectionProgress(sec.ID, len(sec.Topics))
		sp := scratch.SectionProgressFor(sec.ID)
		overview = append(overview, SectionOverview{
			SectionID:            sp.SectionID,
			Title:                sec.Title,
			TopicsCompleted:      sp.TopicsCompleted,
			TotalTopics:          sp.TotalTopics,
			SectionQuizCompleted: sp.SectionQuizCompleted,
			ProgressPercentage:   sp.ProgressPercentage(),
			Complete:             sp.IsComplete(),
			FullyComplete:        sp.IsFullyComplete(),
		})
	}
	return overview, nil
}

func (s *progressService) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.UserSummary, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing users: limit=%d, offset=%d", filter.Limit, filter.Offset)

	users, err := s.repo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list users: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count users: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}

	return users, total, nil
}

// mutate runs one serialized read-modify-write cycle for the user and
// notifies observers after the new snapshot is stored.
func (s *progressService) mutate(ctx context.Context, userID string, change func(progress.Snapshot) progress.Snapshot) (*progress.Snapshot, error) {
	if userID == "" {
		return nil, errors.NewValidationError("user_id", "cannot be empty")
	}
	log := logger.FromContext(ctx)

	mu := s.locks.forUser(userID)
	mu.Lock()
	defer mu.Unlock()

	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := change(snap)

	if err := s.repo.Put(ctx, userID, next); err != nil {
		log.Error("failed to persist progress for user %s: %v", userID, err)
		return nil, errors.NewInternalError(err)
	}

	s.notifier.Notify(ctx, notify.Event{UserID: userID, At: time.Now().UTC()})
	return &next, nil
}

// load returns the user's stored snapshot, or an empty one when the user
// has none. An unreadable stored document also starts fresh so a single
// bad row cannot lock a user out of recording progress.
func (s *progressService) load(ctx context.Context, userID string) (progress.Snapshot, error) {
	log := logger.FromContext(ctx)

	snap, err := s.repo.Get(ctx, userID)
	if err != nil {
		if repository.IsCorrupt(err) {
			log.Warn("stored progress for user %s is unreadable, starting fresh: %v", userID, err)
			return progress.Empty(), nil
		}
		log.Error("failed to load progress for user %s: %v", userID, err)
		return progress.Snapshot{}, errors.NewInternalError(err)
	}
	if snap == nil {
		return progress.Empty(), nil
	}
	return *snap, nil
}

func (s *progressService) syncOwningSection(ctx context.Context, snap progress.Snapshot, topicID string) progress.Snapshot {
	if topicID == "" {
		return snap
	}
	cat := s.catalogSvc.Catalog()
	if cat == nil {
		return snap
	}
	sectionID, ok := cat.SectionOf(topicID)
	if !ok {
		logger.FromContext(ctx).Debug("topic %s not in catalog, skipping section sync", topicID)
		return snap
	}
	return snap.UpdateSectionProgress(sectionID, cat.TotalTopics(sectionID))
}

// userLocks hands out one mutex per user ID so concurrent writes for the
// same user serialize while different users proceed in parallel.
type userLocks struct {
	mu    sync.Mutex
	users map[string]*sync.Mutex
}

func (l *userLocks) forUser(userID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.users == nil {
		l.users = make(map[string]*sync.Mutex)
	}
	mu, ok := l.users[userID]
	if !ok {
		mu = &sync.Mutex{}
		l.users[userID] = mu
	}
	return mu
}
