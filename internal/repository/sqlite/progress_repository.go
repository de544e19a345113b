package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/tonica-app/tonica/internal/logger"
	"github.com/tonica-app/tonica/internal/models"
	"github.com/tonica-app/tonica/internal/progress"
	"github.com/tonica-app/tonica/internal/repository"
)

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new ProgressRepository implementation
func NewProgressRepository(db *sql.DB) repository.ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Get(ctx context.Context, userID string) (*progress.Snapshot, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("getting progress: user_id=%s", userID)

	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT snapshot FROM user_progress WHERE user_id = ?`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no progress stored: user_id=%s", userID)
			return nil, nil
		}
		log.Error("failed to get progress: %v", err)
		return nil, err
	}

	var snap progress.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		log.Warn("stored snapshot for user_id=%s does not decode: %v", userID, err)
		return nil, fmt.Errorf("%w: user %s: %v", repository.ErrCorruptSnapshot, userID, err)
	}

	log.Debug("progress found: user_id=%s, quizzes_taken=%d", userID, snap.TotalQuizzesTaken())
	return &snap, nil
}

func (r *progressRepository) Put(ctx context.Context, userID string, snap progress.Snapshot) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("storing progress: user_id=%s, quizzes_taken=%d", userID, snap.TotalQuizzesTaken())

	doc, err := json.Marshal(snap)
	if err != nil {
		log.Error("failed to encode snapshot: %v", err)
		return err
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
INSERT INTO user_progress (
    user_id, snapshot, quizzes_taken, quizzes_passed, topics_completed,
    sections_completed, current_streak, longest_streak, last_activity_at,
    created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    snapshot = excluded.snapshot,
    quizzes_taken = excluded.quizzes_taken,
    quizzes_passed = excluded.quizzes_passed,
    topics_completed = excluded.topics_completed,
    sections_completed = excluded.sections_completed,
    current_streak = excluded.current_streak,
    longest_streak = excluded.longest_streak,
    last_activity_at = excluded.last_activity_at,
    updated_at = excluded.updated_at
`, userID, string(doc),
		snap.TotalQuizzesTaken(), snap.TotalQuizzesPassed(),
		len(snap.CompletedTopics()), len(snap.CompletedSections()),
		snap.CurrentStreak(), snap.LongestStreak(),
		nullableTime(snap.LastActivityDate()), now, now)
	if err != nil {
		log.Error("failed to store progress: %v", err)
		return err
	}

	log.Debug("progress stored: user_id=%s", userID)
	return nil
}

func (r *progressRepository) Delete(ctx context.Context, userID string) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("deleting progress: user_id=%s", userID)

	_, err := r.db.ExecContext(ctx, `DELETE FROM user_progress WHERE user_id = ?`, userID)
	if err != nil {
		log.Error("failed to delete progress: %v", err)
	}
	return err
}

func (r *progressRepository) List(ctx context.Context, filter models.UserFilter) ([]models.UserSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("listing users with filter: min_quizzes=%d, active_since=%v", filter.MinQuizzesTaken, filter.ActiveSince)

	query := sqlBuilder.Select(
		"user_id", "quizzes_taken", "quizzes_passed", "topics_completed",
		"sections_completed", "current_streak", "longest_streak",
		"last_activity_at", "updated_at", "created_at",
	).From("user_progress")

	query = applyUserFilter(query, filter)

	// Safe ORDER BY with validation
	orderBy := "last_activity_at"
	switch filter.OrderBy {
	case "quizzes_taken", "longest_streak", "created_at":
		orderBy = filter.OrderBy
	}
	orderDir := "DESC"
	if filter.OrderDir == "ASC" {
		orderDir = "ASC"
	}
	query = query.OrderBy(orderBy + " " + orderDir)

	// Pagination
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list users: %v", err)
		return nil, err
	}
	defer rows.Close()

	var users []models.UserSummary
	for rows.Next() {
		var u models.UserSummary
		var lastActivity sql.NullTime
		if err := rows.Scan(&u.UserID, &u.QuizzesTaken, &u.QuizzesPassed, &u.TopicsCompleted,
			&u.SectionsCompleted, &u.CurrentStreak, &u.LongestStreak,
			&lastActivity, &u.UpdatedAt, &u.CreatedAt); err != nil {
			log.Error("failed to scan user row: %v", err)
			return nil, err
		}
		u.LastActivityAt = timeOrZero(lastActivity)
		users = append(users, u)
	}
	log.Debug("found %d users", len(users))
	return users, rows.Err()
}

func (r *progressRepository) Count(ctx context.Context, filter models.UserFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("counting users with filter: min_quizzes=%d, active_since=%v", filter.MinQuizzesTaken, filter.ActiveSince)

	query := applyUserFilter(sqlBuilder.Select("COUNT(*)").From("user_progress"), filter)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count users: %v", err)
		return 0, err
	}
	return count, nil
}

// applyUserFilter adds the WHERE clauses shared by List and Count.
func applyUserFilter(query squirrel.SelectBuilder, filter models.UserFilter) squirrel.SelectBuilder {
	if filter.ActiveSince != nil {
		query = query.Where(squirrel.GtOrEq{"last_activity_at": filter.ActiveSince.UTC()})
	}
	if filter.MinQuizzesTaken > 0 {
		query = query.Where(squirrel.GtOrEq{"quizzes_taken": filter.MinQuizzesTaken})
	}
	return query
}
