package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tonica-app/tonica/internal/errors"
	"github.com/tonica-app/tonica/internal/models"
	"github.com/tonica-app/tonica/internal/notify"
	"github.com/tonica-app/tonica/internal/progress"
	"github.com/tonica-app/tonica/internal/repository"
	"github.com/tonica-app/tonica/internal/services"
	"github.com/tonica-app/tonica/internal/testutil/mocks"
)

func testCatalogService(t *testing.T) services.CatalogService {
	t.Helper()
	source := new(mocks.MockCatalogSource)
	source.On("Describe").Return("test source")
	source.On("Load", mock.Anything).Return(catalogSections(), nil)

	svc := services.NewCatalogService(source)
	require.NoError(t, svc.Reload(context.Background()))
	return svc
}

func newProgressService(t *testing.T) (services.ProgressService, *mocks.MockProgressRepository, *[]notify.Event) {
	t.Helper()
	repo := new(mocks.MockProgressRepository)

	broadcaster := notify.NewBroadcaster()
	events := &[]notify.Event{}
	broadcaster.Subscribe(notify.ListenerFunc(func(_ context.Context, e notify.Event) {
		*events = append(*events, e)
	}))

	svc := services.NewProgressService(repo, testCatalogService(t), broadcaster, 10)
	return svc, repo, events
}

func TestRecordAttemptNewUser(t *testing.T) {
	svc, repo, events := newProgressService(t)
	repo.On("Get", mock.Anything, "user-1").Return(nil, nil)
	repo.On("Put", mock.Anything, "user-1", mock.AnythingOfType("progress.Snapshot")).Return(nil)

	snap, err := svc.RecordAttempt(context.Background(), "user-1", progress.AttemptInput{
		TopicID:        "scales/major",
		Score:          0.8,
		Passed:         true,
		TimeSpent:      90 * time.Second,
		TotalQuestions: 10,
		CorrectAnswers: 8,
		TopicQuiz:      true,
	})

	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 1, snap.TotalQuizzesTaken())
	assert.True(t, snap.IsTopicCompleted("scales/major"))
	assert.InDelta(t, 0.8, snap.BestScore("scales/major"), 1e-9)

	require.Len(t, *events, 1, "observers hear about the change")
	assert.Equal(t, "user-1", (*events)[0].UserID)
	repo.AssertExpectations(t)
}

func TestRecordAttemptSyncsOwningSection(t *testing.T) {
	svc, repo, _ := newProgressService(t)
	repo.On("Get", mock.Anything, "user-1").Return(nil, nil)
	repo.On("Put", mock.Anything, "user-1", mock.AnythingOfType("progress.Snapshot")).Return(nil)

	snap, err := svc.RecordAttempt(context.Background(), "user-1", progress.AttemptInput{
		TopicID:   "scales/major",
		Score:     1,
		Passed:    true,
		TopicQuiz: true,
	})

	require.NoError(t, err)
	sp := snap.SectionProgressFor("scales")
	assert.Equal(t, 1, sp.TopicsCompleted)
	assert.Equal(t, 3, sp.TotalTopics, "total comes from the catalog")
}

func TestRecordAttemptFailedDoesNotSyncSection(t *testing.T) {
	svc, repo, _ := newProgressService(t)
	repo.On("Get", mock.Anything, "user-1").Return(nil, nil)
	repo.On("Put", mock.Anything, "user-1", mock.AnythingOfType("progress.Snapshot")).Return(nil)

	snap, err := svc.RecordAttempt(context.Background(), "user-1", progress.AttemptInput{
		TopicID:   "scales/major",
		Score:     0.2,
		Passed:    false,
		TopicQuiz: true,
	})

	require.NoError(t, err)
	assert.Zero(t, snap.SectionProgressFor("scales").TotalTopics)
	assert.Equal(t, 1, snap.TotalQuizzesTaken())
}

func TestRecordAttemptUnknownTopicSkipsSectionSync(t *testing.T) {
	svc, repo, _ := newProgressService(t)
	repo.On("Get", mock.Anything, "user-1").Return(nil, nil)
	repo.On("Put", mock.Anything, "user-1", mock.AnythingOfType("progress.Snapshot")).Return(nil)

	snap, err := svc.RecordAttempt(context.Background(), "user-1", progress.AttemptInput{
		TopicID:   "improvisation/bebop",
		Passed:    true,
		TopicQuiz: true,
	})

	require.NoError(t, err)
	assert.True(t, snap.IsTopicCompleted("improvisation/bebop"))
	assert.Empty(t, snap.SectionProgressAll())
}

func TestRecordAttemptStartsFreshOnCorruptSnapshot(t *testing.T) {
	svc, repo, _ := newProgressService(t)
	corrupt := fmt.Errorf("%w: user user-1", repository.ErrCorruptSnapshot)
	repo.On("Get", mock.Anything, "user-1").Return(nil, corrupt)
	repo.On("Put", mock.Anything, "user-1", mock.AnythingOfType("progress.Snapshot")).Return(nil)

	snap, err := svc.RecordAttempt(context.Background(), "user-1", progress.AttemptInput{
		TopicID:   "scales/major",
		Passed:    true,
		TopicQuiz: true,
	})

	require.NoError(t, err, "a bad stored row must not block recording")
	assert.Equal(t, 1, snap.TotalQuizzesTaken())
}

func TestRecordAttemptRepositoryGetError(t *testing.T) {
	svc, repo, events := newProgressService(t)
	repo.On("Get", mock.Anything, "user-1").Return(nil, fmt.Errorf("disk gone"))

	snap, err := svc.RecordAttempt(context.Background(), "user-1", progress.AttemptInput{TopicID: "scales/major"})

	require.Error(t, err)
	assert.Nil(t, snap)
	assert.Empty(t, *events)
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordAttemptPutFailureSuppressesNotification(t *testing.T) {
	svc, repo, events := newProgressService(t)
	repo.On("Get", mock.Anything, "user-1").Return(nil, nil)
	repo.On("Put", mock.Anything, "user-1", mock.AnythingOfType("progress.Snapshot")).Return(fmt.Errorf("disk full"))

	snap, err := svc.RecordAttempt(context.Background(), "user-1", progress.AttemptInput{TopicID: "scales/major"})

	require.Error(t, err)
	assert.Nil(t, snap)
	assert.Empty(t, *events, "events only fire after a successful persist")
}

func TestRecordAttemptBuildsOnStoredSnapshot(t *testing.T) {
	svc, repo, _ := newProgressService(t)
	stored := progress.Empty().CompleteTopicQuiz("scales/major", true)
	repo.On("Get", mock.Anything, "user-1").Return(&stored, nil)
	repo.On("Put", mock.Anything, "user-1", mock.AnythingOfType("progress.Snapshot")).Return(nil)

	snap, err := svc.RecordAttempt(context.Background(), "user-1", progress.AttemptInput{
		TopicID:   "scales/minor",
		Passed:    true,
		TopicQuiz: true,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, snap.TotalQuizzesTaken())
	assert.True(t, snap.IsTopicCompleted("scales/major"))
	assert.True(t, snap.IsTopicCompleted("scales/minor"))
	assert.Equal(t, 2, snap.SectionProgressFor("scales").TopicsCompleted)
}

func TestCompleteTopicValidation(t *testing.T) {
	svc, repo, _ := newProgressService(t)

	_, err := svc.CompleteTopic(context.Background(), "user-1", "", true)

	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCompleteTopicSyncsSection(t *testing.T) {
	svc, repo, _ := newProgressService(t)
	repo.On("Get", mock.Anything, "user-1").Return(nil, nil)
	repo.On("Put", mock.Anything, "user-1", mock.AnythingOfType("progress.Snapshot")).Return(nil)

	snap, err := svc.CompleteTopic(context.Background(), "user-1", "chords/triads", true)

	require.NoError(t, err)
	assert.True(t, snap.IsTopicCompleted("chords/triads"))
	sp := snap.SectionProgressFor("chords")
	assert.Equal(t, 1, sp.TopicsCompleted)
	assert.Equal(t, 1, sp.TotalTopics)
	assert.True(t, sp.IsComplete())
}

func TestCompleteSection(t *testing.T) {
	svc, repo, _ := newProgressService(t)
	repo.On("Get", mock.Anything, "user-1").Return(nil, nil)
	repo.On("Put", mock.Anything, "user-1", mock.AnythingOfType("progress.Snapshot")).Return(nil)

	snap, err := svc.CompleteSection(context.Background(), "user-1", "scales", true)

	require.NoError(t, err)
	assert.True(t, snap.IsSectionCompleted("scales"))
	assert.Equal(t, 1, snap.TotalQuizzesTaken())
}

func TestSyncSectionProgress(t *testing.T) {
	svc, repo, _ := newProgressService(t)
	stored := progress.Empty().
		CompleteTopicQuiz("scales/major", true).
		CompleteTopicQuiz("scales/minor", true)
	repo.On("Get", mock.Anything, "user-1").Return(&stored, nil)
	repo.On("Put", mock.Anything, "user-1", mock.AnythingOfType("progress.Snapshot")).Return(nil)

	snap, err := svc.SyncSectionProgress(context.Background(), "user-1", "scales")

	require.NoError(t, err)
	sp := snap.SectionProgressFor("scales")
	assert.Equal(t, 2, sp.TopicsCompleted)
	assert.Equal(t, 3, sp.TotalTopics)
	assert.InDelta(t, 2.0/3.0, sp.ProgressPercentage(), 1e-9)
}

func TestSyncSectionProgressUnknownSection(t *testing.T) {
	svc, repo, _ := newProgressService(t)

	_, err := svc.SyncSectionProgress(context.Background(), "user-1", "improvisation")

	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotFound, appErr.Code)
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetProgress(t *testing.T) {
	svc, repo, events := newProgressService(t)
	repo.On("Delete", mock.Anything, "user-1").Return(nil)

	require.NoError(t, svc.ResetProgress(context.Background(), "user-1"))

	require.Len(t, *events, 1)
	assert.Equal(t, "user-1", (*events)[0].UserID)
	repo.AssertExpectations(t)
}

func TestGetSnapshotMissingUser(t *testing.T) {
	svc, repo, _ := newProgressService(t)
	repo.On("Get", mock.Anything, "user-1").Return(nil, nil)

	snap, err := svc.GetSnapshot(context.Background(), "user-1")

	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Zero(t, snap.TotalQuizzesTaken())
}

func TestGetStats(t *testing.T) {
	svc, repo, _ := newProgressService(t)
	stored := progress.Empty().CompleteTopicQuiz("scales/major", true)
	repo.On("Get", mock.Anything, "user-1").Return(&stored, nil)

	stats, err := svc.GetStats(context.Background(), "user-1")

	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.QuizzesTaken)
	assert.Equal(t, 1, stats.TopicsCompleted)
}

func TestGetAttemptsFilters(t *testing.T) {
	svc, repo, _ := newProgressService(t)
	stored := progress.Empty().
		CompleteTopicQuiz("scales/major", true).
		CompleteTopicQuiz("chords/triads", true).
		CompleteTopicQuiz("scales/major", false)
	repo.On("Get", mock.Anything, "user-1").Return(&stored, nil)

	attempts, err := svc.GetAttempts(context.Background(), "user-1", services.AttemptFilter{TopicID: "scales/major"})

	require.NoError(t, err)
	require.Len(t, attempts, 2)
	for _, a := range attempts {
		assert.Equal(t, "scales/major", a.TopicID)
	}
}

func TestGetAttemptsLimit(t *testing.T) {
	svc, repo, _ := newProgressService(t)
	stored := progress.Empty()
	for i := 0; i < 5; i++ {
		stored = stored.CompleteTopicQuiz("scales/major", true)
	}
	repo.On("Get", mock.Anything, "user-1").Return(&stored, nil)

	attempts, err := svc.GetAttempts(context.Background(), "user-1", services.AttemptFilter{Limit: 3})

	require.NoError(t, err)
	assert.Len(t, attempts, 3)
}

func TestGetSectionOverview(t *testing.T) {
	svc, repo, _ := newProgressService(t)
	stored := progress.Empty().
		CompleteTopicQuiz("scales/major", true).
		CompleteSectionQuiz("chords", true)
	repo.On("Get", mock.Anything, "user-1").Return(&stored, nil)

	overview, err := svc.GetSectionOverview(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, overview, 2, "one row per catalog section")

	assert.Equal(t, "scales", overview[0].SectionID, "catalog display order")
	assert.Equal(t, 1, overview[0].TopicsCompleted)
	assert.Equal(t, 3, overview[0].TotalTopics)
	assert.False(t, overview[0].Complete)

	assert.Equal(t, "chords", overview[1].SectionID)
	assert.True(t, overview[1].SectionQuizCompleted)
	assert.Zero(t, overview[1].TopicsCompleted)
}

func TestListUsers(t *testing.T) {
	svc, repo, _ := newProgressService(t)
	summaries := []models.UserSummary{{UserID: "user-1"}, {UserID: "user-2"}}
	filter := models.UserFilter{Limit: 20}
	repo.On("List", mock.Anything, filter).Return(summaries, nil)
	repo.On("Count", mock.Anything, filter).Return(7, nil)

	users, total, err := svc.ListUsers(context.Background(), filter)

	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, 7, total)
}

func TestListUsersRepositoryError(t *testing.T) {
	svc, repo, _ := newProgressService(t)
	repo.On("List", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("bad table"))

	_, _, err := svc.ListUsers(context.Background(), models.UserFilter{})

	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInternal, appErr.Code)
}
