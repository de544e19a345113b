package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tonica-app/tonica/internal/models"
	"github.com/tonica-app/tonica/internal/progress"
)

// MockProgressRepository is a mock implementation of repository.ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) Get(ctx context.Context, userID string) (*progress.Snapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*progress.Snapshot), args.Error(1)
}

func (m *MockProgressRepository) Put(ctx context.Context, userID string, snap progress.Snapshot) error {
	args := m.Called(ctx, userID, snap)
	return args.Error(0)
}

func (m *MockProgressRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockProgressRepository) List(ctx context.Context, filter models.UserFilter) ([]models.UserSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserSummary), args.Error(1)
}

func (m *MockProgressRepository) Count(ctx context.Context, filter models.UserFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}
