package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tonica-app/tonica/internal/catalog"
)

// MockCatalogSource is a mock implementation of catalog.Source
type MockCatalogSource struct {
	mock.Mock
}

func (m *MockCatalogSource) Load(ctx context.Context) ([]catalog.Section, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Section), args.Error(1)
}

func (m *MockCatalogSource) Describe() string {
	args := m.Called()
	return args.String(0)
}
