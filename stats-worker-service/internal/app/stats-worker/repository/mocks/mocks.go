package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockStatsRepository мок для StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) RecordCreated(ctx context.Context, day time.Time, rating int, status string) error {
	args := m.Called(ctx, day, rating, status)
	return args.Error(0)
}

func (m *MockStatsRepository) RecordStatusChange(ctx context.Context, day time.Time, oldStatus, newStatus string) error {
	args := m.Called(ctx, day, oldStatus, newStatus)
	return args.Error(0)
}

func (m *MockStatsRepository) RecordDeleted(ctx context.Context, day time.Time, rating int, status string) error {
	args := m.Called(ctx, day, rating, status)
	return args.Error(0)
}

func (m *MockStatsRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsRepository) TotalsByStatus(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}
