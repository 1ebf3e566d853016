package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"feedbackhub/stats-worker-service/internal/app/stats-worker/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockStatsService мок для StatsServiceInterface
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) ProcessFeedbackEvent(ctx context.Context, event *entity.FeedbackEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockStatsService) RunRetention(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStatsService) RefreshStatusGauges(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ===================== NewCronScheduler Tests =====================

func TestNewCronScheduler(t *testing.T) {
	// Arrange
	mockSvc := new(MockStatsService)

	// Act
	scheduler := NewCronScheduler(mockSvc)

	// Assert
	assert.NotNil(t, scheduler)
	assert.NotNil(t, scheduler.cron)
	assert.Equal(t, mockSvc, scheduler.statsSvc)
}

// ===================== Start Tests =====================

func TestCronScheduler_Start_Success(t *testing.T) {
	// Arrange
	mockSvc := new(MockStatsService)
	scheduler := NewCronScheduler(mockSvc)

	ctx := context.Background()

	// Act
	err := scheduler.Start(ctx, "0 3 * * *") // Каждый день в 03:00

	// Assert
	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)

	// Cleanup
	scheduler.Stop()
}

func TestCronScheduler_Start_InvalidSchedule(t *testing.T) {
	// Arrange
	mockSvc := new(MockStatsService)
	scheduler := NewCronScheduler(mockSvc)

	ctx := context.Background()

	// Act
	err := scheduler.Start(ctx, "invalid cron expression")

	// Assert
	assert.Error(t, err)
}

// ===================== Cron Job Execution Tests =====================

func TestCronScheduler_JobExecution(t *testing.T) {
	// Arrange
	mockSvc := new(MockStatsService)
	scheduler := NewCronScheduler(mockSvc)

	ctx := context.Background()
	mockSvc.On("RunRetention", mock.Anything).Return(nil)

	// Используем @every для быстрого теста
	err := scheduler.Start(ctx, "@every 100ms")
	assert.NoError(t, err)

	// Ждём выполнения cron job
	time.Sleep(350 * time.Millisecond)

	// Cleanup
	scheduler.Stop()

	// Assert - должно быть минимум 2 срабатывания
	assert.GreaterOrEqual(t, len(mockSvc.Calls), 2)
}

func TestCronScheduler_JobExecution_WithError(t *testing.T) {
	// Cron job продолжает работать даже при ошибках
	// Arrange
	mockSvc := new(MockStatsService)
	scheduler := NewCronScheduler(mockSvc)

	ctx := context.Background()
	mockSvc.On("RunRetention", mock.Anything).Return(errors.New("db down"))

	err := scheduler.Start(ctx, "@every 100ms")
	assert.NoError(t, err)

	time.Sleep(350 * time.Millisecond)

	scheduler.Stop()

	// Assert - несмотря на ошибки, вызовы продолжаются
	assert.GreaterOrEqual(t, len(mockSvc.Calls), 2)
}

// ===================== Stop Tests =====================

func TestCronScheduler_Stop(t *testing.T) {
	// Arrange
	mockSvc := new(MockStatsService)
	scheduler := NewCronScheduler(mockSvc)

	ctx := context.Background()
	scheduler.Start(ctx, "0 3 * * *")

	// Act
	scheduler.Stop()

	// Assert
	assert.NotNil(t, scheduler.cron)
}

// ===================== GetEntries Tests =====================

func TestCronScheduler_GetEntries_Empty(t *testing.T) {
	// Arrange
	mockSvc := new(MockStatsService)
	scheduler := NewCronScheduler(mockSvc)

	// Act
	entries := scheduler.GetEntries()

	// Assert
	assert.Empty(t, entries)
}
