package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"feedbackhub/pkg/metrics"
	"feedbackhub/stats-worker-service/internal/app/stats-worker/entity"
	"feedbackhub/stats-worker-service/internal/app/stats-worker/repository"
)

// StatsService агрегирует события отзывов в дневную статистику
type StatsService struct {
	statsRepo     repository.StatsRepository
	retentionDays int
}

// NewStatsService создает новый сервис статистики
func NewStatsService(statsRepo repository.StatsRepository, retentionDays int) *StatsService {
	return &StatsService{
		statsRepo:     statsRepo,
		retentionDays: retentionDays,
	}
}

// ProcessFeedbackEvent обрабатывает событие отзыва из Kafka.
// Статистика бакетируется по дате создания отзыва, а не по времени события.
func (s *StatsService) ProcessFeedbackEvent(ctx context.Context, event *entity.FeedbackEvent) error {
	start := time.Now()
	defer func() {
		metrics.WorkerProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	day := event.RecordCreatedAt

	var err error
	switch event.EventType {
	case entity.EventFeedbackCreated:
		err = s.statsRepo.RecordCreated(ctx, day, event.Rating, event.NewStatus)
	case entity.EventFeedbackStatusChanged:
		err = s.statsRepo.RecordStatusChange(ctx, day, event.OldStatus, event.NewStatus)
	case entity.EventFeedbackDeleted:
		err = s.statsRepo.RecordDeleted(ctx, day, event.Rating, event.NewStatus)
	default:
		log.Printf("Unknown event type: %s for feedback %s, skipping", event.EventType, event.FeedbackID)
		return nil
	}

	if err != nil {
		metrics.WorkerEventsProcessed.WithLabelValues(event.EventType, "failed").Inc()
		return fmt.Errorf("failed to process %s for feedback %s: %w", event.EventType, event.FeedbackID, err)
	}

	metrics.WorkerEventsProcessed.WithLabelValues(event.EventType, "success").Inc()
	return nil
}

// RunRetention удаляет статистику старше периода хранения и обновляет gauge
func (s *StatsService) RunRetention(ctx context.Context) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)

	deleted, err := s.statsRepo.PruneBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("retention failed: %w", err)
	}

	log.Printf("Retention completed: pruned %d daily stat rows older than %s", deleted, cutoff.Format("2006-01-02"))

	return s.RefreshStatusGauges(ctx)
}

// RefreshStatusGauges выставляет Prometheus gauge по актуальным суммам статусов
func (s *StatsService) RefreshStatusGauges(ctx context.Context) error {
	totals, err := s.statsRepo.TotalsByStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh status gauges: %w", err)
	}

	for status, count := range totals {
		metrics.WorkerFeedbackByStatus.WithLabelValues(status).Set(float64(count))
	}

	return nil
}
