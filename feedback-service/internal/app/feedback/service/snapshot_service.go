package service

import (
	"context"
	"fmt"

	"feedbackhub/feedback-service/internal/app/feedback/repository"
	"feedbackhub/pkg/logger"
	"feedbackhub/pkg/metrics"
)

// SnapshotService переносит полный набор отзывов между MongoDB и
// резервным Redis-снапшотом. Backup гоняется по расписанию (cron),
// Restore вызывается на старте сервиса при пустой основной базе.
type SnapshotService struct {
	feedbackRepo repository.FeedbackRepository
	snapshotRepo repository.SnapshotRepository
}

// NewSnapshotService создает новый сервис снапшотов
func NewSnapshotService(feedbackRepo repository.FeedbackRepository, snapshotRepo repository.SnapshotRepository) *SnapshotService {
	return &SnapshotService{
		feedbackRepo: feedbackRepo,
		snapshotRepo: snapshotRepo,
	}
}

// Backup сохраняет все записи в снапшот.
// Снапшот обязан переживать round-trip без потерь по каждому полю.
func (s *SnapshotService) Backup(ctx context.Context) error {
	records, err := s.feedbackRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load feedback for snapshot: %w", err)
	}

	if err := s.snapshotRepo.SaveAll(ctx, records); err != nil {
		metrics.FeedbackSnapshots.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to save feedback snapshot: %w", err)
	}

	metrics.FeedbackSnapshots.WithLabelValues("success").Inc()
	logger.Info().Int("records", len(records)).Msg("Feedback snapshot saved")
	return nil
}

// RestoreIfEmpty восстанавливает записи из снапшота, если основная
// база пуста. Возвращает количество восстановленных записей.
func (s *SnapshotService) RestoreIfEmpty(ctx context.Context) (int, error) {
	count, err := s.feedbackRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count feedback records: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	records, err := s.snapshotRepo.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load feedback snapshot: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	if err := s.feedbackRepo.ReplaceAll(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to restore feedback from snapshot: %w", err)
	}

	logger.Info().Int("records", len(records)).Msg("Feedback restored from snapshot")
	return len(records), nil
}
