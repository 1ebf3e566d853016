package service

import (
	"context"

	"feedbackhub/stats-worker-service/internal/app/stats-worker/entity"
)

// StatsServiceInterface определяет интерфейс для обработки событий отзывов
type StatsServiceInterface interface {
	// ProcessFeedbackEvent обрабатывает событие отзыва из Kafka
	ProcessFeedbackEvent(ctx context.Context, event *entity.FeedbackEvent) error

	// RunRetention удаляет статистику старше периода хранения
	RunRetention(ctx context.Context) error

	// RefreshStatusGauges обновляет Prometheus gauge по статусам
	RefreshStatusGauges(ctx context.Context) error
}
