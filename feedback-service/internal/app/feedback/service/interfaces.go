package service

import (
	"context"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
)

// SummaryCache кеширует сводную статистику между пересчетами.
// Реализуется поверх Redis, в тестах подменяется моком.
type SummaryCache interface {
	GetSummary(ctx context.Context) (*entity.Summary, error)
	SetSummary(ctx context.Context, summary *entity.Summary, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}
