package repository

import (
	"context"
	"time"
)

// StatsRepository интерфейс для работы с дневной статистикой в PostgreSQL
type StatsRepository interface {
	// RecordCreated учитывает новый отзыв в статистике за день
	RecordCreated(ctx context.Context, day time.Time, rating int, status string) error

	// RecordStatusChange переносит отзыв между статусами в статистике за день
	RecordStatusChange(ctx context.Context, day time.Time, oldStatus, newStatus string) error

	// RecordDeleted убирает удаленный отзыв из статистики за день
	RecordDeleted(ctx context.Context, day time.Time, rating int, status string) error

	// PruneBefore удаляет статистику за дни раньше cutoff
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// TotalsByStatus возвращает суммарное количество отзывов по статусам
	TotalsByStatus(ctx context.Context) (map[string]int64, error)
}
