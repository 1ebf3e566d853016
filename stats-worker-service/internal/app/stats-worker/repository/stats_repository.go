package repository

import (
	"context"
	"fmt"
	"time"

	"feedbackhub/stats-worker-service/internal/app/stats-worker/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// statsRepository реализует StatsRepository для работы с PostgreSQL через GORM
type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository создает новый репозиторий дневной статистики
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

// statusColumn возвращает имя колонки счетчика для статуса отзыва
func statusColumn(status string) (string, error) {
	switch status {
	case entity.StatusPending:
		return "pending", nil
	case entity.StatusInProgress:
		return "in_progress", nil
	case entity.StatusResolved:
		return "resolved", nil
	default:
		return "", fmt.Errorf("unknown feedback status: %s", status)
	}
}

// truncateToDay обрезает время до начала календарного дня в UTC
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RecordCreated учитывает новый отзыв: upsert строки за день с инкрементом счетчиков
func (r *statsRepository) RecordCreated(ctx context.Context, day time.Time, rating int, status string) error {
	col, err := statusColumn(status)
	if err != nil {
		return err
	}

	stat := &entity.DailyStat{
		Date:      truncateToDay(day),
		Total:     1,
		RatingSum: int64(rating),
	}
	switch col {
	case "pending":
		stat.Pending = 1
	case "in_progress":
		stat.InProgress = 1
	case "resolved":
		stat.Resolved = 1
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total":      gorm.Expr("feedback_daily_stats.total + 1"),
			"rating_sum": gorm.Expr("feedback_daily_stats.rating_sum + ?", rating),
			col:          gorm.Expr("feedback_daily_stats." + col + " + 1"),
			"updated_at": time.Now(),
		}),
	}).Create(stat)

	if result.Error != nil {
		return fmt.Errorf("failed to record created feedback: %w", result.Error)
	}

	return nil
}

// RecordStatusChange переносит отзыв между счетчиками статусов за день.
// Отсутствие строки за день не считается ошибкой: отзыв мог быть создан
// до запуска воркера, и статистики за тот день еще нет.
func (r *statsRepository) RecordStatusChange(ctx context.Context, day time.Time, oldStatus, newStatus string) error {
	if oldStatus == newStatus {
		return nil
	}

	oldCol, err := statusColumn(oldStatus)
	if err != nil {
		return err
	}
	newCol, err := statusColumn(newStatus)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&entity.DailyStat{}).
		Where("date = ?", truncateToDay(day)).
		Updates(map[string]interface{}{
			oldCol: gorm.Expr("GREATEST(" + oldCol + " - 1, 0)"),
			newCol: gorm.Expr(newCol + " + 1"),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to record status change: %w", result.Error)
	}

	return nil
}

// RecordDeleted убирает удаленный отзыв из счетчиков за день
func (r *statsRepository) RecordDeleted(ctx context.Context, day time.Time, rating int, status string) error {
	col, err := statusColumn(status)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&entity.DailyStat{}).
		Where("date = ?", truncateToDay(day)).
		Updates(map[string]interface{}{
			"total":      gorm.Expr("GREATEST(total - 1, 0)"),
			"rating_sum": gorm.Expr("GREATEST(rating_sum - ?, 0)", rating),
			col:          gorm.Expr("GREATEST(" + col + " - 1, 0)"),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to record deleted feedback: %w", result.Error)
	}

	return nil
}

// PruneBefore удаляет статистику за дни раньше cutoff, возвращает число удаленных строк
func (r *statsRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("date < ?", truncateToDay(cutoff)).
		Delete(&entity.DailyStat{})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune daily stats: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// statusTotals промежуточная структура для агрегирующего запроса
type statusTotals struct {
	Pending    int64
	InProgress int64
	Resolved   int64
}

// TotalsByStatus возвращает суммарное количество отзывов по статусам за все дни
func (r *statsRepository) TotalsByStatus(ctx context.Context) (map[string]int64, error) {
	var totals statusTotals

	result := r.db.WithContext(ctx).
		Model(&entity.DailyStat{}).
		Select("COALESCE(SUM(pending), 0) AS pending, COALESCE(SUM(in_progress), 0) AS in_progress, COALESCE(SUM(resolved), 0) AS resolved").
		Scan(&totals)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to aggregate status totals: %w", result.Error)
	}

	return map[string]int64{
		entity.StatusPending:    totals.Pending,
		entity.StatusInProgress: totals.InProgress,
		entity.StatusResolved:   totals.Resolved,
	}, nil
}
