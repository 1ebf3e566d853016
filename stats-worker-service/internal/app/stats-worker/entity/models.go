package entity

import (
	"time"
)

// Типы событий из топика feedback_events
const (
	EventFeedbackCreated       = "FEEDBACK_CREATED"
	EventFeedbackStatusChanged = "FEEDBACK_STATUS_CHANGED"
	EventFeedbackDeleted       = "FEEDBACK_DELETED"
)

// Статусы отзывов (дублируют feedback-service, воркер не импортирует его пакеты)
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

// FeedbackEvent представляет событие жизненного цикла отзыва из Kafka
type FeedbackEvent struct {
	EventType       string    `json:"event_type"`
	FeedbackID      string    `json:"feedback_id"`
	Category        string    `json:"category"`
	Rating          int       `json:"rating"`
	OldStatus       string    `json:"old_status,omitempty"`
	NewStatus       string    `json:"new_status"`
	RecordCreatedAt time.Time `json:"record_created_at"` // Дата создания отзыва, по ней бакетируем статистику
	Timestamp       time.Time `json:"timestamp"`
}

// DailyStat хранит агрегированную статистику отзывов за календарный день
type DailyStat struct {
	Date       time.Time `json:"date" gorm:"type:date;primaryKey"`
	Total      int64     `json:"total" gorm:"not null;default:0"`
	RatingSum  int64     `json:"rating_sum" gorm:"not null;default:0"`
	Pending    int64     `json:"pending" gorm:"not null;default:0"`
	InProgress int64     `json:"in_progress" gorm:"not null;default:0"`
	Resolved   int64     `json:"resolved" gorm:"not null;default:0"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (DailyStat) TableName() string {
	return "feedback_daily_stats"
}

// AverageRating возвращает средний рейтинг за день
func (d *DailyStat) AverageRating() float64 {
	if d.Total == 0 {
		return 0
	}
	return float64(d.RatingSum) / float64(d.Total)
}
