package repository

import (
	"context"
	"errors"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrFeedbackNotFound = errors.New("feedback record not found")
)

// SortOrder задает порядок выдачи отзывов
type SortOrder string

const (
	SortByCreatedAt SortOrder = "created_at" // Новые сверху (по умолчанию)
	SortByRating    SortOrder = "rating"     // Высокие оценки сверху
)

// QueryFilter - фильтр выборки отзывов; nil-поля не фильтруют
type QueryFilter struct {
	Status   *entity.Status
	Rating   *int
	AuthorID string
}

// FeedbackRepository определяет методы работы с коллекцией отзывов в MongoDB.
// Все записи и чтения проходят через репозиторий - он единственный владелец коллекции.
type FeedbackRepository interface {
	Create(ctx context.Context, record *entity.FeedbackRecord) error
	GetByID(ctx context.Context, id string) (*entity.FeedbackRecord, error)
	UpdateStatus(ctx context.Context, id string, status entity.Status) error
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, filter QueryFilter, sort SortOrder) ([]entity.FeedbackRecord, error)
	ListAll(ctx context.Context) ([]entity.FeedbackRecord, error)
	ReplaceAll(ctx context.Context, records []entity.FeedbackRecord) error
	Count(ctx context.Context) (int64, error)
}

// SnapshotRepository хранит снапшот всей коллекции как один JSON-блоб
// в key-value хранилище. Используется для периодического бэкапа
// и восстановления при пустой основной коллекции.
type SnapshotRepository interface {
	LoadAll(ctx context.Context) ([]entity.FeedbackRecord, error)
	SaveAll(ctx context.Context, records []entity.FeedbackRecord) error
}
