package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/pkg/logger"
	"feedbackhub/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type feedbackRepository struct {
	collection *mongo.Collection
}

// NewFeedbackRepository создает новый репозиторий отзывов
// Автоматически создает индексы по author_id и status для быстрых выборок
func NewFeedbackRepository(db *mongo.Database) FeedbackRepository {
	collection := db.Collection("feedbacks")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "author_id", Value: 1}},
			Options: options.Index().SetName("author_id_idx"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("status_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// Индексы могут уже существовать - не прерываем работу
		logger.Warn().Err(err).Msg("Failed to create feedback indexes")
	}

	return &feedbackRepository{
		collection: collection,
	}
}

// Create добавляет новый отзыв в коллекцию
func (r *feedbackRepository) Create(ctx context.Context, record *entity.FeedbackRecord) error {
	defer metrics.NewDbTimer("feedback-service", metrics.DbOpInsert, "feedbacks").ObserveDuration()

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		metrics.RecordDbError("feedback-service", metrics.DbOpInsert)
		return fmt.Errorf("failed to create feedback record: %w", err)
	}

	return nil
}

// GetByID получает отзыв по ID
func (r *feedbackRepository) GetByID(ctx context.Context, id string) (*entity.FeedbackRecord, error) {
	var record entity.FeedbackRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("failed to get feedback record: %w", err)
	}

	return &record, nil
}

// UpdateStatus меняет статус отзыва. Все остальные поля неизменяемы,
// поэтому это единственная операция обновления.
func (r *feedbackRepository) UpdateStatus(ctx context.Context, id string, status entity.Status) error {
	defer metrics.NewDbTimer("feedback-service", metrics.DbOpUpdate, "feedbacks").ObserveDuration()

	update := bson.M{"$set": bson.M{"status": status}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		metrics.RecordDbError("feedback-service", metrics.DbOpUpdate)
		return fmt.Errorf("failed to update feedback status: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrFeedbackNotFound
	}

	return nil
}

// Delete удаляет отзыв из коллекции
func (r *feedbackRepository) Delete(ctx context.Context, id string) error {
	defer metrics.NewDbTimer("feedback-service", metrics.DbOpDelete, "feedbacks").ObserveDuration()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		metrics.RecordDbError("feedback-service", metrics.DbOpDelete)
		return fmt.Errorf("failed to delete feedback record: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrFeedbackNotFound
	}

	return nil
}

// Find выбирает отзывы по фильтру в заданном порядке.
// Ничьи разрешаются по _id по возрастанию для детерминированной выдачи.
func (r *feedbackRepository) Find(ctx context.Context, filter QueryFilter, sort SortOrder) ([]entity.FeedbackRecord, error) {
	defer metrics.NewDbTimer("feedback-service", metrics.DbOpSelect, "feedbacks").ObserveDuration()

	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.Rating != nil {
		query["rating"] = *filter.Rating
	}
	if filter.AuthorID != "" {
		query["author_id"] = filter.AuthorID
	}

	var sortSpec bson.D
	switch sort {
	case SortByRating:
		sortSpec = bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: 1}}
	default:
		sortSpec = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
	}

	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(sortSpec))
	if err != nil {
		return nil, fmt.Errorf("failed to find feedback records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []entity.FeedbackRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode feedback records: %w", err)
	}

	return records, nil
}

// ListAll возвращает снапшот всей коллекции (новые сверху).
// Используется аналитикой, экспортом и бэкапом.
func (r *feedbackRepository) ListAll(ctx context.Context) ([]entity.FeedbackRecord, error) {
	return r.Find(ctx, QueryFilter{}, SortByCreatedAt)
}

// ReplaceAll заменяет содержимое коллекции записями из снапшота.
// Используется при восстановлении из бэкапа.
func (r *feedbackRepository) ReplaceAll(ctx context.Context, records []entity.FeedbackRecord) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear feedback collection: %w", err)
	}

	if len(records) == 0 {
		return nil
	}

	docs := make([]interface{}, len(records))
	for i := range records {
		docs[i] = records[i]
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to restore feedback records: %w", err)
	}

	return nil
}

// Count возвращает количество отзывов в коллекции
func (r *feedbackRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count feedback records: %w", err)
	}

	return count, nil
}
