package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"feedbackhub/feedback-service/internal/app/feedback/entity"

	"github.com/redis/go-redis/v9"
)

const snapshotKey = "feedback:snapshot"

// redisSnapshotRepository хранит снапшот коллекции отзывов
// как один JSON-блоб в Redis. Блоб без TTL - бэкап живет до следующей записи.
type redisSnapshotRepository struct {
	client *redis.Client
}

// NewRedisSnapshotRepository создает Redis-хранилище снапшотов коллекции
func NewRedisSnapshotRepository(client *redis.Client) SnapshotRepository {
	return &redisSnapshotRepository{client: client}
}

// LoadAll читает снапшот. Возвращает nil без ошибки, если снапшота еще нет.
func (r *redisSnapshotRepository) LoadAll(ctx context.Context) ([]entity.FeedbackRecord, error) {
	data, err := r.client.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load feedback snapshot: %w", err)
	}

	var records []entity.FeedbackRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal feedback snapshot: %w", err)
	}

	return records, nil
}

// SaveAll атомарно перезаписывает снапшот всей коллекции
func (r *redisSnapshotRepository) SaveAll(ctx context.Context, records []entity.FeedbackRecord) error {
	if records == nil {
		records = []entity.FeedbackRecord{}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback snapshot: %w", err)
	}

	if err := r.client.Set(ctx, snapshotKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save feedback snapshot: %w", err)
	}

	return nil
}
