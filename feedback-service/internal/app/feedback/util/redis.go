package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const summaryCacheKey = "analytics:summary"

// RedisClient кеширует сводную статистику по отзывам
type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// Client отдает низкоуровневое соединение для репозиториев,
// живущих в том же Redis (снапшоты)
func (r *RedisClient) Client() *redis.Client {
	return r.client
}

func (r *RedisClient) SetSummary(ctx context.Context, summary *entity.Summary, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := r.client.Set(ctx, summaryCacheKey, data, ttl).Err(); err != nil {
		metrics.RecordRedisError("feedback-service", "set")
		return fmt.Errorf("failed to set summary in cache: %w", err)
	}

	return nil
}

func (r *RedisClient) GetSummary(ctx context.Context) (*entity.Summary, error) {
	data, err := r.client.Get(ctx, summaryCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		metrics.RecordRedisError("feedback-service", "get")
		return nil, fmt.Errorf("failed to get summary from cache: %w", err)
	}

	var summary entity.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}

	return &summary, nil
}

func (r *RedisClient) Invalidate(ctx context.Context) error {
	if err := r.client.Del(ctx, summaryCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to delete summary from cache: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
