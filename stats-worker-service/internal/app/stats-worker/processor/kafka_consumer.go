package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"feedbackhub/pkg/metrics"
	"feedbackhub/stats-worker-service/internal/app/stats-worker/entity"
	"feedbackhub/stats-worker-service/internal/app/stats-worker/service"

	"github.com/segmentio/kafka-go"
)

const serviceName = "stats-worker-service"

// KafkaConsumer обрабатывает события из Kafka топика feedback_events
type KafkaConsumer struct {
	reader   *kafka.Reader
	statsSvc service.StatsServiceInterface
	topic    string
	groupID  string
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewKafkaConsumer создает новый Kafka consumer
func NewKafkaConsumer(
	brokers []string,
	topic string,
	groupID string,
	minBytes int,
	maxBytes int,
	statsSvc service.StatsServiceInterface,
) *KafkaConsumer {
	// Настраиваем Kafka reader
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		MinBytes:    minBytes,         // Минимум байт для fetch запроса
		MaxBytes:    maxBytes,         // Максимум байт для fetch запроса
		StartOffset: kafka.LastOffset, // Начинаем читать с последнего сообщения
		// Коммитим offset вручную после успешной обработки
		CommitInterval: time.Second,
		// Таймауты
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return &KafkaConsumer{
		reader:   reader,
		statsSvc: statsSvc,
		topic:    topic,
		groupID:  groupID,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start запускает consumer в отдельной горутине
func (c *KafkaConsumer) Start(ctx context.Context) {
	log.Println("Starting Kafka consumer...")

	// Выставляем gauge по статусам перед началом обработки
	if err := c.statsSvc.RefreshStatusGauges(ctx); err != nil {
		log.Printf("WARNING: Failed to refresh status gauges: %v", err)
	}

	go c.consume(ctx)
}

// Stop останавливает consumer
func (c *KafkaConsumer) Stop() {
	log.Println("Stopping Kafka consumer...")
	close(c.stopChan)
	<-c.doneChan
	c.reader.Close()
	log.Println("Kafka consumer stopped")
}

// consume читает и обрабатывает сообщения из Kafka
func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		default:
			// Читаем сообщение с таймаутом
			readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			message, err := c.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				// Если контекст был отменен, выходим
				if ctx.Err() != nil {
					return
				}

				// Логируем ошибку и продолжаем
				log.Printf("Error fetching message: %v", err)
				time.Sleep(time.Second)
				continue
			}

			metrics.RecordKafkaMessageConsumed(serviceName, c.topic, c.groupID)

			// Обрабатываем сообщение
			if err := c.processMessage(ctx, message); err != nil {
				log.Printf("Error processing message: %v", err)
				metrics.RecordKafkaError(serviceName, c.topic, "process")
				// Не коммитим offset при ошибке - сообщение будет повторно обработано
			} else {
				// Коммитим offset после успешной обработки
				if err := c.reader.CommitMessages(ctx, message); err != nil {
					log.Printf("Error committing message: %v", err)
					metrics.RecordKafkaError(serviceName, c.topic, "commit")
				}
			}
		}
	}
}

// processMessage обрабатывает одно сообщение из Kafka
func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	// Парсим событие отзыва
	var event entity.FeedbackEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal feedback event: %w", err)
	}

	log.Printf("Received %s event for feedback %s (offset: %d, partition: %d)",
		event.EventType, event.FeedbackID, message.Offset, message.Partition)

	// Обрабатываем событие
	if err := c.statsSvc.ProcessFeedbackEvent(ctx, &event); err != nil {
		return fmt.Errorf("failed to process feedback event: %w", err)
	}

	return nil
}

// GetStats возвращает статистику consumer
func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
