package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/infrastructure"
	"feedbackhub/feedback-service/internal/app/feedback/repository"
	"feedbackhub/pkg/logger"
	"feedbackhub/pkg/metrics"

	"github.com/google/uuid"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrFeedbackNotFound = errors.New("feedback not found")
	ErrUnauthorized     = errors.New("operation not permitted")
	ErrValidation       = errors.New("invalid feedback data")
)

// FeedbackService владеет жизненным циклом отзывов.
// Все мутации и выборки проходят через него: он проверяет права через
// AuthorizationGate, пишет через репозиторий и публикует события в Kafka.
type FeedbackService struct {
	feedbackRepo  repository.FeedbackRepository
	gate          *AuthorizationGate
	kafkaProducer infrastructure.MessagePublisher
	summaryCache  SummaryCache
}

// NewFeedbackService создает новый сервис отзывов с внедрением зависимостей
func NewFeedbackService(
	feedbackRepo repository.FeedbackRepository,
	gate *AuthorizationGate,
	kafkaProducer infrastructure.MessagePublisher,
	summaryCache SummaryCache,
) *FeedbackService {
	return &FeedbackService{
		feedbackRepo:  feedbackRepo,
		gate:          gate,
		kafkaProducer: kafkaProducer,
		summaryCache:  summaryCache,
	}
}

// Submit создает новый отзыв от имени identity.
// 1. Проверяет права и валидирует черновик
// 2. Сохраняет запись в MongoDB (статус всегда pending)
// 3. Отправляет событие FEEDBACK_CREATED в Kafka
func (s *FeedbackService) Submit(ctx context.Context, identity *entity.Identity, req *entity.SubmitFeedbackRequest) (*entity.FeedbackRecord, error) {
	if !s.gate.Can(identity, OpSubmit) {
		return nil, ErrUnauthorized
	}

	if err := validateDraft(req); err != nil {
		return nil, err
	}

	record := &entity.FeedbackRecord{
		ID:            uuid.NewString(),
		ProductName:   strings.TrimSpace(req.ProductName),
		Category:      entity.Category(req.Category),
		Comment:       req.Comment,
		Rating:        req.Rating,
		IsAnonymous:   req.IsAnonymous,
		AttachmentRef: req.AttachmentRef,
		CreatedAt:     time.Now().UTC(),
		Status:        entity.StatusPending,
	}

	// Для анонимных отзывов не храним ни автора, ни контактный email
	if req.IsAnonymous {
		record.DisplayName = entity.AnonymousDisplayName
	} else {
		record.AuthorID = identity.ID
		record.DisplayName = identity.DisplayName
		record.AuthorEmail = identity.Email
	}

	if err := s.feedbackRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to submit feedback: %w", err)
	}

	metrics.FeedbackSubmitted.WithLabelValues(string(record.Category)).Inc()
	metrics.FeedbackRating.Observe(float64(record.Rating))

	s.publishEvent(ctx, entity.FeedbackEvent{
		EventType:       entity.EventFeedbackCreated,
		FeedbackID:      record.ID,
		Category:        record.Category,
		Rating:          record.Rating,
		NewStatus:       record.Status,
		RecordCreatedAt: record.CreatedAt,
		Timestamp:       time.Now(),
	})
	s.invalidateSummary(ctx)

	return record, nil
}

// SetStatus меняет статус отзыва. Доступно только администраторам.
// Переходы между статусами не ограничены.
func (s *FeedbackService) SetStatus(ctx context.Context, identity *entity.Identity, feedbackID string, newStatus string) (*entity.FeedbackRecord, error) {
	if !s.gate.Can(identity, OpSetStatus) {
		return nil, ErrUnauthorized
	}

	status := entity.Status(newStatus)
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}

	record, err := s.feedbackRepo.GetByID(ctx, feedbackID)
	if err != nil {
		if errors.Is(err, repository.ErrFeedbackNotFound) {
			return nil, ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}

	oldStatus := record.Status

	if err := s.feedbackRepo.UpdateStatus(ctx, feedbackID, status); err != nil {
		if errors.Is(err, repository.ErrFeedbackNotFound) {
			return nil, ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("failed to update feedback status: %w", err)
	}

	record.Status = status
	metrics.FeedbackStatusChanges.WithLabelValues(string(status)).Inc()

	s.publishEvent(ctx, entity.FeedbackEvent{
		EventType:       entity.EventFeedbackStatusChanged,
		FeedbackID:      record.ID,
		Category:        record.Category,
		Rating:          record.Rating,
		OldStatus:       oldStatus,
		NewStatus:       status,
		RecordCreatedAt: record.CreatedAt,
		Timestamp:       time.Now(),
	})
	s.invalidateSummary(ctx)

	return record, nil
}

// Delete удаляет отзыв. Доступно только администраторам.
func (s *FeedbackService) Delete(ctx context.Context, identity *entity.Identity, feedbackID string) error {
	if !s.gate.Can(identity, OpDelete) {
		return ErrUnauthorized
	}

	record, err := s.feedbackRepo.GetByID(ctx, feedbackID)
	if err != nil {
		if errors.Is(err, repository.ErrFeedbackNotFound) {
			return ErrFeedbackNotFound
		}
		return fmt.Errorf("failed to get feedback: %w", err)
	}

	if err := s.feedbackRepo.Delete(ctx, feedbackID); err != nil {
		if errors.Is(err, repository.ErrFeedbackNotFound) {
			return ErrFeedbackNotFound
		}
		return fmt.Errorf("failed to delete feedback: %w", err)
	}

	s.publishEvent(ctx, entity.FeedbackEvent{
		EventType:       entity.EventFeedbackDeleted,
		FeedbackID:      record.ID,
		Category:        record.Category,
		Rating:          record.Rating,
		NewStatus:       record.Status,
		RecordCreatedAt: record.CreatedAt,
		Timestamp:       time.Now(),
	})
	s.invalidateSummary(ctx)

	return nil
}

// List возвращает отзывы по фильтру.
// Клиент видит только собственные отзывы независимо от фильтра,
// администратор - все записи, подходящие под фильтр.
func (s *FeedbackService) List(ctx context.Context, identity *entity.Identity, filter repository.QueryFilter, sort repository.SortOrder) ([]entity.FeedbackRecord, error) {
	if !s.gate.Can(identity, OpQueryOwn) {
		return nil, ErrUnauthorized
	}

	if !s.gate.Can(identity, OpQueryAll) {
		// Принудительно ограничиваем выборку записями автора
		filter.AuthorID = identity.ID
	}

	records, err := s.feedbackRepo.Find(ctx, filter, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}

	return records, nil
}

// validateDraft проверяет бизнес-инварианты черновика отзыва.
// Дублирует часть DTO-валидации, чтобы инварианты держались
// независимо от транспортного слоя.
func validateDraft(req *entity.SubmitFeedbackRequest) error {
	if strings.TrimSpace(req.ProductName) == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if !entity.Category(req.Category).IsValid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, req.Category)
	}
	if strings.TrimSpace(req.Comment) == "" {
		return fmt.Errorf("%w: comment is required", ErrValidation)
	}
	if req.Rating < 1 || req.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	return nil
}

// publishEvent отправляет событие жизненного цикла отзыва в Kafka.
// Ошибки Kafka не прерывают операцию - запись уже сохранена.
func (s *FeedbackService) publishEvent(ctx context.Context, event entity.FeedbackEvent) {
	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", event.EventType).Msg("Failed to marshal feedback event")
		return
	}

	// Ключ = FeedbackID для партиционирования по записи
	if err := s.kafkaProducer.PublishMessage(ctx, event.FeedbackID, eventData); err != nil {
		logger.Warn().Err(err).
			Str("event_type", event.EventType).
			Str("feedback_id", event.FeedbackID).
			Msg("Failed to publish feedback event")
	}
}

// invalidateSummary сбрасывает кеш сводной статистики после мутации
func (s *FeedbackService) invalidateSummary(ctx context.Context) {
	if s.summaryCache == nil {
		return
	}

	if err := s.summaryCache.Invalidate(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate summary cache")
	}
}
