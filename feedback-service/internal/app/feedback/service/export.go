package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/repository"
)

// Фиксированный формат экспорта: порядок колонок и формат даты
// завязаны на внешних потребителей, менять нельзя.
var exportHeader = []string{"ID", "Date", "Customer", "Rating", "Category", "Status", "Comment"}

const exportDateLayout = "2006-01-02 15:04:05"

// ExportService выгружает все отзывы в CSV. Доступно только администраторам.
type ExportService struct {
	feedbackRepo repository.FeedbackRepository
	gate         *AuthorizationGate
}

// NewExportService создает новый сервис экспорта
func NewExportService(feedbackRepo repository.FeedbackRepository, gate *AuthorizationGate) *ExportService {
	return &ExportService{
		feedbackRepo: feedbackRepo,
		gate:         gate,
	}
}

// ExportCSV возвращает CSV со всеми отзывами в порядке created_at desc.
// Кавычки и запятые внутри полей экранируются по RFC 4180
// (удвоение кавычек внутри закавыченного поля).
func (s *ExportService) ExportCSV(ctx context.Context, identity *entity.Identity) ([]byte, error) {
	if !s.gate.Can(identity, OpExport) {
		return nil, ErrUnauthorized
	}

	records, err := s.feedbackRepo.Find(ctx, repository.QueryFilter{}, repository.SortByCreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback for export: %w", err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write export header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.ID,
			record.CreatedAt.Format(exportDateLayout),
			record.DisplayName,
			strconv.Itoa(record.Rating),
			string(record.Category),
			string(record.Status),
			record.Comment,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write export row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush export: %w", err)
	}

	return buf.Bytes(), nil
}
