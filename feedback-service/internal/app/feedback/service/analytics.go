package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/repository"
	"feedbackhub/pkg/logger"
	"feedbackhub/pkg/metrics"
)

const summaryCacheTTL = 5 * time.Minute

// Summarize строит сводную статистику по набору отзывов.
// Для пустого набора возвращает нулевую сводку: average = 0,
// все три статуса присутствуют с нулевыми счетчиками.
func Summarize(records []entity.FeedbackRecord) *entity.Summary {
	summary := &entity.Summary{
		Total:    len(records),
		ByStatus: make(map[entity.Status]int, len(entity.AllStatuses)),
	}

	// Все статусы присутствуют в сводке даже при нуле записей
	for _, status := range entity.AllStatuses {
		summary.ByStatus[status] = 0
	}

	ratingCounts := make(map[int]int, 5)
	categoryCounts := make(map[entity.Category]int)
	categoryOrder := make([]entity.Category, 0)

	ratingSum := 0
	for _, record := range records {
		ratingSum += record.Rating
		summary.ByStatus[record.Status]++
		ratingCounts[record.Rating]++

		if _, seen := categoryCounts[record.Category]; !seen {
			categoryOrder = append(categoryOrder, record.Category)
		}
		categoryCounts[record.Category]++

		switch {
		case record.Rating >= 4:
			summary.Sentiment.Positive.Count++
		case record.Rating == 3:
			summary.Sentiment.Neutral.Count++
		default:
			summary.Sentiment.Negative.Count++
		}
	}

	if summary.Total > 0 {
		summary.AverageRating = float64(ratingSum) / float64(summary.Total)

		summary.Sentiment.Positive.Percentage = percentage(summary.Sentiment.Positive.Count, summary.Total)
		summary.Sentiment.Neutral.Percentage = percentage(summary.Sentiment.Neutral.Count, summary.Total)
		summary.Sentiment.Negative.Percentage = percentage(summary.Sentiment.Negative.Count, summary.Total)
	}

	// Рейтинги всегда 1..5, даже пустые
	summary.ByRating = make([]entity.RatingBucket, 0, 5)
	for rating := 1; rating <= 5; rating++ {
		summary.ByRating = append(summary.ByRating, entity.RatingBucket{
			Rating:     rating,
			Count:      ratingCounts[rating],
			Percentage: percentage(ratingCounts[rating], summary.Total),
		})
	}

	// Категории по убыванию количества; при равенстве - порядок появления
	sort.SliceStable(categoryOrder, func(i, j int) bool {
		return categoryCounts[categoryOrder[i]] > categoryCounts[categoryOrder[j]]
	})
	summary.ByCategory = make([]entity.CategoryBucket, 0, len(categoryOrder))
	for _, category := range categoryOrder {
		summary.ByCategory = append(summary.ByCategory, entity.CategoryBucket{
			Category:   category,
			Count:      categoryCounts[category],
			Percentage: percentage(categoryCounts[category], summary.Total),
		})
	}

	return summary
}

// MonthlyTrend строит помесячную динамику за monthCount календарных
// месяцев, заканчивая месяцем referenceDate. Точки идут от старых к
// новым; месяцы без отзывов получают нулевые значения.
func MonthlyTrend(records []entity.FeedbackRecord, monthCount int, referenceDate time.Time) []entity.MonthlyTrendPoint {
	if monthCount <= 0 {
		return []entity.MonthlyTrendPoint{}
	}

	type bucket struct {
		count     int
		ratingSum int
	}

	buckets := make(map[string]*bucket, monthCount)
	points := make([]entity.MonthlyTrendPoint, 0, monthCount)

	// Начало месяца referenceDate, от него отсчитываем назад
	startOfMonth := time.Date(referenceDate.Year(), referenceDate.Month(), 1, 0, 0, 0, 0, referenceDate.Location())
	for i := monthCount - 1; i >= 0; i-- {
		month := startOfMonth.AddDate(0, -i, 0)
		label := month.Format("Jan 2006")
		buckets[label] = &bucket{}
		points = append(points, entity.MonthlyTrendPoint{Month: label})
	}

	for _, record := range records {
		label := record.CreatedAt.Format("Jan 2006")
		b, ok := buckets[label]
		if !ok {
			continue
		}
		b.count++
		b.ratingSum += record.Rating
	}

	for i := range points {
		b := buckets[points[i].Month]
		points[i].Count = b.count
		if b.count > 0 {
			points[i].AverageRating = float64(b.ratingSum) / float64(b.count)
		}
	}

	return points
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// AnalyticsService отдает сводную статистику и тренды по всем отзывам.
// Сводка кешируется в Redis и инвалидируется FeedbackService при мутациях.
type AnalyticsService struct {
	feedbackRepo repository.FeedbackRepository
	gate         *AuthorizationGate
	cache        SummaryCache
}

// NewAnalyticsService создает новый сервис аналитики
func NewAnalyticsService(feedbackRepo repository.FeedbackRepository, gate *AuthorizationGate, cache SummaryCache) *AnalyticsService {
	return &AnalyticsService{
		feedbackRepo: feedbackRepo,
		gate:         gate,
		cache:        cache,
	}
}

// Summary возвращает сводную статистику. Доступно только администраторам.
func (s *AnalyticsService) Summary(ctx context.Context, identity *entity.Identity) (*entity.Summary, error) {
	if !s.gate.Can(identity, OpQueryAll) {
		return nil, ErrUnauthorized
	}

	if s.cache != nil {
		if cached, err := s.cache.GetSummary(ctx); err == nil && cached != nil {
			metrics.RecordCacheHit("feedback-service", "analytics:summary")
			return cached, nil
		}
		metrics.RecordCacheMiss("feedback-service", "analytics:summary")
	}

	records, err := s.feedbackRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback for summary: %w", err)
	}

	summary := Summarize(records)

	if s.cache != nil {
		if err := s.cache.SetSummary(ctx, summary, summaryCacheTTL); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache feedback summary")
		}
	}

	return summary, nil
}

// Trends возвращает помесячную динамику за последние monthCount месяцев
func (s *AnalyticsService) Trends(ctx context.Context, identity *entity.Identity, monthCount int) ([]entity.MonthlyTrendPoint, error) {
	if !s.gate.Can(identity, OpQueryAll) {
		return nil, ErrUnauthorized
	}

	records, err := s.feedbackRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback for trends: %w", err)
	}

	return MonthlyTrend(records, monthCount, time.Now()), nil
}
