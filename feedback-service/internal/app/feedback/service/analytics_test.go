package service

import (
	"context"
	"testing"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func mkRecord(rating int, status entity.Status, category entity.Category, createdAt time.Time) entity.FeedbackRecord {
	return entity.FeedbackRecord{
		ID:          "fb-" + createdAt.Format("20060102150405.000000000"),
		ProductName: "Test Product",
		Category:    category,
		Comment:     "some comment text for tests",
		Rating:      rating,
		CreatedAt:   createdAt,
		Status:      status,
	}
}

func TestSummarize_EmptySet(t *testing.T) {
	summary := Summarize(nil)

	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0.0, summary.AverageRating)

	// Все три статуса присутствуют с нулями
	assert.Len(t, summary.ByStatus, 3)
	for _, status := range entity.AllStatuses {
		assert.Equal(t, 0, summary.ByStatus[status])
	}

	assert.Len(t, summary.ByRating, 5)
	for _, bucket := range summary.ByRating {
		assert.Equal(t, 0, bucket.Count)
		assert.Equal(t, 0.0, bucket.Percentage)
	}

	assert.Empty(t, summary.ByCategory)
	assert.Equal(t, 0, summary.Sentiment.Positive.Count)
	assert.Equal(t, 0, summary.Sentiment.Neutral.Count)
	assert.Equal(t, 0, summary.Sentiment.Negative.Count)
}

func TestSummarize_StatusCountsSumToTotal(t *testing.T) {
	now := time.Now()
	records := []entity.FeedbackRecord{
		mkRecord(5, entity.StatusPending, entity.CategoryDelivery, now),
		mkRecord(4, entity.StatusPending, entity.CategoryDelivery, now),
		mkRecord(3, entity.StatusInProgress, entity.CategoryPricing, now),
		mkRecord(1, entity.StatusResolved, entity.CategoryOther, now),
		mkRecord(2, entity.StatusResolved, entity.CategoryOther, now),
	}

	summary := Summarize(records)

	assert.Equal(t, 5, summary.Total)
	sum := 0
	for _, count := range summary.ByStatus {
		sum += count
	}
	assert.Equal(t, summary.Total, sum)
	assert.Equal(t, 2, summary.ByStatus[entity.StatusPending])
	assert.Equal(t, 1, summary.ByStatus[entity.StatusInProgress])
	assert.Equal(t, 2, summary.ByStatus[entity.StatusResolved])
	assert.InDelta(t, 3.0, summary.AverageRating, 0.0001)
}

func TestSummarize_SentimentBoundaries(t *testing.T) {
	now := time.Now()
	records := []entity.FeedbackRecord{
		mkRecord(5, entity.StatusPending, entity.CategoryOther, now), // positive
		mkRecord(4, entity.StatusPending, entity.CategoryOther, now), // positive
		mkRecord(3, entity.StatusPending, entity.CategoryOther, now), // neutral
		mkRecord(2, entity.StatusPending, entity.CategoryOther, now), // negative
		mkRecord(1, entity.StatusPending, entity.CategoryOther, now), // negative
	}

	summary := Summarize(records)

	assert.Equal(t, 2, summary.Sentiment.Positive.Count)
	assert.Equal(t, 1, summary.Sentiment.Neutral.Count)
	assert.Equal(t, 2, summary.Sentiment.Negative.Count)

	total := summary.Sentiment.Positive.Percentage +
		summary.Sentiment.Neutral.Percentage +
		summary.Sentiment.Negative.Percentage
	assert.InDelta(t, 100.0, total, 0.0001)
}

func TestSummarize_AllNegative(t *testing.T) {
	now := time.Now()
	records := []entity.FeedbackRecord{
		mkRecord(1, entity.StatusPending, entity.CategoryOther, now),
		mkRecord(2, entity.StatusPending, entity.CategoryOther, now),
		mkRecord(1, entity.StatusPending, entity.CategoryOther, now),
	}

	summary := Summarize(records)

	assert.Equal(t, 3, summary.Sentiment.Negative.Count)
	assert.InDelta(t, 100.0, summary.Sentiment.Negative.Percentage, 0.0001)
	assert.Equal(t, 0.0, summary.Sentiment.Positive.Percentage)
	assert.Equal(t, 0.0, summary.Sentiment.Neutral.Percentage)
}

func TestSummarize_RatingPercentagesSumTo100(t *testing.T) {
	now := time.Now()
	records := []entity.FeedbackRecord{
		mkRecord(1, entity.StatusPending, entity.CategoryOther, now),
		mkRecord(2, entity.StatusPending, entity.CategoryOther, now),
		mkRecord(2, entity.StatusPending, entity.CategoryOther, now),
		mkRecord(5, entity.StatusPending, entity.CategoryOther, now),
		mkRecord(5, entity.StatusPending, entity.CategoryOther, now),
		mkRecord(5, entity.StatusPending, entity.CategoryOther, now),
		mkRecord(3, entity.StatusPending, entity.CategoryOther, now),
	}

	summary := Summarize(records)

	total := 0.0
	for _, bucket := range summary.ByRating {
		total += bucket.Percentage
	}
	assert.InDelta(t, 100.0, total, 0.0001)
}

func TestSummarize_CategoriesOrderedByCount(t *testing.T) {
	now := time.Now()
	records := []entity.FeedbackRecord{
		mkRecord(3, entity.StatusPending, entity.CategoryPricing, now),
		mkRecord(3, entity.StatusPending, entity.CategoryDelivery, now),
		mkRecord(3, entity.StatusPending, entity.CategoryDelivery, now),
		mkRecord(3, entity.StatusPending, entity.CategoryDelivery, now),
		mkRecord(3, entity.StatusPending, entity.CategoryProductQuality, now),
		mkRecord(3, entity.StatusPending, entity.CategoryProductQuality, now),
	}

	summary := Summarize(records)

	assert.Len(t, summary.ByCategory, 3)
	assert.Equal(t, entity.CategoryDelivery, summary.ByCategory[0].Category)
	assert.Equal(t, 3, summary.ByCategory[0].Count)
	assert.Equal(t, entity.CategoryProductQuality, summary.ByCategory[1].Category)
	assert.Equal(t, entity.CategoryPricing, summary.ByCategory[2].Category)
}

func TestMonthlyTrend_BucketsByCalendarMonth(t *testing.T) {
	reference := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	records := []entity.FeedbackRecord{
		mkRecord(5, entity.StatusPending, entity.CategoryOther, time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)),
		mkRecord(3, entity.StatusPending, entity.CategoryOther, time.Date(2025, time.January, 28, 0, 0, 0, 0, time.UTC)),
		mkRecord(4, entity.StatusPending, entity.CategoryOther, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)),
	}

	points := MonthlyTrend(records, 3, reference)

	assert.Len(t, points, 3)

	// От старых к новым
	assert.Equal(t, "Jan 2025", points[0].Month)
	assert.Equal(t, "Feb 2025", points[1].Month)
	assert.Equal(t, "Mar 2025", points[2].Month)

	assert.Equal(t, 2, points[0].Count)
	assert.InDelta(t, 4.0, points[0].AverageRating, 0.0001)

	// Месяц без записей дает нули
	assert.Equal(t, 0, points[1].Count)
	assert.Equal(t, 0.0, points[1].AverageRating)

	assert.Equal(t, 1, points[2].Count)
	assert.InDelta(t, 4.0, points[2].AverageRating, 0.0001)
}

func TestMonthlyTrend_IgnoresRecordsOutsideWindow(t *testing.T) {
	reference := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	records := []entity.FeedbackRecord{
		mkRecord(5, entity.StatusPending, entity.CategoryOther, time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC)),
		mkRecord(1, entity.StatusPending, entity.CategoryOther, time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC)),
	}

	points := MonthlyTrend(records, 2, reference)

	assert.Len(t, points, 2)
	assert.Equal(t, "May 2025", points[0].Month)
	assert.Equal(t, 1, points[0].Count)
	assert.Equal(t, "Jun 2025", points[1].Month)
	assert.Equal(t, 0, points[1].Count)
}

func TestMonthlyTrend_YearBoundary(t *testing.T) {
	reference := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)

	points := MonthlyTrend(nil, 4, reference)

	assert.Len(t, points, 4)
	assert.Equal(t, "Nov 2024", points[0].Month)
	assert.Equal(t, "Dec 2024", points[1].Month)
	assert.Equal(t, "Jan 2025", points[2].Month)
	assert.Equal(t, "Feb 2025", points[3].Month)
}

func TestMonthlyTrend_ZeroMonths(t *testing.T) {
	points := MonthlyTrend(nil, 0, time.Now())
	assert.Empty(t, points)
}

func TestAnalyticsSummary_CacheHit(t *testing.T) {
	repo := new(mocks.MockFeedbackRepository)
	cache := new(mocks.MockSummaryCache)
	service := NewAnalyticsService(repo, NewAuthorizationGate(), cache)

	ctx := context.Background()
	cached := &entity.Summary{Total: 42}
	cache.On("GetSummary", ctx).Return(cached, nil)

	summary, err := service.Summary(ctx, adminIdentity())

	assert.NoError(t, err)
	assert.Equal(t, 42, summary.Total)
	repo.AssertNotCalled(t, "ListAll", mock.Anything)
}

func TestAnalyticsSummary_CacheMissFallsBackToRepo(t *testing.T) {
	repo := new(mocks.MockFeedbackRepository)
	cache := new(mocks.MockSummaryCache)
	service := NewAnalyticsService(repo, NewAuthorizationGate(), cache)

	ctx := context.Background()
	records := []entity.FeedbackRecord{
		mkRecord(5, entity.StatusPending, entity.CategoryOther, time.Now()),
	}

	cache.On("GetSummary", ctx).Return(nil, nil)
	repo.On("ListAll", ctx).Return(records, nil)
	cache.On("SetSummary", ctx, mock.AnythingOfType("*entity.Summary"), summaryCacheTTL).Return(nil)

	summary, err := service.Summary(ctx, adminIdentity())

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	cache.AssertExpectations(t)
}

func TestAnalyticsSummary_CustomerDenied(t *testing.T) {
	repo := new(mocks.MockFeedbackRepository)
	cache := new(mocks.MockSummaryCache)
	service := NewAnalyticsService(repo, NewAuthorizationGate(), cache)

	summary, err := service.Summary(context.Background(), customerIdentity())

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, summary)
}

func TestAnalyticsTrends_CustomerDenied(t *testing.T) {
	repo := new(mocks.MockFeedbackRepository)
	cache := new(mocks.MockSummaryCache)
	service := NewAnalyticsService(repo, NewAuthorizationGate(), cache)

	points, err := service.Trends(context.Background(), customerIdentity(), 6)

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, points)
}
