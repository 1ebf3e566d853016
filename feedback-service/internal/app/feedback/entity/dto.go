package entity

// SubmitFeedbackRequest - запрос на создание отзыва
type SubmitFeedbackRequest struct {
	ProductName   string `json:"product_name" validate:"required,max=200"`
	Category      string `json:"category" validate:"required,oneof=product_quality customer_service delivery website_app pricing other"`
	Comment       string `json:"comment" validate:"required,min=10,max=1000"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	IsAnonymous   bool   `json:"is_anonymous"`
	AttachmentRef string `json:"attachment_ref,omitempty" validate:"omitempty,max=500"`
}

// UpdateStatusRequest - запрос на смену статуса отзыва (только админ)
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress resolved"`
}

// FeedbackListResponse - ответ со списком отзывов
type FeedbackListResponse struct {
	Feedbacks []FeedbackRecord `json:"feedbacks"`
	Total     int              `json:"total"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RatingBucket - количество и доля отзывов с конкретной оценкой
type RatingBucket struct {
	Rating     int     `json:"rating"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CategoryBucket - количество и доля отзывов в категории
type CategoryBucket struct {
	Category   Category `json:"category"`
	Count      int      `json:"count"`
	Percentage float64  `json:"percentage"`
}

// SentimentBucket - количество и доля отзывов одного тона
type SentimentBucket struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SentimentSummary - тон отзывов, выведенный из оценок:
// positive >= 4, neutral == 3, negative <= 2
type SentimentSummary struct {
	Positive SentimentBucket `json:"positive"`
	Neutral  SentimentBucket `json:"neutral"`
	Negative SentimentBucket `json:"negative"`
}

// Summary - агрегированная статистика по снапшоту коллекции отзывов
type Summary struct {
	Total         int              `json:"total"`
	AverageRating float64          `json:"average_rating"`
	ByStatus      map[Status]int   `json:"by_status"`
	ByRating      []RatingBucket   `json:"by_rating"`
	ByCategory    []CategoryBucket `json:"by_category"`
	Sentiment     SentimentSummary `json:"sentiment"`
}

// MonthlyTrendPoint - одна точка помесячного тренда
type MonthlyTrendPoint struct {
	Month         string  `json:"month"` // Например "Jan 2026"
	Count         int     `json:"count"`
	AverageRating float64 `json:"average_rating"`
}
