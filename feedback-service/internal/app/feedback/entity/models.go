package entity

import (
	"time"
)

// Status представляет статус обработки отзыва
type Status string

const (
	StatusPending    Status = "pending"     // Ожидает разбора
	StatusInProgress Status = "in_progress" // В работе
	StatusResolved   Status = "resolved"    // Решен
)

// AllStatuses - полный набор статусов, порядок фиксирован для отчетов
var AllStatuses = []Status{StatusPending, StatusInProgress, StatusResolved}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Category представляет категорию отзыва (фиксированный набор)
type Category string

const (
	CategoryProductQuality  Category = "product_quality"
	CategoryCustomerService Category = "customer_service"
	CategoryDelivery        Category = "delivery"
	CategoryWebsiteApp      Category = "website_app"
	CategoryPricing         Category = "pricing"
	CategoryOther           Category = "other"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryProductQuality, CategoryCustomerService, CategoryDelivery,
		CategoryWebsiteApp, CategoryPricing, CategoryOther:
		return true
	}
	return false
}

// AnonymousDisplayName - отображаемое имя для анонимных отзывов
const AnonymousDisplayName = "Anonymous"

// FeedbackRecord представляет один отзыв клиента.
// Все поля, кроме Status, неизменяемы после создания.
type FeedbackRecord struct {
	ID            string    `json:"id" bson:"_id"`
	AuthorID      string    `json:"author_id,omitempty" bson:"author_id,omitempty"` // Пусто для анонимных отзывов
	DisplayName   string    `json:"display_name" bson:"display_name"`
	AuthorEmail   string    `json:"author_email,omitempty" bson:"author_email,omitempty"` // Не храним для анонимных
	IsAnonymous   bool      `json:"is_anonymous" bson:"is_anonymous"`
	ProductName   string    `json:"product_name" bson:"product_name"`
	Category      Category  `json:"category" bson:"category"`
	Comment       string    `json:"comment" bson:"comment"`
	Rating        int       `json:"rating" bson:"rating"` // Оценка от 1 до 5
	AttachmentRef string    `json:"attachment_ref,omitempty" bson:"attachment_ref,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	Status        Status    `json:"status" bson:"status"`
}

// Role представляет роль аутентифицированного пользователя
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Identity представляет аутентифицированного пользователя.
// Приходит из Auth Service через JWT, сервис отзывов его не проверяет заново.
type Identity struct {
	ID          string `json:"id"`
	Role        Role   `json:"role"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// Типы событий для Kafka
const (
	EventFeedbackCreated       = "FEEDBACK_CREATED"
	EventFeedbackStatusChanged = "FEEDBACK_STATUS_CHANGED"
	EventFeedbackDeleted       = "FEEDBACK_DELETED"
)

// FeedbackEvent представляет событие жизненного цикла отзыва для Kafka
type FeedbackEvent struct {
	EventType       string    `json:"event_type"`
	FeedbackID      string    `json:"feedback_id"`
	Category        Category  `json:"category"`
	Rating          int       `json:"rating"`
	OldStatus       Status    `json:"old_status,omitempty"`
	NewStatus       Status    `json:"new_status"`
	RecordCreatedAt time.Time `json:"record_created_at"` // Для бакетирования статистики по дням
	Timestamp       time.Time `json:"timestamp"`
}
