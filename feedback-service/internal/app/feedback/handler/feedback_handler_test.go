package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/repository"
	"feedbackhub/feedback-service/internal/app/feedback/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockFeedbackService struct {
	mock.Mock
}

func (m *MockFeedbackService) Submit(ctx context.Context, identity *entity.Identity, req *entity.SubmitFeedbackRequest) (*entity.FeedbackRecord, error) {
	args := m.Called(ctx, identity, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FeedbackRecord), args.Error(1)
}

func (m *MockFeedbackService) SetStatus(ctx context.Context, identity *entity.Identity, feedbackID string, newStatus string) (*entity.FeedbackRecord, error) {
	args := m.Called(ctx, identity, feedbackID, newStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FeedbackRecord), args.Error(1)
}

func (m *MockFeedbackService) Delete(ctx context.Context, identity *entity.Identity, feedbackID string) error {
	args := m.Called(ctx, identity, feedbackID)
	return args.Error(0)
}

func (m *MockFeedbackService) List(ctx context.Context, identity *entity.Identity, filter repository.QueryFilter, sort repository.SortOrder) ([]entity.FeedbackRecord, error) {
	args := m.Called(ctx, identity, filter, sort)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.FeedbackRecord), args.Error(1)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportCSV(ctx context.Context, identity *entity.Identity) ([]byte, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func identityInjector(identity *entity.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity != nil {
			c.Set(identityContextKey, identity)
		}
		c.Next()
	}
}

func setupFeedbackRouter(feedbackService FeedbackServiceInterface, exportService ExportServiceInterface, identity *entity.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(identityInjector(identity))

	h := NewFeedbackHandler(feedbackService, exportService)
	router.POST("/feedback", h.SubmitFeedback)
	router.GET("/feedback", h.ListFeedback)
	router.GET("/feedback/export", h.ExportFeedback)
	router.PATCH("/feedback/:feedback_id/status", h.UpdateStatus)
	router.DELETE("/feedback/:feedback_id", h.DeleteFeedback)
	return router
}

func testCustomer() *entity.Identity {
	return &entity.Identity{ID: "user-123", Role: entity.RoleCustomer, DisplayName: "Ivan", Email: "ivan@example.com"}
}

func testAdmin() *entity.Identity {
	return &entity.Identity{ID: "admin-1", Role: entity.RoleAdmin, DisplayName: "Admin", Email: "admin@example.com"}
}

func TestSubmitFeedback_Created(t *testing.T) {
	mockService := new(MockFeedbackService)
	record := &entity.FeedbackRecord{
		ID:          "fb-1",
		ProductName: "Wireless Mouse",
		Category:    entity.CategoryProductQuality,
		Comment:     "The scroll wheel stopped working.",
		Rating:      2,
		Status:      entity.StatusPending,
		CreatedAt:   time.Now(),
	}
	mockService.On("Submit", mock.Anything, mock.Anything, mock.AnythingOfType("*entity.SubmitFeedbackRequest")).Return(record, nil)

	router := setupFeedbackRouter(mockService, new(MockExportService), testCustomer())

	body, _ := json.Marshal(entity.SubmitFeedbackRequest{
		ProductName: "Wireless Mouse",
		Category:    "product_quality",
		Comment:     "The scroll wheel stopped working.",
		Rating:      2,
	})
	req, _ := http.NewRequest(http.MethodPost, "/feedback", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var got entity.FeedbackRecord
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "fb-1", got.ID)
	assert.Equal(t, entity.StatusPending, got.Status)
}

func TestSubmitFeedback_NoIdentity(t *testing.T) {
	router := setupFeedbackRouter(new(MockFeedbackService), new(MockExportService), nil)

	body, _ := json.Marshal(entity.SubmitFeedbackRequest{
		ProductName: "Mouse",
		Category:    "product_quality",
		Comment:     "short but valid comment",
		Rating:      3,
	})
	req, _ := http.NewRequest(http.MethodPost, "/feedback", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitFeedback_InvalidBody(t *testing.T) {
	router := setupFeedbackRouter(new(MockFeedbackService), new(MockExportService), testCustomer())

	// Рейтинг вне диапазона отсекается DTO-валидацией
	body, _ := json.Marshal(map[string]interface{}{
		"product_name": "Mouse",
		"category":     "product_quality",
		"comment":      "a comment long enough to pass",
		"rating":       9,
	})
	req, _ := http.NewRequest(http.MethodPost, "/feedback", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListFeedback_FiltersParsed(t *testing.T) {
	mockService := new(MockFeedbackService)
	status := entity.StatusPending
	rating := 4
	expected := repository.QueryFilter{Status: &status, Rating: &rating}

	mockService.On("List", mock.Anything, mock.Anything, expected, repository.SortByRating).
		Return([]entity.FeedbackRecord{{ID: "fb-1"}}, nil)

	router := setupFeedbackRouter(mockService, new(MockExportService), testAdmin())

	req, _ := http.NewRequest(http.MethodGet, "/feedback?status=pending&rating=4&sort=rating", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp entity.FeedbackListResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Len(t, resp.Feedbacks, 1)
	assert.Equal(t, "fb-1", resp.Feedbacks[0].ID)
	mockService.AssertExpectations(t)
}

func TestListFeedback_BadStatusFilter(t *testing.T) {
	router := setupFeedbackRouter(new(MockFeedbackService), new(MockExportService), testAdmin())

	req, _ := http.NewRequest(http.MethodGet, "/feedback?status=archived", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	mockService := new(MockFeedbackService)
	mockService.On("SetStatus", mock.Anything, mock.Anything, "missing", "resolved").
		Return(nil, service.ErrFeedbackNotFound)

	router := setupFeedbackRouter(mockService, new(MockExportService), testAdmin())

	body, _ := json.Marshal(entity.UpdateStatusRequest{Status: "resolved"})
	req, _ := http.NewRequest(http.MethodPatch, "/feedback/missing/status", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateStatus_Forbidden(t *testing.T) {
	mockService := new(MockFeedbackService)
	mockService.On("SetStatus", mock.Anything, mock.Anything, "fb-1", "resolved").
		Return(nil, service.ErrUnauthorized)

	router := setupFeedbackRouter(mockService, new(MockExportService), testCustomer())

	body, _ := json.Marshal(entity.UpdateStatusRequest{Status: "resolved"})
	req, _ := http.NewRequest(http.MethodPatch, "/feedback/fb-1/status", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteFeedback_Success(t *testing.T) {
	mockService := new(MockFeedbackService)
	mockService.On("Delete", mock.Anything, mock.Anything, "fb-1").Return(nil)

	router := setupFeedbackRouter(mockService, new(MockExportService), testAdmin())

	req, _ := http.NewRequest(http.MethodDelete, "/feedback/fb-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExportFeedback_CSVResponse(t *testing.T) {
	mockExport := new(MockExportService)
	csvData := []byte("ID,Date,Customer,Rating,Category,Status,Comment\n")
	mockExport.On("ExportCSV", mock.Anything, mock.Anything).Return(csvData, nil)

	router := setupFeedbackRouter(new(MockFeedbackService), mockExport, testAdmin())

	req, _ := http.NewRequest(http.MethodGet, "/feedback/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "feedback_export.csv")
	assert.Equal(t, string(csvData), w.Body.String())
}

func TestExportFeedback_Forbidden(t *testing.T) {
	mockExport := new(MockExportService)
	mockExport.On("ExportCSV", mock.Anything, mock.Anything).Return(nil, service.ErrUnauthorized)

	router := setupFeedbackRouter(new(MockFeedbackService), mockExport, testCustomer())

	req, _ := http.NewRequest(http.MethodGet, "/feedback/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
