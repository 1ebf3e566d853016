package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/repository"
	"feedbackhub/feedback-service/internal/app/feedback/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FeedbackServiceInterface interface {
	Submit(ctx context.Context, identity *entity.Identity, req *entity.SubmitFeedbackRequest) (*entity.FeedbackRecord, error)
	SetStatus(ctx context.Context, identity *entity.Identity, feedbackID string, newStatus string) (*entity.FeedbackRecord, error)
	Delete(ctx context.Context, identity *entity.Identity, feedbackID string) error
	List(ctx context.Context, identity *entity.Identity, filter repository.QueryFilter, sort repository.SortOrder) ([]entity.FeedbackRecord, error)
}

type ExportServiceInterface interface {
	ExportCSV(ctx context.Context, identity *entity.Identity) ([]byte, error)
}

type FeedbackHandler struct {
	feedbackService FeedbackServiceInterface
	exportService   ExportServiceInterface
	validator       *validator.Validate
}

func NewFeedbackHandler(feedbackService FeedbackServiceInterface, exportService ExportServiceInterface) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		exportService:   exportService,
		validator:       validator.New(),
	}
}

func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	identity := CurrentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req entity.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	record, err := h.feedbackService.Submit(c.Request.Context(), identity, &req)
	if err != nil {
		respondServiceError(c, err, "Failed to submit feedback")
		return
	}

	c.JSON(http.StatusCreated, record)
}

func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	identity := CurrentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	filter, err := parseQueryFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sort := repository.SortByCreatedAt
	if c.Query("sort") == "rating" {
		sort = repository.SortByRating
	}

	records, err := h.feedbackService.List(c.Request.Context(), identity, filter, sort)
	if err != nil {
		respondServiceError(c, err, "Failed to list feedback")
		return
	}

	c.JSON(http.StatusOK, entity.FeedbackListResponse{
		Feedbacks: records,
		Total:     len(records),
	})
}

func (h *FeedbackHandler) UpdateStatus(c *gin.Context) {
	identity := CurrentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	feedbackID := c.Param("feedback_id")
	if feedbackID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Feedback ID is required"})
		return
	}

	var req entity.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	record, err := h.feedbackService.SetStatus(c.Request.Context(), identity, feedbackID, req.Status)
	if err != nil {
		respondServiceError(c, err, "Failed to update feedback status")
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	identity := CurrentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	feedbackID := c.Param("feedback_id")
	if feedbackID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Feedback ID is required"})
		return
	}

	if err := h.feedbackService.Delete(c.Request.Context(), identity, feedbackID); err != nil {
		respondServiceError(c, err, "Failed to delete feedback")
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Feedback deleted successfully",
	})
}

func (h *FeedbackHandler) ExportFeedback(c *gin.Context) {
	identity := CurrentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	data, err := h.exportService.ExportCSV(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, err, "Failed to export feedback")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="feedback_export.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// parseQueryFilter разбирает query-параметры status, rating и author_id
func parseQueryFilter(c *gin.Context) (repository.QueryFilter, error) {
	var filter repository.QueryFilter

	if statusParam := c.Query("status"); statusParam != "" {
		status := entity.Status(statusParam)
		if !status.IsValid() {
			return filter, errors.New("unknown status filter")
		}
		filter.Status = &status
	}

	if ratingParam := c.Query("rating"); ratingParam != "" {
		rating, err := strconv.Atoi(ratingParam)
		if err != nil || rating < 1 || rating > 5 {
			return filter, errors.New("rating filter must be between 1 and 5")
		}
		filter.Rating = &rating
	}

	// Для клиентов фильтр по автору перекрывается сервисом
	filter.AuthorID = c.Query("author_id")

	return filter, nil
}

// respondServiceError сопоставляет ошибки бизнес-логики HTTP-статусам
func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, service.ErrFeedbackNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Feedback not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
