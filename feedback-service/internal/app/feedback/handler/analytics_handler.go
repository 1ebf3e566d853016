package handler

import (
	"context"
	"net/http"
	"strconv"

	"feedbackhub/feedback-service/internal/app/feedback/entity"

	"github.com/gin-gonic/gin"
)

const defaultTrendMonths = 6

type AnalyticsServiceInterface interface {
	Summary(ctx context.Context, identity *entity.Identity) (*entity.Summary, error)
	Trends(ctx context.Context, identity *entity.Identity, monthCount int) ([]entity.MonthlyTrendPoint, error)
}

type AnalyticsHandler struct {
	analyticsService AnalyticsServiceInterface
}

func NewAnalyticsHandler(analyticsService AnalyticsServiceInterface) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	identity := CurrentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	summary, err := h.analyticsService.Summary(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, err, "Failed to build summary")
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *AnalyticsHandler) GetTrends(c *gin.Context) {
	identity := CurrentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	months := defaultTrendMonths
	if monthsParam := c.Query("months"); monthsParam != "" {
		parsed, err := strconv.Atoi(monthsParam)
		if err != nil || parsed < 1 || parsed > 36 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "months must be between 1 and 36"})
			return
		}
		months = parsed
	}

	trends, err := h.analyticsService.Trends(c.Request.Context(), identity, months)
	if err != nil {
		respondServiceError(c, err, "Failed to build trends")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"months": trends,
	})
}
