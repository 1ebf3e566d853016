package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"feedbackhub/pkg/logger"
	"feedbackhub/pkg/metrics"
)

func SetupRoutes(feedbackHandler *FeedbackHandler, analyticsHandler *AnalyticsHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())

	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("feedback-service"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "feedback-service",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	feedback := router.Group("/feedback")
	feedback.Use(authMiddleware.Authenticate())
	{
		feedback.POST("/", feedbackHandler.SubmitFeedback)
		feedback.GET("/", feedbackHandler.ListFeedback)
		feedback.GET("/export", feedbackHandler.ExportFeedback)
		feedback.PATCH("/:feedback_id/status", feedbackHandler.UpdateStatus)
		feedback.DELETE("/:feedback_id", feedbackHandler.DeleteFeedback)
	}

	analytics := router.Group("/analytics")
	analytics.Use(authMiddleware.Authenticate())
	{
		analytics.GET("/summary", analyticsHandler.GetSummary)
		analytics.GET("/trends", analyticsHandler.GetTrends)
	}

	return router
}
