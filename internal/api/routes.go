package api

import (
	"github.com/RishiKendai/aegis-text/internal/config"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(cfg *config.Config, handler *Handler) *gin.Engine {
	router := gin.New()

	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))

	router.Use(gin.Recovery())
	router.Use(RequestLogger())
	router.Use(MetricsMiddleware())
	router.Use(ErrorHandlerMiddleware())

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.POST("/compare", handler.Compare)
		api.POST("/analyze", handler.Analyze)

		api.POST("/analyses", handler.SubmitAnalysis)
		api.GET("/analyses", handler.ListReports)
		api.GET("/analyses/:id/status", handler.GetStatus)
		api.GET("/analyses/:id/report", handler.GetReport)
	}

	return router
}
