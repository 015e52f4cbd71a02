package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"persona-shop/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(
	logger *zap.Logger,
	personalityH *PersonalityHandler,
	productH *ProductHandler,
	analyticsH *AnalyticsHandler,
	adminTokens *service.AdminTokenService,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	personality := r.Group("/personality")
	personality.GET("/profile", personalityH.GetProfile)
	personality.POST("/consent", personalityH.UpdateConsent)
	personality.POST("/search-analysis", personalityH.AnalyzeSearch)

	r.POST("/behavior/flush", personalityH.FlushBehavior)
	r.GET("/behavior/session/:id", personalityH.SessionSnapshot)

	products := r.Group("/products")
	products.GET("", productH.List)
	products.GET("/categories", productH.Categories)
	products.GET("/personalized", productH.Personalized)
	products.GET("/recommendations", productH.Recommend)
	products.GET("/:id/similar", productH.Similar)

	analytics := r.Group("/analytics")
	analytics.POST("/impression", analyticsH.TrackImpression)
	analytics.POST("/conversion", analyticsH.TrackConversion)

	adminOnly := AdminAuthMiddleware(adminTokens)
	analytics.GET("/theme-performance", adminOnly, analyticsH.ThemePerformance)
	analytics.GET("/personality-breakdown", adminOnly, analyticsH.PersonalityBreakdown)

	admin := r.Group("/admin", adminOnly)
	admin.GET("/products/:id/psychology", productH.GetPsychology)
	admin.PUT("/products/:id/psychology", productH.UpsertPsychology)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
