package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"persona-shop/internal/domain"
	"persona-shop/internal/service"
)

// AnalyticsHandler expone el tracking del experimento de temas y los
// reportes agregados para administración.
type AnalyticsHandler struct {
	logger    *zap.Logger
	analytics *service.AnalyticsService
}

func NewAnalyticsHandler(logger *zap.Logger, analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{logger: logger, analytics: analytics}
}

// TrackImpression maneja POST /analytics/impression.
func (h *AnalyticsHandler) TrackImpression(c *gin.Context) {
	var req struct {
		SessionID        string  `json:"session_id" binding:"required"`
		UserID           string  `json:"user_id"`
		ThemeVariant     string  `json:"theme_variant" binding:"required"`
		PersonalityTrait *string `json:"personality_trait"`
		PageURL          string  `json:"page_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid impression request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	imp := domain.ThemeImpression{
		SessionID:        req.SessionID,
		UserID:           req.UserID,
		ThemeVariant:     req.ThemeVariant,
		PersonalityTrait: parseTrait(req.PersonalityTrait),
		PageURL:          req.PageURL,
	}

	if err := h.analytics.TrackImpression(c.Request.Context(), imp); err != nil {
		if errors.Is(err, service.ErrMissingRequiredFields) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("track impression failed", zap.Error(err), zap.String("session_id", req.SessionID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not track impression"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "tracked"})
}

// TrackConversion maneja POST /analytics/conversion.
func (h *AnalyticsHandler) TrackConversion(c *gin.Context) {
	var req struct {
		SessionID        string   `json:"session_id" binding:"required"`
		UserID           string   `json:"user_id"`
		ThemeVariant     string   `json:"theme_variant" binding:"required"`
		PersonalityTrait *string  `json:"personality_trait"`
		EventType        string   `json:"event_type" binding:"required"`
		ProductID        *int64   `json:"product_id"`
		Value            *float64 `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid conversion request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ev := domain.ConversionEvent{
		SessionID:        req.SessionID,
		UserID:           req.UserID,
		ThemeVariant:     req.ThemeVariant,
		PersonalityTrait: parseTrait(req.PersonalityTrait),
		EventType:        domain.ConversionEventType(req.EventType),
		ProductID:        req.ProductID,
		Value:            req.Value,
	}

	if err := h.analytics.TrackConversion(c.Request.Context(), ev); err != nil {
		if errors.Is(err, service.ErrMissingRequiredFields) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Warn("track conversion rejected", zap.Error(err), zap.String("session_id", req.SessionID))
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not track conversion"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "tracked"})
}

// ThemePerformance maneja GET /analytics/theme-performance.
func (h *AnalyticsHandler) ThemePerformance(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	report, err := h.analytics.ThemePerformance(c.Request.Context(), days)
	if err != nil {
		h.logger.Error("theme performance report failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build report"})
		return
	}
	if report == nil {
		report = []domain.ThemePerformance{}
	}
	c.JSON(http.StatusOK, gin.H{"report": report, "days": days})
}

// PersonalityBreakdown maneja GET /analytics/personality-breakdown.
func (h *AnalyticsHandler) PersonalityBreakdown(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	report, err := h.analytics.PersonalityThemeBreakdown(c.Request.Context(), days)
	if err != nil {
		h.logger.Error("personality breakdown report failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build report"})
		return
	}
	if report == nil {
		report = []domain.PersonalityThemePerformance{}
	}
	c.JSON(http.StatusOK, gin.H{"report": report, "days": days})
}

func parseTrait(raw *string) *domain.PersonalityTrait {
	if raw == nil || *raw == "" {
		return nil
	}
	trait := domain.PersonalityTrait(*raw)
	for _, t := range domain.AllTraits() {
		if trait == t {
			return &trait
		}
	}
	return nil
}
