package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"persona-shop/internal/domain"
	"persona-shop/internal/repository"
	"persona-shop/internal/service"
)

// PersonalityHandler expone perfil, consentimiento, análisis de búsqueda y
// el flush del colector de comportamiento.
type PersonalityHandler struct {
	logger   *zap.Logger
	profiles *service.ProfileService
}

func NewPersonalityHandler(logger *zap.Logger, profiles *service.ProfileService) *PersonalityHandler {
	return &PersonalityHandler{logger: logger, profiles: profiles}
}

// GetProfile maneja GET /personality/profile. Devuelve el perfil (creándolo
// si no existe) junto con el tema sugerido por su rasgo dominante.
func (h *PersonalityHandler) GetProfile(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	profile, err := h.profiles.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("get profile failed", zap.Error(err), zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load profile"})
		return
	}

	resp := gin.H{"profile": profile}
	if profile.DominantTrait != nil {
		if theme, ok := domain.ThemeForTrait(*profile.DominantTrait); ok {
			resp["theme"] = theme
		}
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateConsent maneja POST /personality/consent.
func (h *PersonalityHandler) UpdateConsent(c *gin.Context) {
	var req struct {
		UserID  string `json:"user_id" binding:"required"`
		Consent *bool  `json:"consent" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid consent request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	profile, err := h.profiles.UpdateConsent(c.Request.Context(), req.UserID, *req.Consent)
	if err != nil {
		h.logger.Error("update consent failed", zap.Error(err), zap.String("user_id", req.UserID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update consent"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// AnalyzeSearch maneja POST /personality/search-analysis.
func (h *PersonalityHandler) AnalyzeSearch(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
		Query  string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid search analysis request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.profiles.AnalyzeAndMergeSearchQuery(c.Request.Context(), req.UserID, req.Query)
	if err != nil {
		h.logger.Error("search analysis failed", zap.Error(err), zap.String("user_id", req.UserID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not analyze search"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// FlushBehavior maneja POST /behavior/flush: el colector del cliente envía
// el snapshot agregado de la sesión.
func (h *PersonalityHandler) FlushBehavior(c *gin.Context) {
	var req struct {
		SessionID       string   `json:"session_id" binding:"required"`
		UserID          string   `json:"user_id"`
		AvgClickSpeed   float64  `json:"avg_click_speed"`
		TotalClicks     int      `json:"total_clicks"`
		ImpulsiveClicks int      `json:"impulsive_clicks"`
		AvgScrollSpeed  float64  `json:"avg_scroll_speed"`
		MaxScrollDepth  float64  `json:"max_scroll_depth"`
		AvgDwellTime    float64  `json:"avg_dwell_time"`
		PagesVisited    int      `json:"pages_visited"`
		BounceRate      float64  `json:"bounce_rate"`
		SearchTerms     []string `json:"search_terms"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid behavior flush request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	metric := domain.BehaviorMetric{
		SessionID:       req.SessionID,
		UserID:          req.UserID,
		AvgClickSpeed:   req.AvgClickSpeed,
		TotalClicks:     req.TotalClicks,
		ImpulsiveClicks: req.ImpulsiveClicks,
		AvgScrollSpeed:  req.AvgScrollSpeed,
		MaxScrollDepth:  req.MaxScrollDepth,
		AvgDwellTime:    req.AvgDwellTime,
		PagesVisited:    req.PagesVisited,
		BounceRate:      req.BounceRate,
		SearchTerms:     req.SearchTerms,
	}

	if err := h.profiles.RecordBehaviorSnapshot(c.Request.Context(), metric); err != nil {
		h.logger.Error("behavior flush failed", zap.Error(err), zap.String("session_id", req.SessionID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record behavior"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "recorded"})
}

// SessionSnapshot maneja GET /behavior/session/:id: muestra al usuario qué
// métricas se recolectaron en su sesión (vista de transparencia).
func (h *PersonalityHandler) SessionSnapshot(c *gin.Context) {
	sessionID := c.Param("id")

	metric, err := h.profiles.SessionSnapshot(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no metrics for session"})
			return
		}
		h.logger.Error("session snapshot failed", zap.Error(err), zap.String("session_id", sessionID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load session metrics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": metric})
}
