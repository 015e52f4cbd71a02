package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"persona-shop/internal/domain"
	"persona-shop/internal/repository"
	"persona-shop/internal/service"
)

// ProductHandler expone el catálogo, las listas personalizadas y la edición
// administrativa de perfiles psicológicos de producto.
type ProductHandler struct {
	logger          *zap.Logger
	products        repository.ProductRepository
	recommendations *service.RecommendationService
}

func NewProductHandler(
	logger *zap.Logger,
	products repository.ProductRepository,
	recommendations *service.RecommendationService,
) *ProductHandler {
	return &ProductHandler{
		logger:          logger,
		products:        products,
		recommendations: recommendations,
	}
}

// List maneja GET /products con paginación y filtro por categoría.
func (h *ProductHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	category := c.Query("category")

	products, total, err := h.products.ListPaginated(c.Request.Context(), page, limit, category)
	if err != nil {
		h.logger.Warn("product list degraded to empty", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"products": []domain.Product{}, "total": 0})
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "total": total})
}

// Categories maneja GET /products/categories.
func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.products.Categories(c.Request.Context())
	if err != nil {
		h.logger.Warn("categories degraded to empty", zap.Error(err))
		categories = nil
	}
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Personalized maneja GET /products/personalized: catálogo reordenado por
// afinidad con el perfil del usuario.
func (h *ProductHandler) Personalized(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	products := h.recommendations.PersonalizedList(c.Request.Context(), userID)
	if products == nil {
		products = []domain.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// Recommend maneja GET /products/recommendations.
func (h *ProductHandler) Recommend(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	recs := h.recommendations.Recommend(c.Request.Context(), userID, limit)
	if recs == nil {
		recs = []domain.ScoredProduct{}
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

// Similar maneja GET /products/:id/similar.
func (h *ProductHandler) Similar(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	products := h.recommendations.SimilarByAppeal(c.Request.Context(), productID, limit)
	if products == nil {
		products = []domain.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetPsychology maneja GET /admin/products/:id/psychology.
func (h *ProductHandler) GetPsychology(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	psych, err := h.products.GetPsychology(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "psychology record not found"})
			return
		}
		h.logger.Error("get product psychology failed", zap.Error(err), zap.Int64("product_id", productID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load product psychology"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"psychology": psych})
}

// UpsertPsychology maneja PUT /admin/products/:id/psychology. La ruta ya pasó
// por el middleware de rol admin; acá solo se valida y persiste.
func (h *ProductHandler) UpsertPsychology(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req struct {
		AppealsToOpenness          int      `json:"appeals_to_openness"`
		AppealsToConscientiousness int      `json:"appeals_to_conscientiousness"`
		AppealsToExtraversion      int      `json:"appeals_to_extraversion"`
		AppealsToAgreeableness     int      `json:"appeals_to_agreeableness"`
		AppealsToNeuroticism       int      `json:"appeals_to_neuroticism"`
		MianziScore                int      `json:"mianzi_score"`
		UbuntuScore                int      `json:"ubuntu_score"`
		Tags                       []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid product psychology request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if _, err := h.products.GetByID(c.Request.Context(), productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.logger.Error("product lookup failed", zap.Error(err), zap.Int64("product_id", productID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load product"})
		return
	}

	psych := domain.ProductPsychology{
		ProductID:                  productID,
		AppealsToOpenness:          req.AppealsToOpenness,
		AppealsToConscientiousness: req.AppealsToConscientiousness,
		AppealsToExtraversion:      req.AppealsToExtraversion,
		AppealsToAgreeableness:     req.AppealsToAgreeableness,
		AppealsToNeuroticism:       req.AppealsToNeuroticism,
		MianziScore:                req.MianziScore,
		UbuntuScore:                req.UbuntuScore,
		Tags:                       req.Tags,
		UpdatedAt:                  time.Now().UTC(),
	}.Clamp()

	if err := h.products.UpsertPsychology(c.Request.Context(), psych); err != nil {
		h.logger.Error("upsert product psychology failed", zap.Error(err), zap.Int64("product_id", productID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save product psychology"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"psychology": psych})
}
