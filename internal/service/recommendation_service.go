package service

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"persona-shop/internal/domain"
	"persona-shop/internal/repository"
)

// neutralScore es el score de productos sin registro psicológico: quedan a
// mitad de tabla, nunca excluidos ni error.
const neutralScore = 0.5

// PurchaseProbability calcula P(compra|usuario,producto) en [0,1]: producto
// punto medio-normalizado de los cinco rasgos (escala 0-100 × 0-100 × 5 →
// /50000) más el bonus cultural. Se acota al final en todos los caminos.
func PurchaseProbability(profile domain.PersonalityProfile, psych domain.ProductPsychology) float64 {
	score := float64(
		profile.Openness*psych.AppealsToOpenness+
			profile.Conscientiousness*psych.AppealsToConscientiousness+
			profile.Extraversion*psych.AppealsToExtraversion+
			profile.Agreeableness*psych.AppealsToAgreeableness+
			profile.Neuroticism*psych.AppealsToNeuroticism,
	) / 50000

	switch profile.CulturalContext {
	case domain.CulturalAsian:
		score += float64(psych.MianziScore) / 1000
	case domain.CulturalAfrican, domain.CulturalMiddleEastern:
		score += float64(psych.UbuntuScore) / 1000
	}

	return math.Min(1, math.Max(0, score))
}

// SortByPersonality ordena el catálogo por score descendente contra el
// perfil. Orden estable: a igual score se preserva el orden del catálogo.
func SortByPersonality(products []domain.ProductWithPsychology, profile domain.PersonalityProfile) []int64 {
	type scored struct {
		id    int64
		score float64
	}
	rows := make([]scored, 0, len(products))
	for _, p := range products {
		score := neutralScore
		if p.Psychology != nil {
			score = PurchaseProbability(profile, *p.Psychology)
		}
		rows = append(rows, scored{id: p.Product.ID, score: score})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].score > rows[j].score
	})

	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.id
	}
	return ids
}

// Recommendations devuelve los top-N productos con score y razón legible.
func Recommendations(profile domain.PersonalityProfile, products []domain.ProductWithPsychology, limit int) []domain.ScoredProduct {
	if limit <= 0 {
		limit = 10
	}

	scored := make([]domain.ScoredProduct, 0, len(products))
	for _, p := range products {
		score := neutralScore
		if p.Psychology != nil {
			score = PurchaseProbability(profile, *p.Psychology)
		}
		scored = append(scored, domain.ScoredProduct{
			Product: p.Product,
			Score:   score,
			Reason:  recommendationReason(p.Psychology, profile),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

var traitLabels = map[domain.PersonalityTrait]string{
	domain.TraitOpenness:          "yenilikçi",
	domain.TraitConscientiousness: "düzenli",
	domain.TraitExtraversion:      "sosyal",
	domain.TraitAgreeableness:     "uyumlu",
	domain.TraitNeuroticism:       "duygusal",
}

// recommendationReason explica la recomendación con el rasgo de menor brecha
// entre usuario y producto. Ante empate gana el primer rasgo en orden canónico.
func recommendationReason(psych *domain.ProductPsychology, profile domain.PersonalityProfile) string {
	if psych == nil {
		return "Size uygun olabilir"
	}

	best := domain.TraitOpenness
	bestGap := math.Abs(float64(profile.TraitScore(best) - psych.AppealFor(best)))
	for _, t := range domain.AllTraits()[1:] {
		gap := math.Abs(float64(profile.TraitScore(t) - psych.AppealFor(t)))
		if gap < bestGap {
			best = t
			bestGap = gap
		}
	}

	userScore := profile.TraitScore(best)
	productScore := psych.AppealFor(best)
	switch {
	case userScore > 60 && productScore > 60:
		return traitLabels[best] + " kişiliğinize uygun"
	case userScore < 40 && productScore < 40:
		return "Tercihlerinize göre seçildi"
	default:
		return "Size özel önerildi"
	}
}

// RecommendationService arma listas personalizadas leyendo catálogo y perfil.
// Es una feature no crítica: las fallas de lectura degradan a lista vacía en
// vez de romper el storefront base.
type RecommendationService struct {
	products repository.ProductRepository
	profiles *ProfileService
	logger   *zap.Logger
}

func NewRecommendationService(products repository.ProductRepository, profiles *ProfileService, logger *zap.Logger) *RecommendationService {
	return &RecommendationService{
		products: products,
		profiles: profiles,
		logger:   logger,
	}
}

// PersonalizedList devuelve el catálogo activo reordenado por afinidad.
// Sin perfil utilizable devuelve el catálogo en su orden original.
func (s *RecommendationService) PersonalizedList(ctx context.Context, userID string) []domain.Product {
	withPsych, err := s.products.ListActiveWithPsychology(ctx)
	if err != nil {
		s.logger.Warn("personalized list degraded to empty", zap.Error(err))
		return nil
	}

	profile, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		s.logger.Warn("personalized list without profile, keeping catalog order", zap.Error(err), zap.String("user_id", userID))
		out := make([]domain.Product, len(withPsych))
		for i, p := range withPsych {
			out[i] = p.Product
		}
		return out
	}

	byID := make(map[int64]domain.Product, len(withPsych))
	for _, p := range withPsych {
		byID[p.Product.ID] = p.Product
	}

	sorted := SortByPersonality(withPsych, profile)
	out := make([]domain.Product, 0, len(sorted))
	for _, id := range sorted {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Recommend devuelve las top-N recomendaciones para el usuario.
func (s *RecommendationService) Recommend(ctx context.Context, userID string, limit int) []domain.ScoredProduct {
	withPsych, err := s.products.ListActiveWithPsychology(ctx)
	if err != nil {
		s.logger.Warn("recommendations degraded to empty", zap.Error(err))
		return nil
	}

	profile, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		s.logger.Warn("recommendations without profile", zap.Error(err), zap.String("user_id", userID))
		return nil
	}

	return Recommendations(profile, withPsych, limit)
}

// SimilarByAppeal devuelve productos con perfil psicológico vecino al dado,
// usando la columna vectorial de apelación.
func (s *RecommendationService) SimilarByAppeal(ctx context.Context, productID int64, k int) []domain.Product {
	similar, err := s.products.SimilarByAppeal(ctx, productID, k)
	if err != nil {
		s.logger.Warn("similar products degraded to empty", zap.Error(err), zap.Int64("product_id", productID))
		return nil
	}
	return similar
}
