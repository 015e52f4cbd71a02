package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"persona-shop/internal/domain"
	"persona-shop/internal/repository"
)

type mockProductRepo struct {
	withPsych []domain.ProductWithPsychology
	similar   []domain.Product
	err       error
}

func (m *mockProductRepo) ListPaginated(ctx context.Context, page, limit int, category string) ([]domain.Product, int, error) {
	return nil, 0, errors.New("not implemented")
}

func (m *mockProductRepo) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	return domain.Product{}, repository.ErrNotFound
}

func (m *mockProductRepo) Categories(ctx context.Context) ([]string, error) {
	return nil, errors.New("not implemented")
}

func (m *mockProductRepo) ListActiveWithPsychology(ctx context.Context) ([]domain.ProductWithPsychology, error) {
	return m.withPsych, m.err
}

func (m *mockProductRepo) GetPsychology(ctx context.Context, productID int64) (domain.ProductPsychology, error) {
	return domain.ProductPsychology{}, repository.ErrNotFound
}

func (m *mockProductRepo) UpsertPsychology(ctx context.Context, psych domain.ProductPsychology) error {
	return errors.New("not implemented")
}

func (m *mockProductRepo) SimilarByAppeal(ctx context.Context, productID int64, limit int) ([]domain.Product, error) {
	return m.similar, m.err
}

func flatPsych(score int) *domain.ProductPsychology {
	return &domain.ProductPsychology{
		AppealsToOpenness:          score,
		AppealsToConscientiousness: score,
		AppealsToExtraversion:      score,
		AppealsToAgreeableness:     score,
		AppealsToNeuroticism:       score,
	}
}

func TestPurchaseProbabilityOpenUserOpenProduct(t *testing.T) {
	profile := domain.NewDefaultProfile("p1", "u1", testTime())
	profile.Openness = 90
	psych := *flatPsych(50)
	psych.AppealsToOpenness = 95

	got := PurchaseProbability(profile, psych)
	if got <= 0.3 {
		t.Fatalf("expected probability above 0.3, got %f", got)
	}
}

func TestPurchaseProbabilityBounds(t *testing.T) {
	profile := domain.NewDefaultProfile("p1", "u1", testTime())
	profile.Openness, profile.Conscientiousness, profile.Extraversion = 100, 100, 100
	profile.Agreeableness, profile.Neuroticism = 100, 100
	profile.CulturalContext = domain.CulturalAsian
	psych := *flatPsych(100)
	psych.MianziScore = 100

	if got := PurchaseProbability(profile, psych); got != 1 {
		t.Fatalf("expected probability clamped to 1, got %f", got)
	}

	zero := domain.NewDefaultProfile("p2", "u2", testTime())
	zero.Openness, zero.Conscientiousness, zero.Extraversion = 0, 0, 0
	zero.Agreeableness, zero.Neuroticism = 0, 0
	if got := PurchaseProbability(zero, *flatPsych(0)); got != 0 {
		t.Fatalf("expected probability 0, got %f", got)
	}
}

func TestPurchaseProbabilityCulturalBonus(t *testing.T) {
	profile := domain.NewDefaultProfile("p1", "u1", testTime())
	psych := *flatPsych(50)
	psych.MianziScore = 80
	psych.UbuntuScore = 60

	base := PurchaseProbability(profile, psych)

	profile.CulturalContext = domain.CulturalAsian
	if got := PurchaseProbability(profile, psych); got != base+0.08 {
		t.Fatalf("expected mianzi bonus 0.08, got %f vs base %f", got, base)
	}

	profile.CulturalContext = domain.CulturalAfrican
	if got := PurchaseProbability(profile, psych); got != base+0.06 {
		t.Fatalf("expected ubuntu bonus 0.06, got %f vs base %f", got, base)
	}

	profile.CulturalContext = domain.CulturalMiddleEastern
	if got := PurchaseProbability(profile, psych); got != base+0.06 {
		t.Fatalf("expected ubuntu bonus for middle eastern, got %f", got)
	}
}

func TestSortByPersonalityRanksMatchingFirst(t *testing.T) {
	profile := domain.NewDefaultProfile("p1", "u1", testTime())
	profile.Openness = 90

	products := []domain.ProductWithPsychology{
		{Product: domain.Product{ID: 1}, Psychology: flatPsych(30)},
		{Product: domain.Product{ID: 2}, Psychology: func() *domain.ProductPsychology {
			p := flatPsych(30)
			p.AppealsToOpenness = 95
			return p
		}()},
	}

	ids := SortByPersonality(products, profile)
	if ids[0] != 2 || ids[1] != 1 {
		t.Fatalf("expected [2 1], got %v", ids)
	}
}

func TestSortByPersonalityMissingPsychologyIsNeutral(t *testing.T) {
	profile := domain.NewDefaultProfile("p1", "u1", testTime())

	products := []domain.ProductWithPsychology{
		{Product: domain.Product{ID: 1}, Psychology: flatPsych(10)}, // score bajo
		{Product: domain.Product{ID: 2}},                            // neutro 0.5
		{Product: domain.Product{ID: 3}, Psychology: flatPsych(90)}, // score alto
	}

	ids := SortByPersonality(products, profile)
	if ids[0] != 3 || ids[1] != 2 || ids[2] != 1 {
		t.Fatalf("expected [3 2 1], got %v", ids)
	}
}

func TestSortByPersonalityStableOnTies(t *testing.T) {
	profile := domain.NewDefaultProfile("p1", "u1", testTime())
	products := []domain.ProductWithPsychology{
		{Product: domain.Product{ID: 7}},
		{Product: domain.Product{ID: 3}},
		{Product: domain.Product{ID: 9}},
	}

	ids := SortByPersonality(products, profile)
	if ids[0] != 7 || ids[1] != 3 || ids[2] != 9 {
		t.Fatalf("expected catalog order preserved on ties, got %v", ids)
	}
}

func TestRecommendationsLimitsAndSorts(t *testing.T) {
	profile := domain.NewDefaultProfile("p1", "u1", testTime())
	products := []domain.ProductWithPsychology{
		{Product: domain.Product{ID: 1}, Psychology: flatPsych(20)},
		{Product: domain.Product{ID: 2}, Psychology: flatPsych(80)},
		{Product: domain.Product{ID: 3}, Psychology: flatPsych(60)},
	}

	recs := Recommendations(profile, products, 2)
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}
	if recs[0].Product.ID != 2 || recs[1].Product.ID != 3 {
		t.Fatalf("expected [2 3], got [%d %d]", recs[0].Product.ID, recs[1].Product.ID)
	}
}

func TestRecommendationsDefaultLimit(t *testing.T) {
	profile := domain.NewDefaultProfile("p1", "u1", testTime())
	products := make([]domain.ProductWithPsychology, 15)
	for i := range products {
		products[i] = domain.ProductWithPsychology{Product: domain.Product{ID: int64(i + 1)}}
	}

	if recs := Recommendations(profile, products, 0); len(recs) != 10 {
		t.Fatalf("expected default limit 10, got %d", len(recs))
	}
}

func TestRecommendationReasonVariants(t *testing.T) {
	profile := domain.NewDefaultProfile("p1", "u1", testTime())
	profile.Extraversion = 80

	// brecha mínima en extraversión, ambos > 60
	psych := flatPsych(20)
	psych.AppealsToExtraversion = 78
	if got := recommendationReason(psych, profile); got != "sosyal kişiliğinize uygun" {
		t.Fatalf("expected trait match reason, got %q", got)
	}

	// ambos < 40
	low := domain.NewDefaultProfile("p2", "u2", testTime())
	low.Openness = 20
	lowPsych := flatPsych(90)
	lowPsych.AppealsToOpenness = 22
	if got := recommendationReason(lowPsych, low); got != "Tercihlerinize göre seçildi" {
		t.Fatalf("expected preference reason, got %q", got)
	}

	// zona media
	mid := domain.NewDefaultProfile("p3", "u3", testTime())
	if got := recommendationReason(flatPsych(50), mid); got != "Size özel önerildi" {
		t.Fatalf("expected generic reason, got %q", got)
	}

	// sin registro psicológico
	if got := recommendationReason(nil, profile); got != "Size uygun olabilir" {
		t.Fatalf("expected neutral reason, got %q", got)
	}
}

func TestShouldProtectFromManipulationThreshold(t *testing.T) {
	profile := domain.NewDefaultProfile("p1", "u1", testTime())

	profile.Neuroticism = 85
	if !profile.ShouldProtectFromManipulation() {
		t.Fatalf("expected protection at neuroticism 85")
	}
	profile.Neuroticism = 40
	if profile.ShouldProtectFromManipulation() {
		t.Fatalf("expected no protection at neuroticism 40")
	}
	profile.Neuroticism = 70
	if profile.ShouldProtectFromManipulation() {
		t.Fatalf("threshold is exclusive, 70 must not protect")
	}
}

func TestRecommendationServiceDegradesToEmpty(t *testing.T) {
	products := &mockProductRepo{err: errors.New("db down")}
	profiles := newTestProfileService(newMockProfileRepo(), &mockBehaviorRepo{})
	svc := NewRecommendationService(products, profiles, zap.NewNop())

	if got := svc.Recommend(context.Background(), "u1", 5); got != nil {
		t.Fatalf("expected nil on storage failure, got %v", got)
	}
	if got := svc.PersonalizedList(context.Background(), "u1"); got != nil {
		t.Fatalf("expected nil personalized list on storage failure, got %v", got)
	}
	if got := svc.SimilarByAppeal(context.Background(), 1, 5); got != nil {
		t.Fatalf("expected nil similar list on storage failure, got %v", got)
	}
}

func TestRecommendationServicePersonalizedKeepsCatalogOrderWithoutProfile(t *testing.T) {
	products := &mockProductRepo{withPsych: []domain.ProductWithPsychology{
		{Product: domain.Product{ID: 5}, Psychology: flatPsych(90)},
		{Product: domain.Product{ID: 6}, Psychology: flatPsych(10)},
	}}
	brokenProfiles := newMockProfileRepo()
	brokenProfiles.getErr = errors.New("db down")
	profiles := newTestProfileService(brokenProfiles, &mockBehaviorRepo{})
	svc := NewRecommendationService(products, profiles, zap.NewNop())

	got := svc.PersonalizedList(context.Background(), "u1")
	if len(got) != 2 || got[0].ID != 5 || got[1].ID != 6 {
		t.Fatalf("expected catalog order [5 6], got %v", got)
	}
}

func TestDetectCulturalContext(t *testing.T) {
	cases := map[string]domain.CulturalContext{
		"CN": domain.CulturalAsian,
		"JP": domain.CulturalAsian,
		"NG": domain.CulturalAfrican,
		"ZA": domain.CulturalAfrican,
		"TR": domain.CulturalMiddleEastern,
		"SA": domain.CulturalMiddleEastern,
		"US": domain.CulturalWestern,
		"":   domain.CulturalWestern,
	}
	for code, want := range cases {
		if got := domain.DetectCulturalContext(code); got != want {
			t.Fatalf("country %q: expected %s, got %s", code, want, got)
		}
	}
}

func TestDominantTraitTieBreaksCanonical(t *testing.T) {
	profile := domain.NewDefaultProfile("p1", "u1", testTime())
	if got := profile.Dominant(); got != domain.TraitOpenness {
		t.Fatalf("expected openness on all-equal tie, got %s", got)
	}

	profile.Neuroticism = 70
	if got := profile.Dominant(); got != domain.TraitNeuroticism {
		t.Fatalf("expected neuroticism, got %s", got)
	}
}
