package service

import (
	"testing"
	"time"

	"persona-shop/internal/domain"
)

func testTime() time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

func TestMergeInsightsWeightedAverage(t *testing.T) {
	existing := domain.NewDefaultProfile("p1", "u1", testTime())
	insights := domain.PersonalityInsights{
		Openness:          90,
		Conscientiousness: 50,
		Extraversion:      50,
		Agreeableness:     50,
		Neuroticism:       50,
		Confidence:        100,
	}

	merged := MergeInsights(existing, insights, 0.8)
	// adjustedWeight = 0.8 × 1.0 → 50×0.2 + 90×0.8 = 82
	if merged.Openness != 82 {
		t.Fatalf("expected openness 82, got %d", merged.Openness)
	}
	if merged.Conscientiousness != 50 {
		t.Fatalf("expected conscientiousness unchanged at 50, got %d", merged.Conscientiousness)
	}
}

func TestMergeInsightsLowConfidenceBarelyMoves(t *testing.T) {
	existing := domain.NewDefaultProfile("p1", "u1", testTime())
	existing.Openness = 80
	insights := domain.PersonalityInsights{
		Openness: 0, Conscientiousness: 50, Extraversion: 50,
		Agreeableness: 50, Neuroticism: 50, Confidence: 10,
	}

	merged := MergeInsights(existing, insights, 0.2)
	// adjustedWeight = 0.2 × 0.1 = 0.02 → 80×0.98 + 0×0.02 = 78.4 → 78
	if merged.Openness != 78 {
		t.Fatalf("expected openness 78, got %d", merged.Openness)
	}
}

func TestMergeInsightsConfidenceMonotonic(t *testing.T) {
	existing := domain.NewDefaultProfile("p1", "u1", testTime())
	existing.ConfidenceScore = 40

	merged := MergeInsights(existing, domain.PersonalityInsights{Confidence: 0}, 0.5)
	if merged.ConfidenceScore != 40 {
		t.Fatalf("expected confidence to never decrease, got %d", merged.ConfidenceScore)
	}

	merged = MergeInsights(existing, domain.PersonalityInsights{
		Openness: 50, Conscientiousness: 50, Extraversion: 50,
		Agreeableness: 50, Neuroticism: 50, Confidence: 80,
	}, 0.5)
	if merged.ConfidenceScore != 48 {
		t.Fatalf("expected confidence 48, got %d", merged.ConfidenceScore)
	}
}

func TestMergeInsightsConfidenceSaturatesAt100(t *testing.T) {
	existing := domain.NewDefaultProfile("p1", "u1", testTime())
	existing.ConfidenceScore = 99

	merged := MergeInsights(existing, domain.PersonalityInsights{
		Openness: 50, Conscientiousness: 50, Extraversion: 50,
		Agreeableness: 50, Neuroticism: 50, Confidence: 100,
	}, 0.5)
	if merged.ConfidenceScore != 100 {
		t.Fatalf("expected confidence capped at 100, got %d", merged.ConfidenceScore)
	}
}

func TestMergeInsightsClampsBaseWeight(t *testing.T) {
	existing := domain.NewDefaultProfile("p1", "u1", testTime())
	insights := domain.PersonalityInsights{
		Openness: 100, Conscientiousness: 50, Extraversion: 50,
		Agreeableness: 50, Neuroticism: 50, Confidence: 100,
	}

	merged := MergeInsights(existing, insights, 5)
	// baseWeight recortado a 1 → el insight reemplaza al perfil.
	if merged.Openness != 100 {
		t.Fatalf("expected openness 100, got %d", merged.Openness)
	}

	merged = MergeInsights(existing, insights, -3)
	if merged.Openness != 50 {
		t.Fatalf("expected openness unchanged with weight 0, got %d", merged.Openness)
	}
}

func TestMergeInsightsRecomputesDominant(t *testing.T) {
	existing := domain.NewDefaultProfile("p1", "u1", testTime())
	insights := domain.PersonalityInsights{
		Openness: 50, Conscientiousness: 50, Extraversion: 95,
		Agreeableness: 50, Neuroticism: 50, Confidence: 100,
	}

	merged := MergeInsights(existing, insights, 0.8)
	if merged.DominantTrait == nil || *merged.DominantTrait != domain.TraitExtraversion {
		t.Fatalf("expected dominant extraversion, got %v", merged.DominantTrait)
	}
}
