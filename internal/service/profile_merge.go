package service

import (
	"math"

	"persona-shop/internal/domain"
)

// MergeInsights pliega un PersonalityInsights sobre un perfil existente con
// media móvil exponencial ponderada por confianza. baseWeight ∈ (0,1) lo
// elige el caller; se recorta en silencio si viene fuera de rango.
//
// adjustedWeight = baseWeight × (confidence/100): una observación de baja
// confianza apenas perturba un perfil establecido, señales consistentes
// repetidas se acumulan. La confianza del perfil solo crece y satura en 100.
// El caller es responsable de persistir el resultado y de no aplicar el
// mismo insight dos veces.
func MergeInsights(existing domain.PersonalityProfile, insights domain.PersonalityInsights, baseWeight float64) domain.PersonalityProfile {
	if baseWeight < 0 {
		baseWeight = 0
	}
	if baseWeight > 1 {
		baseWeight = 1
	}

	adjustedWeight := baseWeight * (float64(domain.ClampScore(insights.Confidence)) / 100)
	existingWeight := 1 - adjustedWeight

	mergeTrait := func(old, new int) int {
		merged := math.Round(float64(old)*existingWeight + float64(domain.ClampScore(new))*adjustedWeight)
		return domain.ClampScore(int(merged))
	}

	merged := existing
	merged.Openness = mergeTrait(existing.Openness, insights.Openness)
	merged.Conscientiousness = mergeTrait(existing.Conscientiousness, insights.Conscientiousness)
	merged.Extraversion = mergeTrait(existing.Extraversion, insights.Extraversion)
	merged.Agreeableness = mergeTrait(existing.Agreeableness, insights.Agreeableness)
	merged.Neuroticism = mergeTrait(existing.Neuroticism, insights.Neuroticism)

	newConfidence := int(math.Round(float64(existing.ConfidenceScore) + float64(insights.Confidence)*0.1))
	if newConfidence < existing.ConfidenceScore {
		newConfidence = existing.ConfidenceScore
	}
	merged.ConfidenceScore = domain.ClampScore(newConfidence)

	dominant := merged.Dominant()
	merged.DominantTrait = &dominant

	return merged
}
