package service

import (
	"math"
	"regexp"
	"strings"

	"persona-shop/internal/domain"
)

// TraitOverrides es una actualización parcial de rasgos: solo los campos no
// nil llevan evidencia. El caller la pliega sobre defaults con Apply; un
// rasgo ausente significa "sin actualización", no "cero".
type TraitOverrides struct {
	Openness          *int
	Conscientiousness *int
	Extraversion      *int
	Agreeableness     *int
	Neuroticism       *int
}

// IsEmpty indica si ninguna regla aportó evidencia.
func (o TraitOverrides) IsEmpty() bool {
	return o.Openness == nil && o.Conscientiousness == nil && o.Extraversion == nil &&
		o.Agreeableness == nil && o.Neuroticism == nil
}

// Get devuelve (valor, true) si hay override para el rasgo.
func (o TraitOverrides) Get(trait domain.PersonalityTrait) (int, bool) {
	var p *int
	switch trait {
	case domain.TraitOpenness:
		p = o.Openness
	case domain.TraitConscientiousness:
		p = o.Conscientiousness
	case domain.TraitExtraversion:
		p = o.Extraversion
	case domain.TraitAgreeableness:
		p = o.Agreeableness
	case domain.TraitNeuroticism:
		p = o.Neuroticism
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

func (o *TraitOverrides) set(trait domain.PersonalityTrait, value int) {
	value = domain.ClampScore(value)
	switch trait {
	case domain.TraitOpenness:
		o.Openness = &value
	case domain.TraitConscientiousness:
		o.Conscientiousness = &value
	case domain.TraitExtraversion:
		o.Extraversion = &value
	case domain.TraitAgreeableness:
		o.Agreeableness = &value
	case domain.TraitNeuroticism:
		o.Neuroticism = &value
	}
}

// priorOr devuelve el valor ya fijado por una regla anterior, o el default.
func (o TraitOverrides) priorOr(trait domain.PersonalityTrait, def int) int {
	if v, ok := o.Get(trait); ok {
		return v
	}
	return def
}

// Merge superpone otro set de overrides sobre este; ante conflicto gana el
// argumento (evidencia más reciente).
func (o TraitOverrides) Merge(other TraitOverrides) TraitOverrides {
	for _, t := range domain.AllTraits() {
		if v, ok := other.Get(t); ok {
			o.set(t, v)
		}
	}
	return o
}

// AsInsights convierte los overrides en un PersonalityInsights apto para el
// merge: los rasgos sin evidencia toman el valor actual del perfil, de modo
// que el merge los deja intactos.
func (o TraitOverrides) AsInsights(profile domain.PersonalityProfile, confidence int, reasoning string) domain.PersonalityInsights {
	scoreOr := func(t domain.PersonalityTrait) int {
		if v, ok := o.Get(t); ok {
			return v
		}
		return profile.TraitScore(t)
	}
	return domain.PersonalityInsights{
		Openness:          scoreOr(domain.TraitOpenness),
		Conscientiousness: scoreOr(domain.TraitConscientiousness),
		Extraversion:      scoreOr(domain.TraitExtraversion),
		Agreeableness:     scoreOr(domain.TraitAgreeableness),
		Neuroticism:       scoreOr(domain.TraitNeuroticism),
		Confidence:        domain.ClampScore(confidence),
		Reasoning:         reasoning,
	}
}

// Apply pliega los overrides sobre un perfil y devuelve la copia actualizada.
func (o TraitOverrides) Apply(p domain.PersonalityProfile) domain.PersonalityProfile {
	if v, ok := o.Get(domain.TraitOpenness); ok {
		p.Openness = v
	}
	if v, ok := o.Get(domain.TraitConscientiousness); ok {
		p.Conscientiousness = v
	}
	if v, ok := o.Get(domain.TraitExtraversion); ok {
		p.Extraversion = v
	}
	if v, ok := o.Get(domain.TraitAgreeableness); ok {
		p.Agreeableness = v
	}
	if v, ok := o.Get(domain.TraitNeuroticism); ok {
		p.Neuroticism = v
	}
	return p
}

// ScoreBehavior mapea un snapshot de métricas a rasgos parciales. Función
// pura y determinista; las reglas corren en orden fijo y una regla posterior
// puede pisar lo que fijó una anterior para el mismo rasgo.
//
// Correlaciones tomadas de la literatura comportamiento-personalidad:
// clicks rápidos → extraversión, scroll profundo → apertura, dwell largo →
// responsabilidad, rebote alto → neuroticismo.
func ScoreBehavior(m domain.BehaviorMetric) TraitOverrides {
	var o TraitOverrides

	if m.AvgClickSpeed > 0 {
		o.set(domain.TraitExtraversion, int(math.Min(100, 50+m.AvgClickSpeed*10)))
		o.set(domain.TraitConscientiousness, int(math.Max(0, 50-m.AvgClickSpeed*5)))
	}

	if m.TotalClicks > 0 && float64(m.ImpulsiveClicks)/float64(m.TotalClicks) > 0.3 {
		o.set(domain.TraitConscientiousness, o.priorOr(domain.TraitConscientiousness, 50)-10)
		o.set(domain.TraitExtraversion, o.priorOr(domain.TraitExtraversion, 50)+10)
	}

	if m.MaxScrollDepth > 80 {
		o.set(domain.TraitOpenness, 65)
	}

	if m.AvgDwellTime > 30 {
		o.set(domain.TraitConscientiousness, o.priorOr(domain.TraitConscientiousness, 50)+15)
	} else if m.AvgDwellTime > 0 && m.AvgDwellTime < 10 {
		o.set(domain.TraitExtraversion, o.priorOr(domain.TraitExtraversion, 50)+10)
	}

	if m.BounceRate > 0.7 {
		o.set(domain.TraitNeuroticism, 65)
	}

	if m.PagesVisited > 5 {
		o.set(domain.TraitOpenness, o.priorOr(domain.TraitOpenness, 50)+10)
	}

	return o
}

var (
	reSelfRef  = regexp.MustCompile(`\b(ben|bana|benim|kendim)\b`)
	reQuestion = regexp.MustCompile(`\b(nasıl|neden|ne|kim|nerede)\b`)
)

// ScoreSearchTerms extrae rasgos parciales de los términos de búsqueda sin
// pasar por el LLM. Lenguaje autorreferencial → neuroticismo, preguntas →
// apertura, consultas largas y específicas → responsabilidad.
func ScoreSearchTerms(terms []string) TraitOverrides {
	var o TraitOverrides
	terms = domain.DedupeSearchTerms(terms)
	if len(terms) == 0 {
		return o
	}

	allText := strings.ToLower(strings.Join(terms, " "))

	if n := len(reSelfRef.FindAllString(allText, -1)); n > 3 {
		o.set(domain.TraitNeuroticism, 50+n*5)
	}

	if n := len(reQuestion.FindAllString(allText, -1)); n > 2 {
		o.set(domain.TraitOpenness, 50+n*8)
	}

	totalLen := 0
	for _, w := range strings.Fields(allText) {
		totalLen += len([]rune(w))
	}
	if avg := float64(totalLen) / float64(len(terms)); avg > 6 {
		o.set(domain.TraitConscientiousness, 65)
	}

	return o
}
