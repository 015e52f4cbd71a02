package domain

import "time"

// PersonalityTrait identifica una dimensión del modelo Big Five.
type PersonalityTrait string

const (
	TraitOpenness          PersonalityTrait = "openness"
	TraitConscientiousness PersonalityTrait = "conscientiousness"
	TraitExtraversion      PersonalityTrait = "extraversion"
	TraitAgreeableness     PersonalityTrait = "agreeableness"
	TraitNeuroticism       PersonalityTrait = "neuroticism"
)

// AllTraits devuelve las cinco dimensiones en orden canónico.
func AllTraits() []PersonalityTrait {
	return []PersonalityTrait{
		TraitOpenness,
		TraitConscientiousness,
		TraitExtraversion,
		TraitAgreeableness,
		TraitNeuroticism,
	}
}

// CulturalContext agrupa el contexto cultural inferido del usuario.
type CulturalContext string

const (
	CulturalWestern       CulturalContext = "western"
	CulturalAsian         CulturalContext = "asian"
	CulturalAfrican       CulturalContext = "african"
	CulturalMiddleEastern CulturalContext = "middle_eastern"
)

// PersonalityProfile es el perfil durable de personalidad de un usuario.
// Cada score vive en [0,100]; 50 es el punto neutro inicial.
type PersonalityProfile struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	Openness          int               `json:"openness"`
	Conscientiousness int               `json:"conscientiousness"`
	Extraversion      int               `json:"extraversion"`
	Agreeableness     int               `json:"agreeableness"`
	Neuroticism       int               `json:"neuroticism"`
	ConfidenceScore   int               `json:"confidence_score"`
	DominantTrait     *PersonalityTrait `json:"dominant_trait,omitempty"`
	CulturalContext   CulturalContext   `json:"cultural_context"`
	ConsentGiven      bool              `json:"consent_given"`
	DataTransparency  bool              `json:"data_transparency"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// NewDefaultProfile crea el perfil neutro que recibe todo usuario al primer acceso.
// La confianza arranca en 0: sin señales todavía no sabemos nada.
func NewDefaultProfile(id, userID string, now time.Time) PersonalityProfile {
	return PersonalityProfile{
		ID:                id,
		UserID:            userID,
		Openness:          50,
		Conscientiousness: 50,
		Extraversion:      50,
		Agreeableness:     50,
		Neuroticism:       50,
		ConfidenceScore:   0,
		CulturalContext:   CulturalWestern,
		ConsentGiven:      false,
		DataTransparency:  false,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// TraitScore devuelve el score del rasgo pedido.
func (p PersonalityProfile) TraitScore(trait PersonalityTrait) int {
	switch trait {
	case TraitOpenness:
		return p.Openness
	case TraitConscientiousness:
		return p.Conscientiousness
	case TraitExtraversion:
		return p.Extraversion
	case TraitAgreeableness:
		return p.Agreeableness
	case TraitNeuroticism:
		return p.Neuroticism
	}
	return 0
}

// Dominant devuelve el rasgo con mayor score. Ante empate gana el primero
// en orden canónico para que el tema elegido sea estable.
func (p PersonalityProfile) Dominant() PersonalityTrait {
	best := TraitOpenness
	bestScore := p.TraitScore(best)
	for _, t := range AllTraits()[1:] {
		if s := p.TraitScore(t); s > bestScore {
			best = t
			bestScore = s
		}
	}
	return best
}

// ShouldProtectFromManipulation indica si el usuario no debe ver tácticas
// de urgencia/FOMO. Umbral exclusivo en 70 de neuroticismo.
func (p PersonalityProfile) ShouldProtectFromManipulation() bool {
	return p.Neuroticism > 70
}

// PersonalityInsights es el resultado transitorio de un análisis de texto.
// Se consume una sola vez por el merge y se descarta.
type PersonalityInsights struct {
	Openness          int    `json:"openness"`
	Conscientiousness int    `json:"conscientiousness"`
	Extraversion      int    `json:"extraversion"`
	Agreeableness     int    `json:"agreeableness"`
	Neuroticism       int    `json:"neuroticism"`
	Confidence        int    `json:"confidence"`
	Reasoning         string `json:"reasoning"`
}

// TraitScore devuelve el score del rasgo pedido.
func (i PersonalityInsights) TraitScore(trait PersonalityTrait) int {
	switch trait {
	case TraitOpenness:
		return i.Openness
	case TraitConscientiousness:
		return i.Conscientiousness
	case TraitExtraversion:
		return i.Extraversion
	case TraitAgreeableness:
		return i.Agreeableness
	case TraitNeuroticism:
		return i.Neuroticism
	}
	return 0
}

// ClampScore acota un score al rango [0,100]. Nunca rechazamos valores
// fuera de rango: se recortan en silencio.
func ClampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

var (
	asianCountries         = []string{"CN", "JP", "KR", "TW", "HK", "SG", "TH", "VN", "MY"}
	africanCountries       = []string{"ZA", "NG", "KE", "EG", "GH", "TZ", "UG", "ET"}
	middleEasternCountries = []string{"TR", "SA", "AE", "IR", "IQ", "IL", "JO", "LB"}
)

// DetectCulturalContext infiere el contexto cultural desde un código de país
// ISO-3166. Sin señal devolvemos western (sin bonus cultural).
func DetectCulturalContext(countryCode string) CulturalContext {
	if countryCode == "" {
		return CulturalWestern
	}
	for _, c := range asianCountries {
		if c == countryCode {
			return CulturalAsian
		}
	}
	for _, c := range africanCountries {
		if c == countryCode {
			return CulturalAfrican
		}
	}
	for _, c := range middleEasternCountries {
		if c == countryCode {
			return CulturalMiddleEastern
		}
	}
	return CulturalWestern
}
