package domain

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// Product es una fila del catálogo. El storefront CRUD es dueño del ciclo
// de vida; aquí solo lo leemos para rankear y recomendar.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       string    `json:"price"`
	ImageURL    string    `json:"image_url,omitempty"`
	Category    string    `json:"category,omitempty"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProductPsychology describe a qué rasgos apela un producto, más las dos
// dimensiones culturales. Lo edita solo un administrador; un producto sin
// registro se trata como neutro, nunca como error.
type ProductPsychology struct {
	ProductID                  int64     `json:"product_id"`
	AppealsToOpenness          int       `json:"appeals_to_openness"`
	AppealsToConscientiousness int       `json:"appeals_to_conscientiousness"`
	AppealsToExtraversion      int       `json:"appeals_to_extraversion"`
	AppealsToAgreeableness     int       `json:"appeals_to_agreeableness"`
	AppealsToNeuroticism       int       `json:"appeals_to_neuroticism"`
	MianziScore                int       `json:"mianzi_score"`
	UbuntuScore                int       `json:"ubuntu_score"`
	Tags                       []string  `json:"tags,omitempty"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

// AppealFor devuelve el score de apelación para un rasgo.
func (p ProductPsychology) AppealFor(trait PersonalityTrait) int {
	switch trait {
	case TraitOpenness:
		return p.AppealsToOpenness
	case TraitConscientiousness:
		return p.AppealsToConscientiousness
	case TraitExtraversion:
		return p.AppealsToExtraversion
	case TraitAgreeableness:
		return p.AppealsToAgreeableness
	case TraitNeuroticism:
		return p.AppealsToNeuroticism
	}
	return 0
}

// Clamp recorta todos los scores a [0,100]. La entrada viene de un actor
// administrativo pero igual no confiamos en los rangos.
func (p ProductPsychology) Clamp() ProductPsychology {
	p.AppealsToOpenness = ClampScore(p.AppealsToOpenness)
	p.AppealsToConscientiousness = ClampScore(p.AppealsToConscientiousness)
	p.AppealsToExtraversion = ClampScore(p.AppealsToExtraversion)
	p.AppealsToAgreeableness = ClampScore(p.AppealsToAgreeableness)
	p.AppealsToNeuroticism = ClampScore(p.AppealsToNeuroticism)
	p.MianziScore = ClampScore(p.MianziScore)
	p.UbuntuScore = ClampScore(p.UbuntuScore)
	return p
}

// AppealVector arma el vector de 7 dimensiones (cinco rasgos + mianzi +
// ubuntu) que se persiste como columna vector para búsquedas de vecinos.
func (p ProductPsychology) AppealVector() pgvector.Vector {
	return pgvector.NewVector([]float32{
		float32(p.AppealsToOpenness),
		float32(p.AppealsToConscientiousness),
		float32(p.AppealsToExtraversion),
		float32(p.AppealsToAgreeableness),
		float32(p.AppealsToNeuroticism),
		float32(p.MianziScore),
		float32(p.UbuntuScore),
	})
}

// ProductWithPsychology junta producto y su registro psicológico (nil si no existe).
type ProductWithPsychology struct {
	Product    Product            `json:"product"`
	Psychology *ProductPsychology `json:"psychology,omitempty"`
}

// ScoredProduct es una recomendación: producto, score de compra y razón legible.
type ScoredProduct struct {
	Product Product `json:"product"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
}
