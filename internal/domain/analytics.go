package domain

import "time"

// ConversionEventType clasifica los eventos de conversión.
type ConversionEventType string

const (
	EventViewProduct ConversionEventType = "view_product"
	EventAddToCart   ConversionEventType = "add_to_cart"
	EventPurchase    ConversionEventType = "purchase"
)

// ThemeImpression registra que una variante de tema se mostró en una sesión.
// Log append-only: nada se muta después de crearse.
type ThemeImpression struct {
	ID               string            `json:"id"`
	SessionID        string            `json:"session_id"`
	UserID           string            `json:"user_id,omitempty"`
	ThemeVariant     string            `json:"theme_variant"`
	PersonalityTrait *PersonalityTrait `json:"personality_trait,omitempty"`
	PageURL          string            `json:"page_url,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

// ConversionEvent registra una conversión atribuible a una variante de tema.
// Se une a impresiones por (session_id, theme_variant) dentro de la ventana.
type ConversionEvent struct {
	ID               string              `json:"id"`
	SessionID        string              `json:"session_id"`
	UserID           string              `json:"user_id,omitempty"`
	ThemeVariant     string              `json:"theme_variant"`
	PersonalityTrait *PersonalityTrait   `json:"personality_trait,omitempty"`
	EventType        ConversionEventType `json:"event_type"`
	ProductID        *int64              `json:"product_id,omitempty"`
	Value            *float64            `json:"value,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
}

// ThemePerformance es una fila del reporte por variante.
type ThemePerformance struct {
	ThemeVariant   string  `json:"theme_variant"`
	Impressions    int     `json:"impressions"`
	Conversions    int     `json:"conversions"`
	ConversionRate float64 `json:"conversion_rate"` // porcentaje
	AvgValue       float64 `json:"avg_value"`
}

// PersonalityThemePerformance es una fila del desglose (rasgo, variante).
type PersonalityThemePerformance struct {
	PersonalityTrait PersonalityTrait `json:"personality_trait"`
	ThemeVariant     string           `json:"theme_variant"`
	Impressions      int              `json:"impressions"`
	Conversions      int              `json:"conversions"`
	ConversionRate   float64          `json:"conversion_rate"`
}
