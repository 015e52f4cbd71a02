package domain

import "time"

// BehaviorMetric es el agregado por sesión que produce el colector del
// cliente: clicks, scroll, dwell y términos de búsqueda. Vive en el buffer
// de sesión hasta el flush y nunca se comparte entre sesiones.
type BehaviorMetric struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	UserID          string    `json:"user_id,omitempty"`
	AvgClickSpeed   float64   `json:"avg_click_speed"`  // clicks por segundo
	TotalClicks     int       `json:"total_clicks"`
	ImpulsiveClicks int       `json:"impulsive_clicks"` // clicks a <0.5s del anterior
	AvgScrollSpeed  float64   `json:"avg_scroll_speed"` // px por segundo
	MaxScrollDepth  float64   `json:"max_scroll_depth"` // 0-100 por ciento
	AvgDwellTime    float64   `json:"avg_dwell_time"`   // segundos
	PagesVisited    int       `json:"pages_visited"`
	BounceRate      float64   `json:"bounce_rate"` // fracción 0-1
	SearchTerms     []string  `json:"search_terms,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// DedupeSearchTerms elimina duplicados preservando el orden de llegada.
func DedupeSearchTerms(terms []string) []string {
	if len(terms) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
