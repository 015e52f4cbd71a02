package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"persona-shop/internal/domain"
	"persona-shop/internal/repository"
)

// ErrMissingRequiredFields se devuelve cuando un evento llega sin sessionId
// o themeVariant: sin ellos no hay atribución posible.
var ErrMissingRequiredFields = errors.New("session_id and theme_variant are required")

const defaultReportDays = 30

// AnalyticsService registra impresiones/conversiones del experimento de
// temas y calcula los reportes de conversión. Escrituras append-only;
// las lecturas agregan sobre los eventos de la ventana pedida.
type AnalyticsService struct {
	events repository.AnalyticsRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewAnalyticsService(events repository.AnalyticsRepository, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// TrackImpression registra que una variante se mostró. Inserción pura: no
// hay validación más allá de los campos obligatorios.
func (s *AnalyticsService) TrackImpression(ctx context.Context, imp domain.ThemeImpression) error {
	if imp.SessionID == "" || imp.ThemeVariant == "" {
		return ErrMissingRequiredFields
	}
	if imp.ID == "" {
		imp.ID = uuid.NewString()
	}
	if imp.CreatedAt.IsZero() {
		imp.CreatedAt = s.now()
	}
	if err := s.events.InsertImpression(ctx, imp); err != nil {
		return fmt.Errorf("insert theme impression: %w", err)
	}
	return nil
}

// TrackConversion registra un evento de conversión atribuible a una variante.
func (s *AnalyticsService) TrackConversion(ctx context.Context, ev domain.ConversionEvent) error {
	if ev.SessionID == "" || ev.ThemeVariant == "" {
		return ErrMissingRequiredFields
	}
	switch ev.EventType {
	case domain.EventViewProduct, domain.EventAddToCart, domain.EventPurchase:
	default:
		return fmt.Errorf("unknown conversion event type %q", ev.EventType)
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = s.now()
	}
	if err := s.events.InsertConversion(ctx, ev); err != nil {
		return fmt.Errorf("insert conversion event: %w", err)
	}
	return nil
}

type sessionVariant struct {
	sessionID    string
	themeVariant string
}

// ThemePerformance agrupa las impresiones de la ventana por variante y les
// atribuye compras unidas por (session_id, theme_variant). Variantes sin
// impresiones reportan tasa 0, nunca división por cero.
func (s *AnalyticsService) ThemePerformance(ctx context.Context, days int) ([]domain.ThemePerformance, error) {
	impressions, conversions, err := s.eventsInWindow(ctx, days)
	if err != nil {
		return nil, err
	}

	impressionsByVariant := make(map[string]int)
	seenPairs := make(map[sessionVariant]struct{})
	for _, imp := range impressions {
		impressionsByVariant[imp.ThemeVariant]++
		seenPairs[sessionVariant{imp.SessionID, imp.ThemeVariant}] = struct{}{}
	}

	conversionsByVariant := make(map[string]int)
	valueSumByVariant := make(map[string]float64)
	valueCountByVariant := make(map[string]int)
	for _, ev := range conversions {
		if ev.EventType != domain.EventPurchase {
			continue
		}
		if _, ok := seenPairs[sessionVariant{ev.SessionID, ev.ThemeVariant}]; !ok {
			continue
		}
		conversionsByVariant[ev.ThemeVariant]++
		if ev.Value != nil {
			valueSumByVariant[ev.ThemeVariant] += *ev.Value
			valueCountByVariant[ev.ThemeVariant]++
		}
	}

	out := make([]domain.ThemePerformance, 0, len(impressionsByVariant))
	for variant, imps := range impressionsByVariant {
		convs := conversionsByVariant[variant]
		row := domain.ThemePerformance{
			ThemeVariant: variant,
			Impressions:  imps,
			Conversions:  convs,
		}
		if imps > 0 {
			row.ConversionRate = round2(float64(convs) * 100 / float64(imps))
		}
		if n := valueCountByVariant[variant]; n > 0 {
			row.AvgValue = round2(valueSumByVariant[variant] / float64(n))
		}
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ConversionRate != out[j].ConversionRate {
			return out[i].ConversionRate > out[j].ConversionRate
		}
		return out[i].ThemeVariant < out[j].ThemeVariant
	})
	return out, nil
}

// PersonalityThemeBreakdown desglosa por (rasgo, variante), excluyendo
// impresiones sin rasgo. Acá la conversión es más laxa: cuentan también los
// add_to_cart, porque a nivel de rasgo interesa la intención, no solo la compra.
func (s *AnalyticsService) PersonalityThemeBreakdown(ctx context.Context, days int) ([]domain.PersonalityThemePerformance, error) {
	impressions, conversions, err := s.eventsInWindow(ctx, days)
	if err != nil {
		return nil, err
	}

	type traitVariant struct {
		trait   domain.PersonalityTrait
		variant string
	}

	impressionsByGroup := make(map[traitVariant]int)
	sessionsByGroup := make(map[traitVariant]map[string]struct{})
	for _, imp := range impressions {
		if imp.PersonalityTrait == nil {
			continue
		}
		key := traitVariant{*imp.PersonalityTrait, imp.ThemeVariant}
		impressionsByGroup[key]++
		if sessionsByGroup[key] == nil {
			sessionsByGroup[key] = make(map[string]struct{})
		}
		sessionsByGroup[key][imp.SessionID] = struct{}{}
	}

	conversionsByGroup := make(map[traitVariant]int)
	for _, ev := range conversions {
		if ev.EventType != domain.EventAddToCart && ev.EventType != domain.EventPurchase {
			continue
		}
		for key, sessions := range sessionsByGroup {
			if key.variant != ev.ThemeVariant {
				continue
			}
			if _, ok := sessions[ev.SessionID]; ok {
				conversionsByGroup[key]++
			}
		}
	}

	out := make([]domain.PersonalityThemePerformance, 0, len(impressionsByGroup))
	for key, imps := range impressionsByGroup {
		convs := conversionsByGroup[key]
		row := domain.PersonalityThemePerformance{
			PersonalityTrait: key.trait,
			ThemeVariant:     key.variant,
			Impressions:      imps,
			Conversions:      convs,
		}
		if imps > 0 {
			row.ConversionRate = round2(float64(convs) * 100 / float64(imps))
		}
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PersonalityTrait != out[j].PersonalityTrait {
			return out[i].PersonalityTrait < out[j].PersonalityTrait
		}
		if out[i].ConversionRate != out[j].ConversionRate {
			return out[i].ConversionRate > out[j].ConversionRate
		}
		return out[i].ThemeVariant < out[j].ThemeVariant
	})
	return out, nil
}

func (s *AnalyticsService) eventsInWindow(ctx context.Context, days int) ([]domain.ThemeImpression, []domain.ConversionEvent, error) {
	if days <= 0 {
		days = defaultReportDays
	}
	cutoff := s.now().AddDate(0, 0, -days)

	impressions, err := s.events.ImpressionsSince(ctx, cutoff)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch impressions: %w", err)
	}
	conversions, err := s.events.ConversionsSince(ctx, cutoff)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch conversions: %w", err)
	}
	return impressions, conversions, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
