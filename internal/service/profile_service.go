package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"persona-shop/internal/domain"
	"persona-shop/internal/repository"
)

const (
	// Pesos base observados por sitio de llamada: el texto de búsqueda pesa
	// menos que un snapshot de comportamiento acumulado en la sesión.
	searchMergeWeight   = 0.2
	behaviorMergeWeight = 0.3

	// Confianza fija para insights derivados de heurísticas de comportamiento.
	behaviorConfidence = 40

	behaviorReasoning = "Davranış metriklerinden çıkarım"
)

// ProfileService es el dueño exclusivo de la mutación de perfiles: merge de
// insights, snapshots de comportamiento y consentimiento.
type ProfileService struct {
	profiles  repository.ProfileRepository
	behaviors repository.BehaviorRepository
	sessions  SessionMetricsStore
	analyzer  *TextAnalyzer
	logger    *zap.Logger
}

func NewProfileService(
	profiles repository.ProfileRepository,
	behaviors repository.BehaviorRepository,
	sessions SessionMetricsStore,
	analyzer *TextAnalyzer,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		profiles:  profiles,
		behaviors: behaviors,
		sessions:  sessions,
		analyzer:  analyzer,
		logger:    logger,
	}
}

// GetOrCreate devuelve el perfil del usuario, creándolo perezosamente con
// defaults neutros en el primer acceso. Idempotente: dos llamadas para un
// usuario nuevo devuelven el mismo perfil sin duplicar filas.
func (s *ProfileService) GetOrCreate(ctx context.Context, userID string) (domain.PersonalityProfile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.PersonalityProfile{}, fmt.Errorf("get profile for user %s: %w", userID, err)
	}

	now := time.Now().UTC()
	fresh := domain.NewDefaultProfile(uuid.NewString(), userID, now)
	if err := s.profiles.Create(ctx, fresh); err != nil {
		// Carrera contra otra request del mismo usuario: el perfil ya existe.
		existing, getErr := s.profiles.GetByUserID(ctx, userID)
		if getErr == nil {
			return existing, nil
		}
		return domain.PersonalityProfile{}, fmt.Errorf("create profile for user %s: %w", userID, err)
	}
	return fresh, nil
}

// SearchAnalysisResult junta los insights crudos con el perfil ya mergeado.
type SearchAnalysisResult struct {
	Insights       domain.PersonalityInsights `json:"insights"`
	UpdatedProfile domain.PersonalityProfile  `json:"updated_profile"`
}

// AnalyzeAndMergeSearchQuery analiza el texto de búsqueda y pliega los
// insights sobre el perfil persistido. La falla del LLM nunca llega acá: el
// analizador degrada solo a su heurística local.
func (s *ProfileService) AnalyzeAndMergeSearchQuery(ctx context.Context, userID, query string) (SearchAnalysisResult, error) {
	insights := s.analyzer.AnalyzeText(ctx, query)

	profile, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return SearchAnalysisResult{}, err
	}

	merged := MergeInsights(profile, insights, searchMergeWeight)
	merged.UpdatedAt = time.Now().UTC()

	if err := s.profiles.Update(ctx, merged); err != nil {
		return SearchAnalysisResult{}, fmt.Errorf("update profile for user %s: %w", userID, err)
	}

	return SearchAnalysisResult{Insights: insights, UpdatedProfile: merged}, nil
}

// RecordBehaviorSnapshot persiste un flush del colector, actualiza el buffer
// de sesión y, si la sesión tiene usuario, pliega la evidencia heurística
// sobre su perfil con confianza baja.
func (s *ProfileService) RecordBehaviorSnapshot(ctx context.Context, metric domain.BehaviorMetric) error {
	metric.SearchTerms = domain.DedupeSearchTerms(metric.SearchTerms)
	if metric.ID == "" {
		metric.ID = uuid.NewString()
	}
	if metric.CreatedAt.IsZero() {
		metric.CreatedAt = time.Now().UTC()
	}

	if err := s.behaviors.Insert(ctx, metric); err != nil {
		return fmt.Errorf("insert behavior metric: %w", err)
	}

	if s.sessions != nil {
		if err := s.sessions.Save(ctx, metric); err != nil {
			s.logger.Warn("session metrics buffer save failed", zap.Error(err), zap.String("session_id", metric.SessionID))
		}
	}

	if metric.UserID == "" {
		return nil
	}

	overrides := ScoreBehavior(metric).Merge(ScoreSearchTerms(metric.SearchTerms))
	if overrides.IsEmpty() {
		return nil
	}

	profile, err := s.GetOrCreate(ctx, metric.UserID)
	if err != nil {
		return err
	}

	merged := MergeInsights(profile, overrides.AsInsights(profile, behaviorConfidence, behaviorReasoning), behaviorMergeWeight)
	merged.UpdatedAt = time.Now().UTC()
	if err := s.profiles.Update(ctx, merged); err != nil {
		return fmt.Errorf("update profile for user %s: %w", metric.UserID, err)
	}
	return nil
}

// SessionSnapshot devuelve el último snapshot de la sesión para la vista de
// transparencia de datos: primero el buffer efímero, después el log durable.
func (s *ProfileService) SessionSnapshot(ctx context.Context, sessionID string) (domain.BehaviorMetric, error) {
	if s.sessions != nil {
		metric, ok, err := s.sessions.Get(ctx, sessionID)
		if err != nil {
			s.logger.Warn("session metrics buffer read failed", zap.Error(err), zap.String("session_id", sessionID))
		} else if ok {
			return metric, nil
		}
	}
	return s.behaviors.LatestBySession(ctx, sessionID)
}

// UpdateConsent registra la decisión de consentimiento del usuario.
func (s *ProfileService) UpdateConsent(ctx context.Context, userID string, consent bool) (domain.PersonalityProfile, error) {
	profile, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.PersonalityProfile{}, err
	}

	profile.ConsentGiven = consent
	profile.UpdatedAt = time.Now().UTC()
	if err := s.profiles.Update(ctx, profile); err != nil {
		return domain.PersonalityProfile{}, fmt.Errorf("update consent for user %s: %w", userID, err)
	}
	return profile, nil
}
