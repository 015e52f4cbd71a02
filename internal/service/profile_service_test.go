package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"persona-shop/internal/domain"
	"persona-shop/internal/llm"
	"persona-shop/internal/repository"
)

type mockProfileRepo struct {
	byUserID    map[string]domain.PersonalityProfile
	createErr   error
	getErr      error
	updateErr   error
	createCalls int
	updateCalls int
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{byUserID: make(map[string]domain.PersonalityProfile)}
}

func (m *mockProfileRepo) Create(ctx context.Context, profile domain.PersonalityProfile) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	m.byUserID[profile.UserID] = profile
	return nil
}

func (m *mockProfileRepo) GetByUserID(ctx context.Context, userID string) (domain.PersonalityProfile, error) {
	if m.getErr != nil {
		return domain.PersonalityProfile{}, m.getErr
	}
	profile, ok := m.byUserID[userID]
	if !ok {
		return domain.PersonalityProfile{}, repository.ErrNotFound
	}
	return profile, nil
}

func (m *mockProfileRepo) Update(ctx context.Context, profile domain.PersonalityProfile) error {
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	m.byUserID[profile.UserID] = profile
	return nil
}

type mockBehaviorRepo struct {
	inserted []domain.BehaviorMetric
	err      error
}

func (m *mockBehaviorRepo) Insert(ctx context.Context, metric domain.BehaviorMetric) error {
	if m.err != nil {
		return m.err
	}
	m.inserted = append(m.inserted, metric)
	return nil
}

func (m *mockBehaviorRepo) LatestBySession(ctx context.Context, sessionID string) (domain.BehaviorMetric, error) {
	for i := len(m.inserted) - 1; i >= 0; i-- {
		if m.inserted[i].SessionID == sessionID {
			return m.inserted[i], nil
		}
	}
	return domain.BehaviorMetric{}, repository.ErrNotFound
}

func newTestProfileService(profiles *mockProfileRepo, behaviors *mockBehaviorRepo) *ProfileService {
	analyzer := NewTextAnalyzer(nil, time.Second, zap.NewNop())
	return NewProfileService(profiles, behaviors, NewMemorySessionMetricsStore(time.Minute), analyzer, zap.NewNop())
}

func TestGetOrCreateReturnsNeutralDefaults(t *testing.T) {
	profiles := newMockProfileRepo()
	svc := newTestProfileService(profiles, &mockBehaviorRepo{})

	profile, err := svc.GetOrCreate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if profile.Openness != 50 || profile.Neuroticism != 50 {
		t.Fatalf("expected neutral scores, got %+v", profile)
	}
	if profile.ConfidenceScore != 0 {
		t.Fatalf("expected confidence 0, got %d", profile.ConfidenceScore)
	}
	if profile.CulturalContext != domain.CulturalWestern {
		t.Fatalf("expected western context, got %s", profile.CulturalContext)
	}
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	profiles := newMockProfileRepo()
	svc := newTestProfileService(profiles, &mockBehaviorRepo{})

	first, err := svc.GetOrCreate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.GetOrCreate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same profile, got %s and %s", first.ID, second.ID)
	}
	if profiles.createCalls != 1 {
		t.Fatalf("expected one create, got %d", profiles.createCalls)
	}
}

func TestGetOrCreateRecoversFromCreateRace(t *testing.T) {
	profiles := newMockProfileRepo()
	profiles.byUserID["u1"] = domain.NewDefaultProfile("existing", "u1", testTime())
	// Simula la carrera: el primer Get no lo vio pero el Create choca.
	profiles.createErr = errors.New("duplicate key")
	svc := newTestProfileService(profiles, &mockBehaviorRepo{})

	profile, err := svc.GetOrCreate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected race to resolve, got %v", err)
	}
	if profile.ID != "existing" {
		t.Fatalf("expected existing profile, got %s", profile.ID)
	}
}

func TestGetOrCreatePropagatesStorageFailure(t *testing.T) {
	profiles := newMockProfileRepo()
	profiles.getErr = errors.New("connection refused")
	svc := newTestProfileService(profiles, &mockBehaviorRepo{})

	if _, err := svc.GetOrCreate(context.Background(), "u1"); err == nil {
		t.Fatalf("expected error when storage is down")
	}
}

func TestAnalyzeAndMergeSearchQueryUpdatesProfile(t *testing.T) {
	profiles := newMockProfileRepo()
	analyzer := NewTextAnalyzer(&llm.MockClient{
		Response: `{"openness": 90, "conscientiousness": 50, "extraversion": 50, "agreeableness": 50, "neuroticism": 50, "confidence": 100, "reasoning": "meraklı"}`,
	}, time.Second, zap.NewNop())
	svc := NewProfileService(profiles, &mockBehaviorRepo{}, nil, analyzer, zap.NewNop())

	result, err := svc.AnalyzeAndMergeSearchQuery(context.Background(), "u1", "yeni çıkan akıllı saatler hakkında her şey")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// peso búsqueda 0.2 × conf 1.0 → 50×0.8 + 90×0.2 = 58
	if result.UpdatedProfile.Openness != 58 {
		t.Fatalf("expected openness 58, got %d", result.UpdatedProfile.Openness)
	}
	if result.Insights.Openness != 90 {
		t.Fatalf("expected raw insights openness 90, got %d", result.Insights.Openness)
	}
	if profiles.updateCalls != 1 {
		t.Fatalf("expected one update, got %d", profiles.updateCalls)
	}
}

func TestAnalyzeAndMergeSearchQueryLLMFailureStillSucceeds(t *testing.T) {
	profiles := newMockProfileRepo()
	analyzer := NewTextAnalyzer(&llm.MockClient{Err: errors.New("503")}, time.Second, zap.NewNop())
	svc := NewProfileService(profiles, &mockBehaviorRepo{}, nil, analyzer, zap.NewNop())

	result, err := svc.AnalyzeAndMergeSearchQuery(context.Background(), "u1", "arkadaş için hediye fikirleri")
	if err != nil {
		t.Fatalf("llm failure must not surface, got %v", err)
	}
	if result.Insights.Confidence != 30 {
		t.Fatalf("expected degraded confidence 30, got %d", result.Insights.Confidence)
	}
}

func TestRecordBehaviorSnapshotAnonymousSessionSkipsProfile(t *testing.T) {
	profiles := newMockProfileRepo()
	behaviors := &mockBehaviorRepo{}
	svc := newTestProfileService(profiles, behaviors)

	err := svc.RecordBehaviorSnapshot(context.Background(), domain.BehaviorMetric{
		SessionID:     "s1",
		AvgClickSpeed: 2.5,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(behaviors.inserted) != 1 {
		t.Fatalf("expected metric persisted, got %d", len(behaviors.inserted))
	}
	if profiles.createCalls != 0 || profiles.updateCalls != 0 {
		t.Fatalf("anonymous session must not touch profiles")
	}
}

func TestRecordBehaviorSnapshotMergesIntoProfile(t *testing.T) {
	profiles := newMockProfileRepo()
	behaviors := &mockBehaviorRepo{}
	svc := newTestProfileService(profiles, behaviors)

	err := svc.RecordBehaviorSnapshot(context.Background(), domain.BehaviorMetric{
		SessionID:     "s1",
		UserID:        "u1",
		AvgClickSpeed: 2.5,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	profile := profiles.byUserID["u1"]
	// extr 75 con confianza 40 y peso 0.3 → 50×0.88 + 75×0.12 = 53
	if profile.Extraversion != 53 {
		t.Fatalf("expected extraversion 53, got %d", profile.Extraversion)
	}
	if profile.ConfidenceScore != 4 {
		t.Fatalf("expected confidence 4, got %d", profile.ConfidenceScore)
	}
}

func TestRecordBehaviorSnapshotAllZeroMetricsNoProfileWrite(t *testing.T) {
	profiles := newMockProfileRepo()
	behaviors := &mockBehaviorRepo{}
	svc := newTestProfileService(profiles, behaviors)

	err := svc.RecordBehaviorSnapshot(context.Background(), domain.BehaviorMetric{
		SessionID: "s1",
		UserID:    "u1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(behaviors.inserted) != 1 {
		t.Fatalf("expected metric persisted even without signal")
	}
	if profiles.updateCalls != 0 {
		t.Fatalf("all-zero metrics must not update the profile")
	}
}

func TestRecordBehaviorSnapshotInsertFailureIsHard(t *testing.T) {
	profiles := newMockProfileRepo()
	behaviors := &mockBehaviorRepo{err: errors.New("db down")}
	svc := newTestProfileService(profiles, behaviors)

	err := svc.RecordBehaviorSnapshot(context.Background(), domain.BehaviorMetric{SessionID: "s1"})
	if err == nil {
		t.Fatalf("expected hard failure when insert fails")
	}
}

func TestRecordBehaviorSnapshotDedupesSearchTerms(t *testing.T) {
	profiles := newMockProfileRepo()
	behaviors := &mockBehaviorRepo{}
	svc := newTestProfileService(profiles, behaviors)

	err := svc.RecordBehaviorSnapshot(context.Background(), domain.BehaviorMetric{
		SessionID:   "s1",
		SearchTerms: []string{"tv", "tv", "", "laptop"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got := behaviors.inserted[0].SearchTerms
	if len(got) != 2 || got[0] != "tv" || got[1] != "laptop" {
		t.Fatalf("expected deduped terms, got %v", got)
	}
}

func TestSessionSnapshotPrefersBuffer(t *testing.T) {
	profiles := newMockProfileRepo()
	behaviors := &mockBehaviorRepo{inserted: []domain.BehaviorMetric{
		{SessionID: "s1", PagesVisited: 1},
	}}
	store := NewMemorySessionMetricsStore(time.Minute)
	store.Save(context.Background(), domain.BehaviorMetric{SessionID: "s1", PagesVisited: 9})
	analyzer := NewTextAnalyzer(nil, time.Second, zap.NewNop())
	svc := NewProfileService(profiles, behaviors, store, analyzer, zap.NewNop())

	got, err := svc.SessionSnapshot(context.Background(), "s1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.PagesVisited != 9 {
		t.Fatalf("expected buffered snapshot, got %+v", got)
	}
}

func TestSessionSnapshotFallsBackToDurableLog(t *testing.T) {
	profiles := newMockProfileRepo()
	behaviors := &mockBehaviorRepo{inserted: []domain.BehaviorMetric{
		{SessionID: "s1", PagesVisited: 3},
	}}
	svc := newTestProfileService(profiles, behaviors)

	got, err := svc.SessionSnapshot(context.Background(), "s1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.PagesVisited != 3 {
		t.Fatalf("expected durable snapshot, got %+v", got)
	}
}

func TestSessionSnapshotUnknownSession(t *testing.T) {
	svc := newTestProfileService(newMockProfileRepo(), &mockBehaviorRepo{})

	if _, err := svc.SessionSnapshot(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateConsent(t *testing.T) {
	profiles := newMockProfileRepo()
	svc := newTestProfileService(profiles, &mockBehaviorRepo{})

	profile, err := svc.UpdateConsent(context.Background(), "u1", true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !profile.ConsentGiven {
		t.Fatalf("expected consent recorded")
	}
	if !profiles.byUserID["u1"].ConsentGiven {
		t.Fatalf("expected consent persisted")
	}
}
