package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"persona-shop/internal/domain"
)

// SessionMetricsStore guarda el último snapshot de comportamiento por sesión.
// Buffer efímero: TTL acotado, último write gana, nunca compartido entre sesiones.
type SessionMetricsStore interface {
	Save(ctx context.Context, metric domain.BehaviorMetric) error
	Get(ctx context.Context, sessionID string) (domain.BehaviorMetric, bool, error)
}

type memorySessionMetricsStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memoryMetricEntry
}

type memoryMetricEntry struct {
	metric    domain.BehaviorMetric
	expiresAt time.Time
}

// NewMemorySessionMetricsStore es el fallback cuando no hay redis configurado.
func NewMemorySessionMetricsStore(ttl time.Duration) SessionMetricsStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &memorySessionMetricsStore{
		ttl:   ttl,
		items: make(map[string]memoryMetricEntry),
	}
}

func (s *memorySessionMetricsStore) Save(_ context.Context, metric domain.BehaviorMetric) error {
	if strings.TrimSpace(metric.SessionID) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[metric.SessionID] = memoryMetricEntry{
		metric:    metric,
		expiresAt: time.Now().UTC().Add(s.ttl),
	}
	return nil
}

func (s *memorySessionMetricsStore) Get(_ context.Context, sessionID string) (domain.BehaviorMetric, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[sessionID]
	if !ok {
		return domain.BehaviorMetric{}, false, nil
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(s.items, sessionID)
		return domain.BehaviorMetric{}, false, nil
	}
	return entry.metric, true, nil
}

type redisSessionMetricsStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisSessionMetricsStore guarda snapshots serializados bajo
// behavior:sess:<id> con TTL, para que el scorer periódico lea el último
// estado de la sesión sin tocar postgres.
func NewRedisSessionMetricsStore(client *redis.Client, ttl time.Duration) SessionMetricsStore {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &redisSessionMetricsStore{
		client: client,
		ttl:    ttl,
		prefix: "behavior:sess:",
	}
}

func (s *redisSessionMetricsStore) Save(ctx context.Context, metric domain.BehaviorMetric) error {
	if strings.TrimSpace(metric.SessionID) == "" {
		return nil
	}
	payload, err := json.Marshal(metric)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+metric.SessionID, payload, s.ttl).Err()
}

func (s *redisSessionMetricsStore) Get(ctx context.Context, sessionID string) (domain.BehaviorMetric, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	raw, err := s.client.Get(ctx, s.prefix+sessionID).Bytes()
	if err == redis.Nil {
		return domain.BehaviorMetric{}, false, nil
	}
	if err != nil {
		return domain.BehaviorMetric{}, false, err
	}
	var metric domain.BehaviorMetric
	if err := json.Unmarshal(raw, &metric); err != nil {
		return domain.BehaviorMetric{}, false, err
	}
	return metric, true, nil
}
