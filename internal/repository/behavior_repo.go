package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"persona-shop/internal/domain"
)

type BehaviorRepository interface {
	Insert(ctx context.Context, metric domain.BehaviorMetric) error
	LatestBySession(ctx context.Context, sessionID string) (domain.BehaviorMetric, error)
}

type PgBehaviorRepository struct {
	pool *pgxpool.Pool
}

func NewPgBehaviorRepository(pool *pgxpool.Pool) *PgBehaviorRepository {
	return &PgBehaviorRepository{pool: pool}
}

func (r *PgBehaviorRepository) Insert(ctx context.Context, metric domain.BehaviorMetric) error {
	const query = `
		INSERT INTO behavior_metrics (
			id, session_id, user_id, avg_click_speed, total_clicks, impulsive_clicks,
			avg_scroll_speed, max_scroll_depth, avg_dwell_time, pages_visited, bounce_rate,
			search_terms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.pool.Exec(ctx, query,
		metric.ID,
		metric.SessionID,
		nullIfEmpty(metric.UserID),
		metric.AvgClickSpeed,
		metric.TotalClicks,
		metric.ImpulsiveClicks,
		metric.AvgScrollSpeed,
		metric.MaxScrollDepth,
		metric.AvgDwellTime,
		metric.PagesVisited,
		metric.BounceRate,
		metric.SearchTerms,
		metric.CreatedAt,
	)
	return err
}

// LatestBySession devuelve el snapshot más reciente de la sesión.
func (r *PgBehaviorRepository) LatestBySession(ctx context.Context, sessionID string) (domain.BehaviorMetric, error) {
	const query = `
		SELECT id, session_id, COALESCE(user_id, ''), avg_click_speed, total_clicks, impulsive_clicks,
			avg_scroll_speed, max_scroll_depth, avg_dwell_time, pages_visited, bounce_rate,
			search_terms, created_at
		FROM behavior_metrics
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var metric domain.BehaviorMetric
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&metric.ID,
		&metric.SessionID,
		&metric.UserID,
		&metric.AvgClickSpeed,
		&metric.TotalClicks,
		&metric.ImpulsiveClicks,
		&metric.AvgScrollSpeed,
		&metric.MaxScrollDepth,
		&metric.AvgDwellTime,
		&metric.PagesVisited,
		&metric.BounceRate,
		&metric.SearchTerms,
		&metric.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.BehaviorMetric{}, ErrNotFound
	}
	if err != nil {
		return domain.BehaviorMetric{}, err
	}
	return metric, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
