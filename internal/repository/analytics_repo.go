package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"persona-shop/internal/domain"
)

type AnalyticsRepository interface {
	InsertImpression(ctx context.Context, imp domain.ThemeImpression) error
	InsertConversion(ctx context.Context, ev domain.ConversionEvent) error
	ImpressionsSince(ctx context.Context, cutoff time.Time) ([]domain.ThemeImpression, error)
	ConversionsSince(ctx context.Context, cutoff time.Time) ([]domain.ConversionEvent, error)
}

type PgAnalyticsRepository struct {
	pool *pgxpool.Pool
}

func NewPgAnalyticsRepository(pool *pgxpool.Pool) *PgAnalyticsRepository {
	return &PgAnalyticsRepository{pool: pool}
}

func (r *PgAnalyticsRepository) InsertImpression(ctx context.Context, imp domain.ThemeImpression) error {
	const query = `
		INSERT INTO theme_impressions (
			id, session_id, user_id, theme_variant, personality_trait, page_url, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		imp.ID,
		imp.SessionID,
		nullIfEmpty(imp.UserID),
		imp.ThemeVariant,
		traitOrNil(imp.PersonalityTrait),
		nullIfEmpty(imp.PageURL),
		imp.CreatedAt,
	)
	return err
}

func (r *PgAnalyticsRepository) InsertConversion(ctx context.Context, ev domain.ConversionEvent) error {
	const query = `
		INSERT INTO conversion_events (
			id, session_id, user_id, theme_variant, personality_trait, event_type,
			product_id, value, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		ev.ID,
		ev.SessionID,
		nullIfEmpty(ev.UserID),
		ev.ThemeVariant,
		traitOrNil(ev.PersonalityTrait),
		string(ev.EventType),
		ev.ProductID,
		ev.Value,
		ev.CreatedAt,
	)
	return err
}

func (r *PgAnalyticsRepository) ImpressionsSince(ctx context.Context, cutoff time.Time) ([]domain.ThemeImpression, error) {
	const query = `
		SELECT id, session_id, COALESCE(user_id, ''), theme_variant, personality_trait,
			COALESCE(page_url, ''), created_at
		FROM theme_impressions
		WHERE created_at >= $1
	`
	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ThemeImpression
	for rows.Next() {
		var (
			imp   domain.ThemeImpression
			trait sql.NullString
		)
		err := rows.Scan(
			&imp.ID,
			&imp.SessionID,
			&imp.UserID,
			&imp.ThemeVariant,
			&trait,
			&imp.PageURL,
			&imp.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if trait.Valid {
			t := domain.PersonalityTrait(trait.String)
			imp.PersonalityTrait = &t
		}
		out = append(out, imp)
	}
	return out, rows.Err()
}

func (r *PgAnalyticsRepository) ConversionsSince(ctx context.Context, cutoff time.Time) ([]domain.ConversionEvent, error) {
	const query = `
		SELECT id, session_id, COALESCE(user_id, ''), theme_variant, personality_trait,
			event_type, product_id, value, created_at
		FROM conversion_events
		WHERE created_at >= $1
	`
	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ConversionEvent
	for rows.Next() {
		var (
			ev        domain.ConversionEvent
			trait     sql.NullString
			eventType string
		)
		err := rows.Scan(
			&ev.ID,
			&ev.SessionID,
			&ev.UserID,
			&ev.ThemeVariant,
			&trait,
			&eventType,
			&ev.ProductID,
			&ev.Value,
			&ev.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if trait.Valid {
			t := domain.PersonalityTrait(trait.String)
			ev.PersonalityTrait = &t
		}
		ev.EventType = domain.ConversionEventType(eventType)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func traitOrNil(trait *domain.PersonalityTrait) interface{} {
	if trait == nil {
		return nil
	}
	return string(*trait)
}
