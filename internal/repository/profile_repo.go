package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"persona-shop/internal/domain"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile domain.PersonalityProfile) error
	GetByUserID(ctx context.Context, userID string) (domain.PersonalityProfile, error)
	Update(ctx context.Context, profile domain.PersonalityProfile) error
}

type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

func (r *PgProfileRepository) Create(ctx context.Context, profile domain.PersonalityProfile) error {
	const query = `
		INSERT INTO personality_profiles (
			id, user_id, openness, conscientiousness, extraversion, agreeableness, neuroticism,
			confidence_score, dominant_trait, cultural_context, consent_given, data_transparency,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.UserID,
		profile.Openness,
		profile.Conscientiousness,
		profile.Extraversion,
		profile.Agreeableness,
		profile.Neuroticism,
		profile.ConfidenceScore,
		dominantOrNil(profile.DominantTrait),
		string(profile.CulturalContext),
		profile.ConsentGiven,
		profile.DataTransparency,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	return err
}

func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.PersonalityProfile, error) {
	const query = `
		SELECT id, user_id, openness, conscientiousness, extraversion, agreeableness, neuroticism,
			confidence_score, dominant_trait, cultural_context, consent_given, data_transparency,
			created_at, updated_at
		FROM personality_profiles
		WHERE user_id = $1
	`
	var (
		profile  domain.PersonalityProfile
		dominant sql.NullString
		cultural string
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Openness,
		&profile.Conscientiousness,
		&profile.Extraversion,
		&profile.Agreeableness,
		&profile.Neuroticism,
		&profile.ConfidenceScore,
		&dominant,
		&cultural,
		&profile.ConsentGiven,
		&profile.DataTransparency,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PersonalityProfile{}, ErrNotFound
	}
	if err != nil {
		return domain.PersonalityProfile{}, err
	}
	if dominant.Valid {
		trait := domain.PersonalityTrait(dominant.String)
		profile.DominantTrait = &trait
	}
	profile.CulturalContext = domain.CulturalContext(cultural)
	return profile, nil
}

func (r *PgProfileRepository) Update(ctx context.Context, profile domain.PersonalityProfile) error {
	const query = `
		UPDATE personality_profiles SET
			openness = $2,
			conscientiousness = $3,
			extraversion = $4,
			agreeableness = $5,
			neuroticism = $6,
			confidence_score = $7,
			dominant_trait = $8,
			cultural_context = $9,
			consent_given = $10,
			data_transparency = $11,
			updated_at = $12
		WHERE user_id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		profile.UserID,
		profile.Openness,
		profile.Conscientiousness,
		profile.Extraversion,
		profile.Agreeableness,
		profile.Neuroticism,
		profile.ConfidenceScore,
		dominantOrNil(profile.DominantTrait),
		string(profile.CulturalContext),
		profile.ConsentGiven,
		profile.DataTransparency,
		profile.UpdatedAt,
	)
	return err
}

func dominantOrNil(trait *domain.PersonalityTrait) interface{} {
	if trait == nil {
		return nil
	}
	return string(*trait)
}
