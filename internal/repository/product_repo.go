package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"persona-shop/internal/domain"
)

type ProductRepository interface {
	ListPaginated(ctx context.Context, page, limit int, category string) ([]domain.Product, int, error)
	GetByID(ctx context.Context, id int64) (domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	ListActiveWithPsychology(ctx context.Context) ([]domain.ProductWithPsychology, error)
	GetPsychology(ctx context.Context, productID int64) (domain.ProductPsychology, error)
	UpsertPsychology(ctx context.Context, psych domain.ProductPsychology) error
	SimilarByAppeal(ctx context.Context, productID int64, limit int) ([]domain.Product, error)
}

type PgProductRepository struct {
	pool *pgxpool.Pool
}

func NewPgProductRepository(pool *pgxpool.Pool) *PgProductRepository {
	return &PgProductRepository{pool: pool}
}

const productColumns = `id, name, COALESCE(description, ''), price::text, COALESCE(image_url, ''),
	COALESCE(category, ''), stock, is_active, created_at`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.ImageURL,
		&p.Category,
		&p.Stock,
		&p.IsActive,
		&p.CreatedAt,
	)
	return p, err
}

// ListPaginated devuelve la página pedida del catálogo activo más el total,
// opcionalmente filtrada por categoría.
func (r *PgProductRepository) ListPaginated(ctx context.Context, page, limit int, category string) ([]domain.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf(`SELECT %s FROM products WHERE is_active`, productColumns)
	countQuery := `SELECT COUNT(*) FROM products WHERE is_active`
	args := []interface{}{}
	if category != "" {
		query += ` AND category = $1`
		countQuery += ` AND category = $1`
		args = append(args, category)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *PgProductRepository) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (r *PgProductRepository) Categories(ctx context.Context) ([]string, error) {
	const query = `
		SELECT DISTINCT category FROM products
		WHERE is_active AND category IS NOT NULL AND category <> ''
		ORDER BY category
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListActiveWithPsychology trae el catálogo activo junto con su registro
// psicológico vía LEFT JOIN; productos sin registro quedan con Psychology nil.
func (r *PgProductRepository) ListActiveWithPsychology(ctx context.Context) ([]domain.ProductWithPsychology, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			pp.product_id, pp.appeals_to_openness, pp.appeals_to_conscientiousness,
			pp.appeals_to_extraversion, pp.appeals_to_agreeableness, pp.appeals_to_neuroticism,
			pp.mianzi_score, pp.ubuntu_score, pp.tags, pp.updated_at
		FROM products p
		LEFT JOIN product_psychology pp ON pp.product_id = p.id
		WHERE p.is_active
		ORDER BY p.created_at DESC
	`, qualifyProductColumns("p"))

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ProductWithPsychology
	for rows.Next() {
		var (
			item      domain.ProductWithPsychology
			productID *int64
			open      *int
			cons      *int
			extr      *int
			agree     *int
			neuro     *int
			mianzi    *int
			ubuntu    *int
			tags      []string
			updatedAt *time.Time
		)
		p := &item.Product
		err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL,
			&p.Category, &p.Stock, &p.IsActive, &p.CreatedAt,
			&productID, &open, &cons, &extr, &agree, &neuro,
			&mianzi, &ubuntu, &tags, &updatedAt,
		)
		if err != nil {
			return nil, err
		}
		if productID != nil {
			item.Psychology = &domain.ProductPsychology{
				ProductID:                  *productID,
				AppealsToOpenness:          intOrZero(open),
				AppealsToConscientiousness: intOrZero(cons),
				AppealsToExtraversion:      intOrZero(extr),
				AppealsToAgreeableness:     intOrZero(agree),
				AppealsToNeuroticism:       intOrZero(neuro),
				MianziScore:                intOrZero(mianzi),
				UbuntuScore:                intOrZero(ubuntu),
				Tags:                       tags,
			}
			if updatedAt != nil {
				item.Psychology.UpdatedAt = *updatedAt
			}
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *PgProductRepository) GetPsychology(ctx context.Context, productID int64) (domain.ProductPsychology, error) {
	const query = `
		SELECT product_id, appeals_to_openness, appeals_to_conscientiousness,
			appeals_to_extraversion, appeals_to_agreeableness, appeals_to_neuroticism,
			mianzi_score, ubuntu_score, tags, updated_at
		FROM product_psychology
		WHERE product_id = $1
	`
	var psych domain.ProductPsychology
	err := r.pool.QueryRow(ctx, query, productID).Scan(
		&psych.ProductID,
		&psych.AppealsToOpenness,
		&psych.AppealsToConscientiousness,
		&psych.AppealsToExtraversion,
		&psych.AppealsToAgreeableness,
		&psych.AppealsToNeuroticism,
		&psych.MianziScore,
		&psych.UbuntuScore,
		&psych.Tags,
		&psych.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ProductPsychology{}, ErrNotFound
	}
	if err != nil {
		return domain.ProductPsychology{}, err
	}
	return psych, nil
}

// UpsertPsychology escribe el registro psicológico y mantiene appeal_vector
// sincronizado con los scores para las búsquedas de vecinos.
func (r *PgProductRepository) UpsertPsychology(ctx context.Context, psych domain.ProductPsychology) error {
	const query = `
		INSERT INTO product_psychology (
			product_id, appeals_to_openness, appeals_to_conscientiousness,
			appeals_to_extraversion, appeals_to_agreeableness, appeals_to_neuroticism,
			mianzi_score, ubuntu_score, tags, appeal_vector, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (product_id) DO UPDATE SET
			appeals_to_openness = EXCLUDED.appeals_to_openness,
			appeals_to_conscientiousness = EXCLUDED.appeals_to_conscientiousness,
			appeals_to_extraversion = EXCLUDED.appeals_to_extraversion,
			appeals_to_agreeableness = EXCLUDED.appeals_to_agreeableness,
			appeals_to_neuroticism = EXCLUDED.appeals_to_neuroticism,
			mianzi_score = EXCLUDED.mianzi_score,
			ubuntu_score = EXCLUDED.ubuntu_score,
			tags = EXCLUDED.tags,
			appeal_vector = EXCLUDED.appeal_vector,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		psych.ProductID,
		psych.AppealsToOpenness,
		psych.AppealsToConscientiousness,
		psych.AppealsToExtraversion,
		psych.AppealsToAgreeableness,
		psych.AppealsToNeuroticism,
		psych.MianziScore,
		psych.UbuntuScore,
		psych.Tags,
		psych.AppealVector(),
		psych.UpdatedAt,
	)
	return err
}

// SimilarByAppeal devuelve los productos activos más cercanos por distancia
// coseno entre vectores de apelación. El producto base queda fuera del resultado.
func (r *PgProductRepository) SimilarByAppeal(ctx context.Context, productID int64, limit int) ([]domain.Product, error) {
	if limit < 1 || limit > 50 {
		limit = 5
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM product_psychology base
		JOIN product_psychology pp ON pp.product_id <> base.product_id
		JOIN products p ON p.id = pp.product_id AND p.is_active
		WHERE base.product_id = $1
		ORDER BY pp.appeal_vector <=> base.appeal_vector
		LIMIT $2
	`, qualifyProductColumns("p"))

	rows, err := r.pool.Query(ctx, query, productID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func qualifyProductColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.name, COALESCE(%[1]s.description, ''), %[1]s.price::text,
		COALESCE(%[1]s.image_url, ''), COALESCE(%[1]s.category, ''), %[1]s.stock, %[1]s.is_active, %[1]s.created_at`, alias)
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
