package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"novelpedia-backend/internal/domains/review/model"
	"novelpedia-backend/internal/infrastructure/database"
	pkgdb "novelpedia-backend/pkg/database"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================

const reviewColumns = `
	r.id, r.novel_id, n.author_id, r.user_id, u.name,
	r.rating, r.comment, r.created_at, r.updated_at`

const reviewFrom = `
	FROM reviews r
	JOIN novels n ON n.id = r.novel_id
	JOIN users u ON u.id = r.user_id`

type postgresReviewRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresReviewRepository(pool *pgxpool.Pool) ReviewRepository {
	return &postgresReviewRepository{pool: pool}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanReview(row scanner) (*model.Review, error) {
	review := &model.Review{}
	err := row.Scan(
		&review.ID,
		&review.NovelID,
		&review.NovelAuthorID,
		&review.UserID,
		&review.UserName,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return review, nil
}

// =====================================================
// CREATE
// =====================================================

func (r *postgresReviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (novel_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx, query,
		review.NovelID,
		review.UserID,
		review.Rating,
		review.Comment,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

// =====================================================
// GET BY ID
// =====================================================

func (r *postgresReviewRepository) GetByID(ctx context.Context, id int64) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + reviewFrom + ` WHERE r.id = $1`

	review, err := scanReview(pkgdb.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, model.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return review, nil
}

// =====================================================
// UPDATE / DELETE
// =====================================================

func (r *postgresReviewRepository) Update(ctx context.Context, review *model.Review) error {
	query := `
		UPDATE reviews SET rating = $2, comment = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx, query, review.ID, review.Rating, review.Comment).
		Scan(&review.UpdatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return model.ErrReviewNotFound
		}
		return fmt.Errorf("failed to update review: %w", err)
	}

	return nil
}

func (r *postgresReviewRepository) Delete(ctx context.Context, id int64) error {
	result, err := pkgdb.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrReviewNotFound
	}

	return nil
}

// =====================================================
// LIST
// =====================================================

func (r *postgresReviewRepository) List(ctx context.Context, req model.ListReviewsRequest) ([]model.Review, int, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if req.NovelID != nil {
		add("r.novel_id = $%d", *req.NovelID)
	}
	if req.UserID != nil {
		add("r.user_id = $%d", *req.UserID)
	}
	if req.Search != "" {
		add("(r.comment ILIKE '%%' || $%[1]d || '%%' OR u.name ILIKE '%%' || $%[1]d || '%%' OR n.title ILIKE '%%' || $%[1]d || '%%')", req.Search)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	conn := pkgdb.Conn(ctx, r.pool)

	// Get total count
	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*)`+reviewFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	// Get reviews
	query := fmt.Sprintf(`SELECT %s %s %s ORDER BY %s, r.id DESC LIMIT $%d OFFSET $%d`,
		reviewColumns, reviewFrom, where, model.OrderingColumns[req.Ordering], len(args)+1, len(args)+2)
	args = append(args, req.Limit, req.Offset())

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, *review)
	}

	return reviews, total, rows.Err()
}

// =====================================================
// NOVEL AGGREGATE
// =====================================================

func (r *postgresReviewRepository) LockNovel(ctx context.Context, novelID int64) error {
	var id int64
	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id FROM novels WHERE id = $1 FOR UPDATE`, novelID,
	).Scan(&id)
	if err != nil {
		if database.IsNoRows(err) {
			return model.ErrNovelNotFound
		}
		return fmt.Errorf("failed to lock novel: %w", err)
	}
	return nil
}

func (r *postgresReviewRepository) Ratings(ctx context.Context, novelID int64) ([]decimal.Decimal, error) {
	rows, err := pkgdb.Conn(ctx, r.pool).Query(ctx,
		`SELECT rating FROM reviews WHERE novel_id = $1`, novelID)
	if err != nil {
		return nil, fmt.Errorf("failed to read ratings: %w", err)
	}
	defer rows.Close()

	ratings := []decimal.Decimal{}
	for rows.Next() {
		var d decimal.Decimal
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		ratings = append(ratings, d)
	}
	return ratings, rows.Err()
}

func (r *postgresReviewRepository) SetNovelRating(ctx context.Context, novelID int64, rating decimal.Decimal, count int) error {
	_, err := pkgdb.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE novels SET rating = $2, reviews_count = $3 WHERE id = $1`, novelID, rating, count)
	if err != nil {
		return fmt.Errorf("failed to write novel rating: %w", err)
	}
	return nil
}
