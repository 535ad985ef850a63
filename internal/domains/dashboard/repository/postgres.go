package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"novelpedia-backend/internal/aggregate"
	pkgdb "novelpedia-backend/pkg/database"
)

type postgresDashboardRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresDashboardRepository(pool *pgxpool.Pool) DashboardRepository {
	return &postgresDashboardRepository{pool: pool}
}

// Views are windowed by the novel's last_updated, engagement by creation
// time and publishing by the chapter's updated_at.
const performanceQuery = `
	WITH owned AS (
		SELECT id, views, last_updated FROM novels WHERE author_id = $1
	),
	owned_chapters AS (
		SELECT c.id, c.status, c.updated_at
		FROM chapters c JOIN owned o ON o.id = c.novel_id
	),
	owned_reviews AS (
		SELECT r.created_at FROM reviews r JOIN owned o ON o.id = r.novel_id
	),
	owned_comments AS (
		SELECT cm.created_at FROM comments cm
		WHERE cm.chapter_id IN (SELECT id FROM owned_chapters)
		   OR cm.paragraph_id IN (
				SELECT p.id FROM paragraphs p WHERE p.chapter_id IN (SELECT id FROM owned_chapters)
		   )
	),
	engagement AS (
		SELECT created_at FROM owned_reviews
		UNION ALL
		SELECT created_at FROM owned_comments
	)
	SELECT
		(SELECT COALESCE(SUM(views), 0) FROM owned),
		(SELECT COALESCE(SUM(views), 0) FROM owned WHERE last_updated >= $2),
		(SELECT COALESCE(SUM(views), 0) FROM owned WHERE last_updated >= $3 AND last_updated < $2),
		(SELECT COUNT(*) FROM owned_reviews),
		(SELECT COUNT(*) FROM owned_comments),
		(SELECT COUNT(*) FROM engagement WHERE created_at >= $2),
		(SELECT COUNT(*) FROM engagement WHERE created_at >= $3 AND created_at < $2),
		(SELECT COUNT(*) FROM owned_chapters),
		(SELECT COUNT(*) FROM owned_chapters WHERE status = 'published'),
		(SELECT COUNT(*) FROM owned_chapters WHERE status = 'published' AND updated_at >= $2),
		(SELECT COUNT(*) FROM owned_chapters WHERE status = 'published' AND updated_at >= $3 AND updated_at < $2)
`

func (r *postgresDashboardRepository) PerformanceInput(ctx context.Context, authorID uuid.UUID, recent, previous time.Time) (*aggregate.PerformanceInput, error) {
	var in aggregate.PerformanceInput
	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx, performanceQuery, authorID, recent, previous).Scan(
		&in.TotalViews,
		&in.Views.Current,
		&in.Views.Previous,
		&in.TotalReviews,
		&in.TotalComments,
		&in.Engagement.Current,
		&in.Engagement.Previous,
		&in.TotalChapters,
		&in.PublishedChapters,
		&in.Published.Current,
		&in.Published.Previous,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard counts: %w", err)
	}
	return &in, nil
}

func (r *postgresDashboardRepository) Ratings(ctx context.Context, authorID uuid.UUID) ([]decimal.Decimal, error) {
	rows, err := pkgdb.Conn(ctx, r.pool).Query(ctx, `
		SELECT r.rating FROM reviews r
		JOIN novels n ON n.id = r.novel_id
		WHERE n.author_id = $1
	`, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard ratings: %w", err)
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
