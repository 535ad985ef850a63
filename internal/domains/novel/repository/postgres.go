package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	catalog "novelpedia-backend/internal/domains/catalog/model"
	"novelpedia-backend/internal/domains/novel/model"
	"novelpedia-backend/internal/infrastructure/database"
	pkgdb "novelpedia-backend/pkg/database"
)

const constraintNovelsSlug = "novels_slug_key"

const novelColumns = `
	n.id, n.title, n.slug, n.synopsis, n.short_synopsis, n.author_id, u.name,
	n.cover_image, n.cover_image_large, n.primary_genre_id, g.name,
	n.target_audience, n.language, n.update_schedule, n.planned_length, n.maturity_rating,
	n.status, n.views, n.likes, n.collections, n.reviews_count, n.rating,
	n.created_at, n.last_updated`

const novelFrom = `
	FROM novels n
	JOIN users u ON u.id = n.author_id
	LEFT JOIN genres g ON g.id = n.primary_genre_id`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// =====================================================
// CRUD
// =====================================================

func (r *postgresRepository) Create(ctx context.Context, n *model.Novel) error {
	query := `
		INSERT INTO novels (
			title, slug, synopsis, short_synopsis, author_id, primary_genre_id,
			target_audience, language, update_schedule, planned_length, maturity_rating, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, last_updated
	`

	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx, query,
		n.Title, n.Slug, n.Synopsis, n.ShortSynopsis, n.AuthorID, n.PrimaryGenreID,
		n.TargetAudience, n.Language, n.UpdateSchedule, n.PlannedLength, n.MaturityRating, n.Status,
	).Scan(&n.ID, &n.CreatedAt, &n.LastUpdated)
	if err != nil {
		if database.IsUniqueViolation(err, constraintNovelsSlug) {
			return model.ErrSlugTaken
		}
		return fmt.Errorf("insert novel: %w", err)
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, n *model.Novel) error {
	query := `
		UPDATE novels SET
			title = $2, slug = $3, synopsis = $4, short_synopsis = $5, primary_genre_id = $6,
			target_audience = $7, language = $8, update_schedule = $9, planned_length = $10,
			maturity_rating = $11, status = $12, last_updated = NOW()
		WHERE id = $1
		RETURNING last_updated
	`

	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx, query,
		n.ID, n.Title, n.Slug, n.Synopsis, n.ShortSynopsis, n.PrimaryGenreID,
		n.TargetAudience, n.Language, n.UpdateSchedule, n.PlannedLength, n.MaturityRating, n.Status,
	).Scan(&n.LastUpdated)
	if err != nil {
		switch {
		case database.IsNoRows(err):
			return model.ErrNovelNotFound
		case database.IsUniqueViolation(err, constraintNovelsSlug):
			return model.ErrSlugTaken
		}
		return fmt.Errorf("update novel: %w", err)
	}
	return nil
}

// Delete relies on ON DELETE CASCADE for chapters, reviews and bookmarks.
func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := pkgdb.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM novels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete novel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNovelNotFound
	}
	return nil
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (*model.Novel, error) {
	return r.getOne(ctx, `WHERE n.slug = $1`, slug)
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Novel, error) {
	return r.getOne(ctx, `WHERE n.id = $1`, id)
}

func (r *postgresRepository) getOne(ctx context.Context, where string, arg interface{}) (*model.Novel, error) {
	query := `SELECT ` + novelColumns + novelFrom + ` ` + where

	n, err := scanNovel(pkgdb.Conn(ctx, r.pool).QueryRow(ctx, query, arg))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, model.ErrNovelNotFound
		}
		return nil, fmt.Errorf("get novel: %w", err)
	}

	novels := []model.Novel{*n}
	if err := r.loadTerms(ctx, novels); err != nil {
		return nil, err
	}
	return &novels[0], nil
}

// =====================================================
// LIST
// =====================================================

func (r *postgresRepository) List(ctx context.Context, f model.ListFilter) ([]model.Novel, int, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Search != "" {
		add("n.title ILIKE '%%' || $%d || '%%'", f.Search)
	}
	if f.Status != "" {
		add("LOWER(n.status) = LOWER($%d)", string(f.Status))
	}
	if f.Author != "" {
		add("u.name = $%d", f.Author)
	}
	if f.AuthorID != nil {
		add("n.author_id = $%d", *f.AuthorID)
	}
	if f.Genre != "" {
		add(`EXISTS (
			SELECT 1 FROM novel_genres ng JOIN genres gg ON gg.id = ng.genre_id
			WHERE ng.novel_id = n.id AND gg.name = $%d)`, f.Genre)
	}
	if f.Tag != "" {
		add(`EXISTS (
			SELECT 1 FROM novel_tags nt JOIN tags t ON t.id = nt.tag_id
			WHERE nt.novel_id = n.id AND t.name = $%d)`, f.Tag)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	conn := pkgdb.Conn(ctx, r.pool)

	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*)`+novelFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count novels: %w", err)
	}

	orderBy := model.OrderingColumns[f.Ordering]
	query := fmt.Sprintf(`SELECT %s %s %s ORDER BY %s, n.id DESC LIMIT $%d OFFSET $%d`,
		novelColumns, novelFrom, where, orderBy, len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list novels: %w", err)
	}
	defer rows.Close()

	novels := []model.Novel{}
	for rows.Next() {
		n, err := scanNovel(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan novel: %w", err)
		}
		novels = append(novels, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.loadTerms(ctx, novels); err != nil {
		return nil, 0, err
	}
	return novels, total, nil
}

// loadTerms fills Tags and Genres for a batch of novels with one query per
// kind.
func (r *postgresRepository) loadTerms(ctx context.Context, novels []model.Novel) error {
	if len(novels) == 0 {
		return nil
	}
	ids := make([]int64, len(novels))
	index := make(map[int64]int, len(novels))
	for i := range novels {
		ids[i] = novels[i].ID
		index[novels[i].ID] = i
		novels[i].Tags = []catalog.Term{}
		novels[i].Genres = []catalog.Term{}
	}

	queries := map[catalog.Kind]string{
		catalog.KindTag: `
			SELECT nt.novel_id, t.id, t.name FROM novel_tags nt
			JOIN tags t ON t.id = nt.tag_id
			WHERE nt.novel_id = ANY($1) ORDER BY t.name`,
		catalog.KindGenre: `
			SELECT ng.novel_id, g.id, g.name FROM novel_genres ng
			JOIN genres g ON g.id = ng.genre_id
			WHERE ng.novel_id = ANY($1) ORDER BY g.name`,
	}

	conn := pkgdb.Conn(ctx, r.pool)
	for kind, query := range queries {
		rows, err := conn.Query(ctx, query, ids)
		if err != nil {
			return fmt.Errorf("load %s terms: %w", kind, err)
		}
		for rows.Next() {
			var novelID int64
			var t catalog.Term
			if err := rows.Scan(&novelID, &t.ID, &t.Name); err != nil {
				rows.Close()
				return fmt.Errorf("scan %s term: %w", kind, err)
			}
			n := &novels[index[novelID]]
			if kind == catalog.KindTag {
				n.Tags = append(n.Tags, t)
			} else {
				n.Genres = append(n.Genres, t)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
	}
	return nil
}

// =====================================================
// SLUG & TITLE CHECKS
// =====================================================

func (r *postgresRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM novels WHERE slug = $1 AND id <> $2)`, slug, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) TitleExistsForAuthor(ctx context.Context, authorID uuid.UUID, title string, excludeID int64) (bool, error) {
	var exists bool
	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM novels WHERE author_id = $1 AND LOWER(title) = LOWER($2) AND id <> $3)`,
		authorID, title, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check title: %w", err)
	}
	return exists, nil
}

// =====================================================
// RELATIONS & COUNTERS
// =====================================================

func (r *postgresRepository) SetTerms(ctx context.Context, novelID int64, kind catalog.Kind, termIDs []int64) error {
	var del, ins string
	switch kind {
	case catalog.KindTag:
		del = `DELETE FROM novel_tags WHERE novel_id = $1`
		ins = `INSERT INTO novel_tags (novel_id, tag_id) SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING`
	case catalog.KindGenre:
		del = `DELETE FROM novel_genres WHERE novel_id = $1`
		ins = `INSERT INTO novel_genres (novel_id, genre_id) SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING`
	default:
		return catalog.ErrInvalidKind
	}

	conn := pkgdb.Conn(ctx, r.pool)
	if _, err := conn.Exec(ctx, del, novelID); err != nil {
		return fmt.Errorf("clear %s: %w", kind, err)
	}
	if len(termIDs) == 0 {
		return nil
	}
	if _, err := conn.Exec(ctx, ins, novelID, termIDs); err != nil {
		return fmt.Errorf("attach %s: %w", kind, err)
	}
	return nil
}

func (r *postgresRepository) IncrementViews(ctx context.Context, id int64) (int64, error) {
	var views int64
	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE novels SET views = views + 1 WHERE id = $1 RETURNING views`, id,
	).Scan(&views)
	if err != nil {
		if database.IsNoRows(err) {
			return 0, model.ErrNovelNotFound
		}
		return 0, fmt.Errorf("increment views: %w", err)
	}
	return views, nil
}

func (r *postgresRepository) UpdateCover(ctx context.Context, id int64, cover, coverLarge *string) error {
	tag, err := pkgdb.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE novels SET cover_image = $2, cover_image_large = $3, last_updated = NOW() WHERE id = $1`,
		id, cover, coverLarge,
	)
	if err != nil {
		return fmt.Errorf("update cover: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNovelNotFound
	}
	return nil
}

// =====================================================
// BOOKMARKS
// =====================================================

func (r *postgresRepository) AddBookmark(ctx context.Context, userID uuid.UUID, novelID int64) (*model.Bookmark, error) {
	query := `
		WITH ins AS (
			INSERT INTO bookmarks (user_id, novel_id) VALUES ($1, $2)
			ON CONFLICT (user_id, novel_id) DO NOTHING
			RETURNING id, created_at
		)
		SELECT id, created_at FROM ins
		UNION ALL
		SELECT id, created_at FROM bookmarks WHERE user_id = $1 AND novel_id = $2
		LIMIT 1
	`

	b := &model.Bookmark{UserID: userID, NovelID: novelID}
	if err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx, query, userID, novelID).Scan(&b.ID, &b.CreatedAt); err != nil {
		return nil, fmt.Errorf("add bookmark: %w", err)
	}
	return b, nil
}

func (r *postgresRepository) RemoveBookmark(ctx context.Context, userID uuid.UUID, novelID int64) error {
	tag, err := pkgdb.Conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM bookmarks WHERE user_id = $1 AND novel_id = $2`, userID, novelID)
	if err != nil {
		return fmt.Errorf("remove bookmark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookmarkNotFound
	}
	return nil
}

func (r *postgresRepository) ListBookmarks(ctx context.Context, userID uuid.UUID) ([]model.Bookmark, error) {
	query := `SELECT b.id, b.created_at, ` + novelColumns + novelFrom + `
		JOIN bookmarks b ON b.novel_id = n.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC`

	rows, err := pkgdb.Conn(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := []model.Bookmark{}
	for rows.Next() {
		var b model.Bookmark
		n, err := scanNovel(rows, &b.ID, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		b.UserID = userID
		b.NovelID = n.ID
		b.Novel = n
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

// =====================================================
// FEATURED
// =====================================================

func (r *postgresRepository) ListFeatured(ctx context.Context) ([]model.Featured, error) {
	query := `SELECT f.id, f.featured_at, f.is_active, ` + novelColumns + novelFrom + `
		JOIN featured_novels f ON f.novel_id = n.id
		WHERE f.is_active
		ORDER BY f.featured_at DESC, f.id DESC`

	rows, err := pkgdb.Conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list featured: %w", err)
	}
	defer rows.Close()

	featured := []model.Featured{}
	for rows.Next() {
		var f model.Featured
		n, err := scanNovel(rows, &f.ID, &f.FeaturedAt, &f.IsActive)
		if err != nil {
			return nil, fmt.Errorf("scan featured: %w", err)
		}
		f.NovelID = n.ID
		f.Novel = n
		featured = append(featured, f)
	}
	return featured, rows.Err()
}

func (r *postgresRepository) CreateFeatured(ctx context.Context, novelID int64) (*model.Featured, error) {
	f := &model.Featured{NovelID: novelID, IsActive: true}
	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO featured_novels (novel_id) VALUES ($1) RETURNING id, featured_at`, novelID,
	).Scan(&f.ID, &f.FeaturedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, model.ErrNovelNotFound
		}
		return nil, fmt.Errorf("insert featured: %w", err)
	}
	return f, nil
}

func (r *postgresRepository) DeactivateFeatured(ctx context.Context, id int64) error {
	tag, err := pkgdb.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE featured_novels SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate featured: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrFeaturedNotFound
	}
	return nil
}

// scanNovel reads novelColumns, after any leading destinations.
func scanNovel(row pgx.Row, leading ...interface{}) (*model.Novel, error) {
	n := &model.Novel{}
	var genreName *string
	dest := append(leading,
		&n.ID, &n.Title, &n.Slug, &n.Synopsis, &n.ShortSynopsis, &n.AuthorID, &n.AuthorName,
		&n.CoverImage, &n.CoverImageLarge, &n.PrimaryGenreID, &genreName,
		&n.TargetAudience, &n.Language, &n.UpdateSchedule, &n.PlannedLength, &n.MaturityRating,
		&n.Status, &n.Views, &n.Likes, &n.Collections, &n.ReviewsCount, &n.Rating,
		&n.CreatedAt, &n.LastUpdated,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if n.PrimaryGenreID != nil && genreName != nil {
		n.PrimaryGenre = &catalog.Term{ID: *n.PrimaryGenreID, Name: *genreName}
	}
	return n, nil
}
