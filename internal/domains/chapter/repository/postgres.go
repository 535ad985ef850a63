package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"novelpedia-backend/internal/domains/chapter/model"
	"novelpedia-backend/internal/infrastructure/database"
	pkgdb "novelpedia-backend/pkg/database"
)

const (
	constraintChapterNumber = "chapters_novel_id_number_key"
	constraintParagraphUID  = "paragraphs_uid_key"
)

const chapterColumns = `
	c.id, c.novel_id, n.author_id, c.title, c.number, c.status, c.word_count, c.total_views,
	c.content_html, c.content_delta, c.hero_image, c.created_at, c.updated_at`

const chapterFrom = `
	FROM chapters c
	JOIN novels n ON n.id = c.novel_id`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanChapter(row scanner) (*model.Chapter, error) {
	var (
		c     model.Chapter
		delta []byte
	)
	err := row.Scan(
		&c.ID, &c.NovelID, &c.NovelAuthorID, &c.Title, &c.Number, &c.Status, &c.WordCount, &c.TotalViews,
		&c.ContentHTML, &delta, &c.HeroImage, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(delta) > 0 {
		c.ContentDelta = json.RawMessage(delta)
	}
	return &c, nil
}

// jsonParam turns an empty delta into SQL NULL.
func jsonParam(raw json.RawMessage) interface{} {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return string(raw)
}

// =====================================================
// CHAPTERS
// =====================================================

func (r *postgresRepository) Create(ctx context.Context, c *model.Chapter) error {
	query := `
		INSERT INTO chapters (novel_id, title, number, status, word_count, content_html, content_delta, hero_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx, query,
		c.NovelID, c.Title, c.Number, c.Status, c.WordCount, c.ContentHTML, jsonParam(c.ContentDelta), c.HeroImage,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, constraintChapterNumber) {
			return fmt.Errorf("chapter number %d already used: %w", c.Number, err)
		}
		return fmt.Errorf("insert chapter: %w", err)
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, c *model.Chapter) error {
	query := `
		UPDATE chapters SET
			title = $2, status = $3, word_count = $4, content_html = $5,
			content_delta = $6, hero_image = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx, query,
		c.ID, c.Title, c.Status, c.WordCount, c.ContentHTML, jsonParam(c.ContentDelta), c.HeroImage,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return model.ErrChapterNotFound
		}
		return fmt.Errorf("update chapter: %w", err)
	}
	return nil
}

// Delete relies on ON DELETE CASCADE for paragraphs and comments.
func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := pkgdb.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM chapters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete chapter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrChapterNotFound
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Chapter, error) {
	return r.getOne(ctx, id, "")
}

func (r *postgresRepository) LockByID(ctx context.Context, id int64) (*model.Chapter, error) {
	return r.getOne(ctx, id, " FOR UPDATE OF c")
}

func (r *postgresRepository) getOne(ctx context.Context, id int64, lock string) (*model.Chapter, error) {
	query := `SELECT ` + chapterColumns + chapterFrom + ` WHERE c.id = $1` + lock

	c, err := scanChapter(pkgdb.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, model.ErrChapterNotFound
		}
		return nil, fmt.Errorf("get chapter: %w", err)
	}
	return c, nil
}

func (r *postgresRepository) List(ctx context.Context, novelID int64, f model.ListFilter, includeDrafts bool) ([]model.Chapter, error) {
	args := []interface{}{novelID}
	query := `SELECT ` + chapterColumns + chapterFrom + ` WHERE c.novel_id = $1`
	if !includeDrafts {
		args = append(args, model.StatusPublished)
		query += fmt.Sprintf(` AND c.status = $%d`, len(args))
	}
	if f.Search != "" {
		args = append(args, f.Search)
		query += fmt.Sprintf(` AND c.title ILIKE '%%' || $%d || '%%'`, len(args))
	}
	query += ` ORDER BY c.number`

	rows, err := pkgdb.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer rows.Close()

	chapters := []model.Chapter{}
	for rows.Next() {
		c, err := scanChapter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		chapters = append(chapters, *c)
	}
	return chapters, rows.Err()
}

// =====================================================
// NUMBERING
// =====================================================

func (r *postgresRepository) LockNovel(ctx context.Context, novelID int64) error {
	var id int64
	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id FROM novels WHERE id = $1 FOR UPDATE`, novelID,
	).Scan(&id)
	if err != nil {
		if database.IsNoRows(err) {
			return model.ErrNovelNotFound
		}
		return fmt.Errorf("lock novel: %w", err)
	}
	return nil
}

func (r *postgresRepository) TouchNovel(ctx context.Context, novelID int64) error {
	_, err := pkgdb.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE novels SET last_updated = NOW() WHERE id = $1`, novelID)
	if err != nil {
		return fmt.Errorf("touch novel: %w", err)
	}
	return nil
}

func (r *postgresRepository) MaxNumber(ctx context.Context, novelID int64) (int, error) {
	var last int
	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COALESCE(MAX(number), 0) FROM chapters WHERE novel_id = $1`, novelID,
	).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("max chapter number: %w", err)
	}
	return last, nil
}

func (r *postgresRepository) IDsByNovel(ctx context.Context, novelID int64) ([]int64, error) {
	rows, err := pkgdb.Conn(ctx, r.pool).Query(ctx,
		`SELECT id FROM chapters WHERE novel_id = $1 ORDER BY number`, novelID)
	if err != nil {
		return nil, fmt.Errorf("list chapter ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Renumber defers the (novel_id, number) check to commit so the numbers can
// be permuted in one statement.
func (r *postgresRepository) Renumber(ctx context.Context, novelID int64, ids []int64) error {
	conn := pkgdb.Conn(ctx, r.pool)
	if _, err := conn.Exec(ctx, `SET CONSTRAINTS `+constraintChapterNumber+` DEFERRED`); err != nil {
		return fmt.Errorf("defer number constraint: %w", err)
	}

	query := `
		UPDATE chapters c SET number = o.ord, updated_at = NOW()
		FROM unnest($2::bigint[]) WITH ORDINALITY AS o(id, ord)
		WHERE c.id = o.id AND c.novel_id = $1
	`
	if _, err := conn.Exec(ctx, query, novelID, ids); err != nil {
		return fmt.Errorf("renumber chapters: %w", err)
	}
	return nil
}

func (r *postgresRepository) SetWordCount(ctx context.Context, id int64, count int) error {
	_, err := pkgdb.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE chapters SET word_count = $2 WHERE id = $1`, id, count)
	if err != nil {
		return fmt.Errorf("set word count: %w", err)
	}
	return nil
}

// =====================================================
// PARAGRAPHS
// =====================================================

const paragraphColumns = `id, chapter_id, uid, "order", text, created_at`

func scanParagraph(row scanner) (*model.Paragraph, error) {
	var p model.Paragraph
	if err := row.Scan(&p.ID, &p.ChapterID, &p.UID, &p.Order, &p.Text, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepository) ListParagraphs(ctx context.Context, chapterID int64) ([]model.Paragraph, error) {
	rows, err := pkgdb.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+paragraphColumns+` FROM paragraphs WHERE chapter_id = $1 ORDER BY "order", id`, chapterID)
	if err != nil {
		return nil, fmt.Errorf("list paragraphs: %w", err)
	}
	defer rows.Close()

	paragraphs := []model.Paragraph{}
	for rows.Next() {
		p, err := scanParagraph(rows)
		if err != nil {
			return nil, fmt.Errorf("scan paragraph: %w", err)
		}
		paragraphs = append(paragraphs, *p)
	}
	return paragraphs, rows.Err()
}

func (r *postgresRepository) ParagraphTexts(ctx context.Context, chapterID int64) ([]string, error) {
	rows, err := pkgdb.Conn(ctx, r.pool).Query(ctx,
		`SELECT text FROM paragraphs WHERE chapter_id = $1`, chapterID)
	if err != nil {
		return nil, fmt.Errorf("read paragraph texts: %w", err)
	}
	defer rows.Close()

	texts := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		texts = append(texts, t)
	}
	return texts, rows.Err()
}

func (r *postgresRepository) GetParagraph(ctx context.Context, id int64) (*model.Paragraph, error) {
	p, err := scanParagraph(pkgdb.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+paragraphColumns+` FROM paragraphs WHERE id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, model.ErrParagraphNotFound
		}
		return nil, fmt.Errorf("get paragraph: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) CreateParagraph(ctx context.Context, p *model.Paragraph) error {
	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO paragraphs (chapter_id, uid, "order", text) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		p.ChapterID, p.UID, p.Order, p.Text,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, constraintParagraphUID) {
			return model.ErrUIDTaken
		}
		return fmt.Errorf("insert paragraph: %w", err)
	}
	return nil
}

// UpdateParagraph never writes uid.
func (r *postgresRepository) UpdateParagraph(ctx context.Context, p *model.Paragraph) error {
	tag, err := pkgdb.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE paragraphs SET "order" = $2, text = $3 WHERE id = $1`, p.ID, p.Order, p.Text)
	if err != nil {
		return fmt.Errorf("update paragraph: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrParagraphNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteParagraph(ctx context.Context, id int64) error {
	tag, err := pkgdb.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM paragraphs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete paragraph: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrParagraphNotFound
	}
	return nil
}

func (r *postgresRepository) ReplaceParagraphs(ctx context.Context, chapterID int64, texts []string) ([]model.Paragraph, error) {
	conn := pkgdb.Conn(ctx, r.pool)
	if _, err := conn.Exec(ctx, `DELETE FROM paragraphs WHERE chapter_id = $1`, chapterID); err != nil {
		return nil, fmt.Errorf("clear paragraphs: %w", err)
	}
	if len(texts) == 0 {
		return []model.Paragraph{}, nil
	}

	uids := make([]string, len(texts))
	for i := range texts {
		uids[i] = uuid.NewString()
	}

	query := `
		INSERT INTO paragraphs (chapter_id, uid, "order", text)
		SELECT $1, p.uid, p.ord - 1, p.text
		FROM unnest($2::text[], $3::text[]) WITH ORDINALITY AS p(uid, text, ord)
		RETURNING ` + paragraphColumns

	rows, err := conn.Query(ctx, query, chapterID, uids, texts)
	if err != nil {
		return nil, fmt.Errorf("insert paragraphs: %w", err)
	}
	defer rows.Close()

	paragraphs := make([]model.Paragraph, 0, len(texts))
	for rows.Next() {
		p, err := scanParagraph(rows)
		if err != nil {
			return nil, fmt.Errorf("scan paragraph: %w", err)
		}
		paragraphs = append(paragraphs, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(paragraphs, func(i, j int) bool { return paragraphs[i].Order < paragraphs[j].Order })
	return paragraphs, nil
}
