package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"novelpedia-backend/internal/domains/comment/model"
	"novelpedia-backend/internal/infrastructure/database"
	pkgdb "novelpedia-backend/pkg/database"
)

const commentColumns = `
	c.id, c.user_id, u.name, c.target_kind, c.chapter_id, c.paragraph_id,
	c.parent_id, c.text, c.created_at, c.updated_at`

const commentFrom = `
	FROM comments c
	JOIN users u ON u.id = c.user_id`

type postgresCommentRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &postgresCommentRepository{pool: pool}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanComment(row scanner) (*model.Comment, error) {
	var (
		c                      model.Comment
		kind                   string
		chapterID, paragraphID *int64
	)
	err := row.Scan(
		&c.ID, &c.UserID, &c.UserName, &kind, &chapterID, &paragraphID,
		&c.ParentID, &c.Text, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	target, err := model.NewTarget(chapterID, paragraphID)
	if err != nil {
		return nil, fmt.Errorf("comment %d has a corrupt target: %w", c.ID, err)
	}
	if string(target.Kind) != kind {
		return nil, fmt.Errorf("comment %d: target_kind %q disagrees with its references", c.ID, kind)
	}
	c.Target = target
	return &c, nil
}

// targetColumn is safe to interpolate: Kind only ever holds the two
// constants once a Target is built.
func targetColumn(t model.Target) string {
	if t.Kind == model.TargetParagraph {
		return "c.paragraph_id"
	}
	return "c.chapter_id"
}

func (r *postgresCommentRepository) Create(ctx context.Context, c *model.Comment) error {
	query := `
		INSERT INTO comments (user_id, target_kind, chapter_id, paragraph_id, parent_id, text)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx, query,
		c.UserID,
		string(c.Target.Kind),
		c.Target.ChapterID(),
		c.Target.ParagraphID(),
		c.ParentID,
		c.Text,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if database.IsCheckViolation(err, "comments_single_target_check") {
			return model.ErrAmbiguousTarget
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *postgresCommentRepository) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	query := `SELECT ` + commentColumns + commentFrom + ` WHERE c.id = $1`

	c, err := scanComment(pkgdb.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, model.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return c, nil
}

func (r *postgresCommentRepository) UpdateText(ctx context.Context, c *model.Comment) error {
	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE comments SET text = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`,
		c.ID, c.Text,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return model.ErrCommentNotFound
		}
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

// Delete removes the comment; replies go with it through ON DELETE CASCADE.
func (r *postgresCommentRepository) Delete(ctx context.Context, id int64) error {
	result, err := pkgdb.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrCommentNotFound
	}
	return nil
}

func (r *postgresCommentRepository) ListByTarget(ctx context.Context, target model.Target, limit, offset int) ([]model.Comment, int, error) {
	where := ` WHERE ` + targetColumn(target) + ` = $1`
	conn := pkgdb.Conn(ctx, r.pool)

	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*)`+commentFrom+where, target.ID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	comments, err := r.query(ctx,
		`SELECT `+commentColumns+commentFrom+where+` ORDER BY c.created_at, c.id LIMIT $2 OFFSET $3`,
		target.ID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *postgresCommentRepository) AllByTarget(ctx context.Context, target model.Target) ([]model.Comment, error) {
	return r.query(ctx,
		`SELECT `+commentColumns+commentFrom+` WHERE `+targetColumn(target)+` = $1 ORDER BY c.created_at, c.id`,
		target.ID)
}

func (r *postgresCommentRepository) query(ctx context.Context, sql string, args ...interface{}) ([]model.Comment, error) {
	rows, err := pkgdb.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

func (r *postgresCommentRepository) TargetExists(ctx context.Context, target model.Target) (bool, error) {
	table := "chapters"
	if target.Kind == model.TargetParagraph {
		table = "paragraphs"
	}

	var exists bool
	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, target.ID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check comment target: %w", err)
	}
	return exists, nil
}
