package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"novelpedia-backend/internal/domains/catalog/model"
	"novelpedia-backend/internal/infrastructure/database"
	pkgdb "novelpedia-backend/pkg/database"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func table(kind model.Kind) (string, error) {
	switch kind {
	case model.KindTag:
		return "tags", nil
	case model.KindGenre:
		return "genres", nil
	}
	return "", model.ErrInvalidKind
}

func (r *postgresRepository) List(ctx context.Context, kind model.Kind) ([]model.Term, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}

	rows, err := pkgdb.Conn(ctx, r.pool).Query(ctx, `SELECT id, name FROM `+tbl+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", tbl, err)
	}
	defer rows.Close()

	terms := []model.Term{}
	for rows.Next() {
		var t model.Term
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan %s: %w", tbl, err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

func (r *postgresRepository) Create(ctx context.Context, kind model.Kind, name string) (*model.Term, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}

	t := &model.Term{Name: name}
	err = pkgdb.Conn(ctx, r.pool).
		QueryRow(ctx, `INSERT INTO `+tbl+` (name) VALUES ($1) RETURNING id`, name).
		Scan(&t.ID)
	if err != nil {
		if database.IsUniqueViolation(err, "") {
			return nil, model.NewNameTakenError(kind)
		}
		return nil, fmt.Errorf("insert %s: %w", tbl, err)
	}
	return t, nil
}

func (r *postgresRepository) Get(ctx context.Context, kind model.Kind, id int64) (*model.Term, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}

	var t model.Term
	err = pkgdb.Conn(ctx, r.pool).
		QueryRow(ctx, `SELECT id, name FROM `+tbl+` WHERE id = $1`, id).
		Scan(&t.ID, &t.Name)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, model.ErrTermNotFound
		}
		return nil, fmt.Errorf("get %s: %w", tbl, err)
	}
	return &t, nil
}

func (r *postgresRepository) Rename(ctx context.Context, kind model.Kind, id int64, name string) (*model.Term, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}

	t := &model.Term{ID: id}
	err = pkgdb.Conn(ctx, r.pool).
		QueryRow(ctx, `UPDATE `+tbl+` SET name = $2 WHERE id = $1 RETURNING name`, id, name).
		Scan(&t.Name)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, model.ErrTermNotFound
		}
		if database.IsUniqueViolation(err, "") {
			return nil, model.NewNameTakenError(kind)
		}
		return nil, fmt.Errorf("rename %s: %w", tbl, err)
	}
	return t, nil
}

// Delete relies on ON DELETE CASCADE on the join tables and ON DELETE SET
// NULL on novels.primary_genre_id.
func (r *postgresRepository) Delete(ctx context.Context, kind model.Kind, id int64) error {
	tbl, err := table(kind)
	if err != nil {
		return err
	}

	tag, err := pkgdb.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM `+tbl+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", tbl, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTermNotFound
	}
	return nil
}

// GetOrCreate relies on the UNIQUE(name) constraint; the no-op update makes
// RETURNING yield existing rows too.
func (r *postgresRepository) GetOrCreate(ctx context.Context, kind model.Kind, names []string) ([]model.Term, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO ` + tbl + ` (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`
	conn := pkgdb.Conn(ctx, r.pool)
	terms := make([]model.Term, 0, len(names))
	for _, name := range names {
		var t model.Term
		if err := conn.QueryRow(ctx, query, name).Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("get or create %s %q: %w", kind, name, err)
		}
		terms = append(terms, t)
	}
	return terms, nil
}
