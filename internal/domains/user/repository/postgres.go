package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"novelpedia-backend/internal/domains/user"
	"novelpedia-backend/internal/infrastructure/database"
	"novelpedia-backend/internal/policy"
	pkgdb "novelpedia-backend/pkg/database"
)

const (
	constraintUsersName  = "users_name_key"
	constraintUsersEmail = "users_email_key"

	userColumns = `id, name, email, password_hash, dob, gender, role, user_status, is_active, created_at, updated_at`
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) user.Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, dob, gender, role, user_status, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx, query,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.DOB,
		u.Gender,
		u.Role,
		u.Status,
		u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err, constraintUsersName):
			return user.NewNameTakenError()
		case database.IsUniqueViolation(err, constraintUsersEmail):
			return user.NewEmailTakenError()
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *postgresRepository) FindByName(ctx context.Context, name string) (*user.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE name = $1`, name)
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *postgresRepository) findOne(ctx context.Context, query string, arg any) (*user.User, error) {
	var (
		u    user.User
		role string
	)
	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.DOB,
		&u.Gender,
		&role,
		&u.Status,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.Role = policy.Role(role)
	return &u, nil
}

func (r *postgresRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE name = $1)`, name)
}

func (r *postgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *postgresRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, dob = $4, gender = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := pkgdb.Conn(ctx, r.pool).QueryRow(ctx, query,
		u.ID,
		u.Name,
		u.Email,
		u.DOB,
		u.Gender,
	).Scan(&u.UpdatedAt)
	if err != nil {
		switch {
		case database.IsNoRows(err):
			return user.ErrUserNotFound
		case database.IsUniqueViolation(err, constraintUsersName):
			return user.NewNameTakenError()
		case database.IsUniqueViolation(err, constraintUsersEmail):
			return user.NewEmailTakenError()
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := pkgdb.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) PromoteToAuthor(ctx context.Context, id uuid.UUID) error {
	_, err := pkgdb.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1 AND role = $3`,
		id, policy.RoleAuthor, policy.RoleReader)
	if err != nil {
		return fmt.Errorf("promote user: %w", err)
	}
	return nil
}
