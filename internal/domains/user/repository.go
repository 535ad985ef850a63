package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the identity store's data access contract. Lookups return
// ErrUserNotFound when nothing matches.
type Repository interface {
	// Create inserts u and fills ID and timestamps. A duplicate name or
	// email yields the matching field validation error.
	Create(ctx context.Context, u *User) error

	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByName(ctx context.Context, name string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)

	ExistsByName(ctx context.Context, name string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Update writes name, email, dob and gender. Unique violations map to
	// the same field errors as Create.
	Update(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// PromoteToAuthor sets role=author only when the current role is reader.
	PromoteToAuthor(ctx context.Context, id uuid.UUID) error
}
