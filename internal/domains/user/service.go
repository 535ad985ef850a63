package user

import (
	"context"

	"github.com/google/uuid"
)

// Service is the identity store plus the account endpoints built on it.
type Service interface {
	ResolveIdentifier(ctx context.Context, identifier string) (*User, error)
	Authenticate(ctx context.Context, identifier, password string) (*User, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*User, error)

	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserDTO, error)

	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

// TokenIssuer issues local session credentials for a resolved user. Each
// refresh token is individually revocable.
type TokenIssuer interface {
	Issue(ctx context.Context, u *User) (*TokenPair, error)
	// Consume validates a refresh token and revokes it, returning its owner.
	Consume(ctx context.Context, refreshToken string) (uuid.UUID, error)
	Revoke(ctx context.Context, refreshToken string) error
}

// ResetMessenger delivers password reset tokens. Send errors are returned
// to the caller as is.
type ResetMessenger interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}
