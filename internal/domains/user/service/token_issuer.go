package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"novelpedia-backend/internal/domains/user"
	"novelpedia-backend/pkg/cache"
	"novelpedia-backend/pkg/jwt"
)

const refreshKeyPrefix = "refresh:"

// jwtTokenIssuer signs tokens with pkg/jwt and registers each refresh jti in
// the cache. A refresh token is valid only while its key exists.
type jwtTokenIssuer struct {
	jwt   *jwt.Manager
	cache cache.Cache
	now   func() time.Time
}

func NewTokenIssuer(manager *jwt.Manager, c cache.Cache) user.TokenIssuer {
	return &jwtTokenIssuer{jwt: manager, cache: c, now: time.Now}
}

type refreshRecord struct {
	UserID   string    `json:"user_id"`
	IssuedAt time.Time `json:"issued_at"`
}

func (t *jwtTokenIssuer) Issue(ctx context.Context, u *user.User) (*user.TokenPair, error) {
	access, err := t.jwt.GenerateAccessToken(u.ID.String(), u.Name, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, jti, err := t.jwt.GenerateRefreshToken(u.ID.String())
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	now := t.now()
	record := refreshRecord{UserID: u.ID.String(), IssuedAt: now}
	if err := t.cache.Set(ctx, refreshKeyPrefix+jti, record, t.jwt.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("register refresh token: %w", err)
	}

	return &user.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(t.jwt.AccessTTL()),
	}, nil
}

func (t *jwtTokenIssuer) Consume(ctx context.Context, refreshToken string) (uuid.UUID, error) {
	claims, err := t.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return uuid.Nil, user.ErrInvalidToken
	}

	var record refreshRecord
	found, err := t.cache.Take(ctx, refreshKeyPrefix+claims.ID, &record)
	if err != nil {
		return uuid.Nil, fmt.Errorf("load refresh token: %w", err)
	}
	if !found || record.UserID != claims.UserID {
		return uuid.Nil, user.ErrInvalidToken
	}

	id, err := uuid.Parse(record.UserID)
	if err != nil {
		return uuid.Nil, user.ErrInvalidToken
	}
	return id, nil
}

// Revoke is idempotent; an already revoked token is not an error.
func (t *jwtTokenIssuer) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := t.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return user.ErrInvalidToken
	}
	return t.cache.Delete(ctx, refreshKeyPrefix+claims.ID)
}
