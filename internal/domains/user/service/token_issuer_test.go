package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelpedia-backend/internal/domains/user"
	"novelpedia-backend/internal/policy"
	"novelpedia-backend/pkg/jwt"
)

func TestTokenIssuer_IssueAndConsume(t *testing.T) {
	c := newTestCache(t)
	manager := jwt.NewManager("secret", 15*time.Minute, time.Hour)
	issuer := NewTokenIssuer(manager, c)
	ctx := context.Background()

	u := &user.User{ID: uuid.New(), Name: "alice", Role: policy.RoleAuthor}
	pair, err := issuer.Issue(ctx, u)
	require.NoError(t, err)

	claims, err := manager.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.UserID)
	assert.Equal(t, "author", claims.Role)

	owner, err := issuer.Consume(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, owner)

	_, err = issuer.Consume(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, user.ErrInvalidToken)
}

func TestTokenIssuer_RejectsAccessTokenAsRefresh(t *testing.T) {
	issuer := NewTokenIssuer(jwt.NewManager("secret", time.Minute, time.Hour), newTestCache(t))

	pair, err := issuer.Issue(context.Background(), &user.User{ID: uuid.New(), Role: policy.RoleReader})
	require.NoError(t, err)

	_, err = issuer.Consume(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, user.ErrInvalidToken)
}

func TestTokenIssuer_RevokeIsIdempotent(t *testing.T) {
	issuer := NewTokenIssuer(jwt.NewManager("secret", time.Minute, time.Hour), newTestCache(t))
	ctx := context.Background()

	pair, err := issuer.Issue(ctx, &user.User{ID: uuid.New(), Role: policy.RoleReader})
	require.NoError(t, err)

	require.NoError(t, issuer.Revoke(ctx, pair.RefreshToken))
	require.NoError(t, issuer.Revoke(ctx, pair.RefreshToken))
	assert.Error(t, issuer.Revoke(ctx, "garbage"))
}
