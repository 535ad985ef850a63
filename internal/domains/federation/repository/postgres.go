package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"novelpedia-backend/internal/domains/federation"
	pkgdb "novelpedia-backend/pkg/database"
)

type postgresLinkRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresLinkRepository(pool *pgxpool.Pool) federation.LinkRepository {
	return &postgresLinkRepository{pool: pool}
}

// Upsert keeps one row per (user_id, provider). A changed uid or profile
// overwrites the stored one.
func (r *postgresLinkRepository) Upsert(ctx context.Context, link *federation.ExternalAccount) error {
	extra, err := json.Marshal(link.ExtraData)
	if err != nil {
		return fmt.Errorf("encode extra_data: %w", err)
	}

	_, err = pkgdb.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO external_accounts (user_id, provider, uid, extra_data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, provider)
		DO UPDATE SET uid = EXCLUDED.uid, extra_data = EXCLUDED.extra_data
	`, link.UserID, link.Provider, link.UID, extra)
	if err != nil {
		return fmt.Errorf("upsert external account: %w", err)
	}
	return nil
}
