package service

import (
	"context"

	"novelpedia-backend/internal/domains/catalog/model"
	"novelpedia-backend/internal/policy"
)

type ServiceInterface interface {
	List(ctx context.Context, kind model.Kind) ([]model.Term, error)
	Get(ctx context.Context, kind model.Kind, id int64) (*model.Term, error)

	// Writes need an authenticated actor; any role may manage the catalog.
	Create(ctx context.Context, actor policy.Actor, kind model.Kind, req model.CreateTermRequest) (*model.Term, error)
	Update(ctx context.Context, actor policy.Actor, kind model.Kind, id int64, req model.UpdateTermRequest) (*model.Term, error)
	Delete(ctx context.Context, actor policy.Actor, kind model.Kind, id int64) error

	// Resolve attaches by name: trimmed, deduplicated, get-or-create.
	Resolve(ctx context.Context, kind model.Kind, names []string) ([]model.Term, error)
}
