package repository

import (
	"context"

	"novelpedia-backend/internal/domains/catalog/model"
)

type Repository interface {
	List(ctx context.Context, kind model.Kind) ([]model.Term, error)
	Get(ctx context.Context, kind model.Kind, id int64) (*model.Term, error)
	Create(ctx context.Context, kind model.Kind, name string) (*model.Term, error)
	Rename(ctx context.Context, kind model.Kind, id int64, name string) (*model.Term, error)
	// Delete detaches the term from every novel; a deleted primary genre
	// leaves the novel without one.
	Delete(ctx context.Context, kind model.Kind, id int64) error
	// GetOrCreate returns one term per name, creating missing ones.
	GetOrCreate(ctx context.Context, kind model.Kind, names []string) ([]model.Term, error)
}
