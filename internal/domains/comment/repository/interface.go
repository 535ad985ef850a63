package repository

import (
	"context"

	"novelpedia-backend/internal/domains/comment/model"
)

type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	UpdateText(ctx context.Context, c *model.Comment) error
	Delete(ctx context.Context, id int64) error

	// ListByTarget pages through a target's comments, oldest first.
	ListByTarget(ctx context.Context, target model.Target, limit, offset int) ([]model.Comment, int, error)

	// AllByTarget returns every comment on a target for thread assembly.
	AllByTarget(ctx context.Context, target model.Target) ([]model.Comment, error)

	TargetExists(ctx context.Context, target model.Target) (bool, error)
}
