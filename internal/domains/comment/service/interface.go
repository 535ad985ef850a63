package service

import (
	"context"

	"novelpedia-backend/internal/domains/comment/model"
	"novelpedia-backend/internal/policy"
)

type ServiceInterface interface {
	// ListComments pages through one chapter's or paragraph's comments
	ListComments(ctx context.Context, req model.ListCommentsRequest) (*model.ListCommentsResponse, error)

	GetComment(ctx context.Context, id int64) (*model.Comment, error)

	// Thread returns a comment and all of its replies, depth first
	Thread(ctx context.Context, id int64) ([]model.ThreadEntry, error)

	CreateComment(ctx context.Context, actor policy.Actor, req model.CreateCommentRequest) (*model.Comment, error)
	UpdateComment(ctx context.Context, actor policy.Actor, id int64, req model.UpdateCommentRequest) (*model.Comment, error)
	DeleteComment(ctx context.Context, actor policy.Actor, id int64) error
}
