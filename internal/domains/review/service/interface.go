package service

import (
	"context"

	"novelpedia-backend/internal/domains/review/model"
	"novelpedia-backend/internal/policy"
)

// =====================================================
// REVIEW SERVICE INTERFACE
// =====================================================

// Every write recomputes the reviewed novel's rating and reviews_count in
// the same transaction.
type ServiceInterface interface {
	// CreateReview creates new review
	CreateReview(ctx context.Context, actor policy.Actor, req model.CreateReviewRequest) (*model.Review, error)

	// GetReview gets review by ID
	GetReview(ctx context.Context, id int64) (*model.Review, error)

	// UpdateReview updates the actor's own review
	UpdateReview(ctx context.Context, actor policy.Actor, id int64, req model.UpdateReviewRequest) (*model.Review, error)

	// DeleteReview deletes a review; the novel's author may delete too
	DeleteReview(ctx context.Context, actor policy.Actor, id int64) error

	// ListReviews lists reviews with filters
	ListReviews(ctx context.Context, req model.ListReviewsRequest) (*model.ListReviewsResponse, error)

	// ListMyReviews lists reviews by current user
	ListMyReviews(ctx context.Context, actor policy.Actor, req model.ListReviewsRequest) (*model.ListReviewsResponse, error)
}
