package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"novelpedia-backend/internal/domains/review/model"
)

// =====================================================
// REVIEW REPOSITORY INTERFACE
// =====================================================

type ReviewRepository interface {
	// ========================================
	// CRUD Operations
	// ========================================

	// Create inserts review and fills ID and timestamps
	Create(ctx context.Context, review *model.Review) error

	// GetByID gets review by ID, with the reviewer name and novel author
	GetByID(ctx context.Context, id int64) (*model.Review, error)

	// Update writes rating and comment
	Update(ctx context.Context, review *model.Review) error

	// Delete deletes review
	Delete(ctx context.Context, id int64) error

	// List lists reviews, newest first unless ordered otherwise
	List(ctx context.Context, req model.ListReviewsRequest) ([]model.Review, int, error)

	// ========================================
	// NOVEL AGGREGATE
	// ========================================

	// LockNovel takes the novel row lock for the rest of the transaction.
	// A missing novel yields model.ErrNovelNotFound.
	LockNovel(ctx context.Context, novelID int64) error

	// Ratings reads every rating of a novel
	Ratings(ctx context.Context, novelID int64) ([]decimal.Decimal, error)

	// SetNovelRating writes rating and reviews_count together
	SetNovelRating(ctx context.Context, novelID int64, rating decimal.Decimal, count int) error
}
