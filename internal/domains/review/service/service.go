package service

import (
	"context"

	"novelpedia-backend/internal/aggregate"
	"novelpedia-backend/internal/domains/review/model"
	"novelpedia-backend/internal/domains/review/repository"
	"novelpedia-backend/internal/metrics"
	"novelpedia-backend/internal/policy"
	pkgdb "novelpedia-backend/pkg/database"
	"novelpedia-backend/pkg/logger"
)

// =====================================================
// SERVICE IMPLEMENTATION
// =====================================================

type reviewService struct {
	reviewRepo repository.ReviewRepository
	tx         pkgdb.Transactor
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	tx pkgdb.Transactor,
) ServiceInterface {
	return &reviewService{
		reviewRepo: reviewRepo,
		tx:         tx,
	}
}

// =====================================================
// CREATE REVIEW
// =====================================================

func (s *reviewService) CreateReview(
	ctx context.Context,
	actor policy.Actor,
	req model.CreateReviewRequest,
) (*model.Review, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	// Step 1: Validate request
	if err := req.Validate(); err != nil {
		return nil, model.NewInvalidInputError(err)
	}

	review := &model.Review{
		NovelID: req.NovelID,
		UserID:  actor.ID,
		Rating:  req.Rating.Round(1),
		Comment: req.Comment,
	}

	// Step 2: Save and recompute the novel aggregate
	err := s.withNovelLocked(ctx, review.NovelID, func(ctx context.Context) error {
		return s.reviewRepo.Create(ctx, review)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("review created", map[string]interface{}{
		"review_id": review.ID,
		"novel_id":  review.NovelID,
		"user_id":   actor.ID.String(),
	})

	// Step 3: Reload with reviewer name
	return s.reviewRepo.GetByID(ctx, review.ID)
}

// =====================================================
// GET REVIEW
// =====================================================

func (s *reviewService) GetReview(ctx context.Context, id int64) (*model.Review, error) {
	return s.reviewRepo.GetByID(ctx, id)
}

// =====================================================
// UPDATE REVIEW
// =====================================================

func (s *reviewService) UpdateReview(
	ctx context.Context,
	actor policy.Actor,
	id int64,
	req model.UpdateReviewRequest,
) (*model.Review, error) {
	// Step 1: Get existing review
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Step 2: Verify ownership
	if err := policy.RequireUpdateReview(actor, review.UserID); err != nil {
		return nil, err
	}

	// Step 3: Validate and apply
	if err := req.Validate(); err != nil {
		return nil, model.NewInvalidInputError(err)
	}
	if req.Rating != nil {
		review.Rating = req.Rating.Round(1)
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}

	// Step 4: Save and recompute
	err = s.withNovelLocked(ctx, review.NovelID, func(ctx context.Context) error {
		return s.reviewRepo.Update(ctx, review)
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

// =====================================================
// DELETE REVIEW
// =====================================================

func (s *reviewService) DeleteReview(ctx context.Context, actor policy.Actor, id int64) error {
	// Step 1: Get review
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Step 2: Reviewer or novel author
	if err := policy.RequireDeleteReview(actor, review.UserID, review.NovelAuthorID); err != nil {
		return err
	}

	// Step 3: Delete and recompute
	err = s.withNovelLocked(ctx, review.NovelID, func(ctx context.Context) error {
		return s.reviewRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	logger.Info("review deleted", map[string]interface{}{
		"review_id": id,
		"novel_id":  review.NovelID,
		"user_id":   actor.ID.String(),
	})
	return nil
}

// =====================================================
// RATING RECOMPUTE
// =====================================================

// withNovelLocked locks the novel, applies mutate, then re-reads every
// rating and writes rating and reviews_count, all in one transaction.
func (s *reviewService) withNovelLocked(ctx context.Context, novelID int64, mutate func(ctx context.Context) error) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.reviewRepo.LockNovel(ctx, novelID); err != nil {
			return err
		}
		if err := mutate(ctx); err != nil {
			return err
		}

		ratings, err := s.reviewRepo.Ratings(ctx, novelID)
		if err != nil {
			return err
		}
		agg := aggregate.AverageRating(ratings)
		return s.reviewRepo.SetNovelRating(ctx, novelID, agg.Average, agg.Count)
	})
	if err != nil {
		return err
	}
	metrics.RecordRecompute(metrics.RecomputeRating)
	return nil
}

// =====================================================
// LIST REVIEWS
// =====================================================

func (s *reviewService) ListReviews(ctx context.Context, req model.ListReviewsRequest) (*model.ListReviewsResponse, error) {
	req.Normalize()

	reviews, total, err := s.reviewRepo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &model.ListReviewsResponse{
		Reviews:    reviews,
		Pagination: model.NewPaginationMeta(req.Page, req.Limit, total),
	}

	// Statistics only make sense for a single novel
	if req.NovelID != nil {
		ratings, err := s.reviewRepo.Ratings(ctx, *req.NovelID)
		if err != nil {
			return nil, err
		}
		agg := aggregate.AverageRating(ratings)
		resp.Statistics = &model.ReviewStatistics{
			TotalReviews:    agg.Count,
			AverageRating:   agg.Average,
			RatingBreakdown: aggregate.RatingDistribution(ratings),
		}
	}

	return resp, nil
}

// =====================================================
// LIST MY REVIEWS
// =====================================================

func (s *reviewService) ListMyReviews(ctx context.Context, actor policy.Actor, req model.ListReviewsRequest) (*model.ListReviewsResponse, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	id := actor.ID
	req.UserID = &id
	req.NovelID = nil
	return s.ListReviews(ctx, req)
}
