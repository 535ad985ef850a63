package model

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// REQUEST DTOs
// =====================================================

type CreateReviewRequest struct {
	NovelID int64           `json:"novel"`
	Rating  *decimal.Decimal `json:"rating"`
	Comment string           `json:"comment"`
}

func (r *CreateReviewRequest) Validate() error {
	r.Comment = strings.TrimSpace(r.Comment)
	return validation.ValidateStruct(r,
		validation.Field(&r.NovelID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Rating, validation.Required, validation.By(validRating)),
		validation.Field(&r.Comment, validation.RuneLength(0, MaxCommentLength)),
	)
}

// UpdateReviewRequest cannot move a review to another novel.
type UpdateReviewRequest struct {
	Rating  *decimal.Decimal `json:"rating"`
	Comment *string          `json:"comment"`
}

func (r *UpdateReviewRequest) Validate() error {
	if r.Comment != nil {
		trimmed := strings.TrimSpace(*r.Comment)
		r.Comment = &trimmed
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.Rating, validation.By(validRating)),
		validation.Field(&r.Comment, validation.RuneLength(0, MaxCommentLength)),
	)
}

var (
	minRating = decimal.NewFromInt(MinRating)
	maxRating = decimal.NewFromInt(MaxRating)
)

func validRating(value interface{}) error {
	var d decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		d = v
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		d = *v
	default:
		return errors.New("must be a number")
	}
	if d.LessThan(minRating) || d.GreaterThan(maxRating) {
		return errors.New("must be between 0 and 5")
	}
	if !d.Equal(d.Round(1)) {
		return errors.New("must have at most one decimal place")
	}
	return nil
}

// ListReviewsRequest filters the public list. ?novel= narrows to one novel
// and adds its rating statistics.
type ListReviewsRequest struct {
	NovelID  *int64     `form:"novel"`
	UserID   *uuid.UUID `form:"-"`
	Search   string     `form:"search"`
	Ordering string     `form:"ordering"`
	Page     int        `form:"page"`
	Limit    int        `form:"limit"`
}

func (r *ListReviewsRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 || r.Limit > MaxPageSize {
		r.Limit = DefaultPageSize
	}
	if _, ok := OrderingColumns[r.Ordering]; !ok {
		r.Ordering = ""
	}
	r.Search = strings.TrimSpace(r.Search)
}

func (r *ListReviewsRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

// =====================================================
// RESPONSE DTOs
// =====================================================

type ListReviewsResponse struct {
	Reviews    []Review          `json:"reviews"`
	Statistics *ReviewStatistics `json:"statistics,omitempty"`
	Pagination PaginationMeta    `json:"pagination"`
}

// ReviewStatistics mirrors the rating aggregate stored on the novel plus
// the per-star breakdown.
type ReviewStatistics struct {
	TotalReviews    int             `json:"total_reviews"`
	AverageRating   decimal.Decimal `json:"average_rating"`
	RatingBreakdown map[int]int     `json:"rating_breakdown"`
}

type PaginationMeta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

func NewPaginationMeta(page, limit, total int) PaginationMeta {
	totalPages := (total + limit - 1) / limit
	return PaginationMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
