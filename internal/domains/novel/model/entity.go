package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalog "novelpedia-backend/internal/domains/catalog/model"
)

type Status string

const (
	StatusOngoing   Status = "Ongoing"
	StatusCompleted Status = "Completed"
)

func (s Status) IsValid() bool {
	return s == StatusOngoing || s == StatusCompleted
}

// Novel is the root of the content tree. Rating and ReviewsCount are
// derived from the review set and only written by the review recompute.
type Novel struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Synopsis        string    `json:"synopsis"`
	ShortSynopsis   string    `json:"short_synopsis"`
	AuthorID        uuid.UUID `json:"author_id"`
	AuthorName      string    `json:"author_name"`
	CoverImage      *string   `json:"cover_image"`
	CoverImageLarge *string   `json:"cover_image_large"`

	PrimaryGenreID *int64        `json:"-"`
	PrimaryGenre   *catalog.Term `json:"primary_genre"`
	TargetAudience string        `json:"target_audience"`
	Language       string        `json:"language"`
	UpdateSchedule string        `json:"update_schedule"`
	PlannedLength  string        `json:"planned_length"`
	MaturityRating string        `json:"maturity_rating"`
	Status         Status        `json:"status"`

	Views        int64           `json:"views"`
	Likes        int64           `json:"likes"`
	Collections  int64           `json:"collections"`
	ReviewsCount int64           `json:"reviews_count"`
	Rating       decimal.Decimal `json:"rating"`

	Tags   []catalog.Term `json:"tags"`
	Genres []catalog.Term `json:"genres"`

	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// Bookmark is unique per (user, novel).
type Bookmark struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	NovelID   int64     `json:"novel_id"`
	Novel     *Novel    `json:"novel,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Featured puts a novel on the front page. Entries are deactivated, not
// deleted, so the history stays.
type Featured struct {
	ID         int64     `json:"id"`
	NovelID    int64     `json:"novel_id"`
	Novel      *Novel    `json:"novel,omitempty"`
	FeaturedAt time.Time `json:"featured_at"`
	IsActive   bool      `json:"is_active"`
}
