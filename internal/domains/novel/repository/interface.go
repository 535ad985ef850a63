package repository

import (
	"context"

	"github.com/google/uuid"

	catalog "novelpedia-backend/internal/domains/catalog/model"
	"novelpedia-backend/internal/domains/novel/model"
)

type Repository interface {
	// Create inserts n and fills ID and timestamps. A slug collision yields
	// model.ErrSlugTaken.
	Create(ctx context.Context, n *model.Novel) error
	// Update writes the editable columns and slug; never rating or counts.
	Update(ctx context.Context, n *model.Novel) error
	Delete(ctx context.Context, id int64) error

	GetBySlug(ctx context.Context, slug string) (*model.Novel, error)
	GetByID(ctx context.Context, id int64) (*model.Novel, error)
	List(ctx context.Context, filter model.ListFilter) ([]model.Novel, int, error)

	// SlugExists ignores the novel with excludeID (0 for none).
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	// TitleExistsForAuthor compares case-insensitively.
	TitleExistsForAuthor(ctx context.Context, authorID uuid.UUID, title string, excludeID int64) (bool, error)

	// SetTerms replaces the tag or genre set of a novel.
	SetTerms(ctx context.Context, novelID int64, kind catalog.Kind, termIDs []int64) error

	IncrementViews(ctx context.Context, id int64) (int64, error)
	UpdateCover(ctx context.Context, id int64, cover, coverLarge *string) error

	// AddBookmark is idempotent on (user, novel).
	AddBookmark(ctx context.Context, userID uuid.UUID, novelID int64) (*model.Bookmark, error)
	RemoveBookmark(ctx context.Context, userID uuid.UUID, novelID int64) error
	ListBookmarks(ctx context.Context, userID uuid.UUID) ([]model.Bookmark, error)

	// ListFeatured returns active entries, newest first, with their novel.
	ListFeatured(ctx context.Context) ([]model.Featured, error)
	CreateFeatured(ctx context.Context, novelID int64) (*model.Featured, error)
	// DeactivateFeatured yields model.ErrFeaturedNotFound for unknown ids.
	DeactivateFeatured(ctx context.Context, id int64) error
}
