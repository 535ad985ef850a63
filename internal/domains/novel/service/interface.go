package service

import (
	"context"

	"github.com/google/uuid"

	catalog "novelpedia-backend/internal/domains/catalog/model"
	"novelpedia-backend/internal/domains/novel/model"
	"novelpedia-backend/internal/policy"
)

type ServiceInterface interface {
	CreateNovel(ctx context.Context, actor policy.Actor, req model.CreateNovelRequest) (*model.Novel, error)
	UpdateNovel(ctx context.Context, actor policy.Actor, slug string, req model.UpdateNovelRequest) (*model.Novel, error)
	DeleteNovel(ctx context.Context, actor policy.Actor, slug string) error

	GetNovel(ctx context.Context, slug string) (*model.Novel, error)
	ListNovels(ctx context.Context, filter model.ListFilter) ([]model.Novel, int, error)
	Trending(ctx context.Context) ([]model.Novel, error)
	Latest(ctx context.Context) ([]model.Novel, error)
	MyNovels(ctx context.Context, actor policy.Actor, filter model.ListFilter) ([]model.Novel, int, error)
	AuthorNovels(ctx context.Context, authorName string, filter model.ListFilter) ([]model.Novel, int, error)
	IncrementViews(ctx context.Context, slug string) (int64, error)

	UploadCover(ctx context.Context, actor policy.Actor, slug string, data []byte) (*model.Novel, error)

	AddBookmark(ctx context.Context, actor policy.Actor, slug string) (*model.Bookmark, error)
	RemoveBookmark(ctx context.Context, actor policy.Actor, slug string) error
	ListBookmarks(ctx context.Context, actor policy.Actor) ([]model.Bookmark, error)

	// ListFeatured is public; featuring and unfeaturing are staff only.
	ListFeatured(ctx context.Context) ([]model.Featured, error)
	FeatureNovel(ctx context.Context, actor policy.Actor, req model.FeatureNovelRequest) (*model.Featured, error)
	UnfeatureNovel(ctx context.Context, actor policy.Actor, id int64) error
}

// TermResolver attaches tags and genres by name.
type TermResolver interface {
	Resolve(ctx context.Context, kind catalog.Kind, names []string) ([]catalog.Term, error)
}

// AuthorPromoter turns a reader into an author; other roles are untouched.
type AuthorPromoter interface {
	PromoteToAuthor(ctx context.Context, userID uuid.UUID) error
}

// CoverStore keeps cover image variants.
type CoverStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	DeleteByPrefix(ctx context.Context, prefix string) error
}
