package service

import (
	"context"

	"novelpedia-backend/internal/domains/chapter/model"
	novel "novelpedia-backend/internal/domains/novel/model"
	"novelpedia-backend/internal/policy"
)

type ServiceInterface interface {
	ListChapters(ctx context.Context, actor policy.Actor, novelSlug string, filter model.ListFilter) ([]model.Chapter, error)
	GetChapter(ctx context.Context, actor policy.Actor, id int64) (*model.Chapter, error)
	CreateChapter(ctx context.Context, actor policy.Actor, novelSlug string, req model.CreateChapterRequest) (*model.Chapter, error)
	UpdateChapter(ctx context.Context, actor policy.Actor, id int64, req model.UpdateChapterRequest) (*model.Chapter, error)
	DeleteChapter(ctx context.Context, actor policy.Actor, id int64) error
	ReorderChapters(ctx context.Context, actor policy.Actor, novelSlug string, orderedIDs []int64) ([]model.Chapter, error)
	ChapterStats(ctx context.Context, id int64) (*model.Stats, error)
	Autosave(ctx context.Context, actor policy.Actor, id int64, req model.AutosaveRequest) (*model.AutosaveResult, error)

	ListParagraphs(ctx context.Context, actor policy.Actor, chapterID int64) ([]model.Paragraph, error)
	CreateParagraph(ctx context.Context, actor policy.Actor, chapterID int64, req model.CreateParagraphRequest) (*model.Paragraph, error)
	UpdateParagraph(ctx context.Context, actor policy.Actor, id int64, req model.UpdateParagraphRequest) (*model.Paragraph, error)
	DeleteParagraph(ctx context.Context, actor policy.Actor, id int64) error
}

// NovelFinder resolves the novel a chapter list hangs off.
type NovelFinder interface {
	GetBySlug(ctx context.Context, slug string) (*novel.Novel, error)
}

// ImageStore keeps chapter hero images.
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}
