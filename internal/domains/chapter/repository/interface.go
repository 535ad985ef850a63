package repository

import (
	"context"

	"novelpedia-backend/internal/domains/chapter/model"
)

type Repository interface {
	// Create inserts c with the number already chosen by the caller.
	Create(ctx context.Context, c *model.Chapter) error
	// Update writes the editable columns, hero image and word count.
	Update(ctx context.Context, c *model.Chapter) error
	Delete(ctx context.Context, id int64) error

	// GetByID fills NovelAuthorID from the owning novel.
	GetByID(ctx context.Context, id int64) (*model.Chapter, error)
	// LockByID is GetByID with the chapter row locked until the end of the
	// transaction.
	LockByID(ctx context.Context, id int64) (*model.Chapter, error)
	// List orders by number. Drafts are left out unless includeDrafts.
	List(ctx context.Context, novelID int64, filter model.ListFilter, includeDrafts bool) ([]model.Chapter, error)

	// LockNovel takes the novel row lock that serializes numbering.
	// A novel deleted since it was looked up yields model.ErrNovelNotFound.
	LockNovel(ctx context.Context, novelID int64) error
	// TouchNovel bumps novels.last_updated.
	TouchNovel(ctx context.Context, novelID int64) error
	MaxNumber(ctx context.Context, novelID int64) (int, error)
	IDsByNovel(ctx context.Context, novelID int64) ([]int64, error)
	// Renumber gives ids[i] the number i+1.
	Renumber(ctx context.Context, novelID int64, ids []int64) error
	SetWordCount(ctx context.Context, id int64, count int) error

	ListParagraphs(ctx context.Context, chapterID int64) ([]model.Paragraph, error)
	ParagraphTexts(ctx context.Context, chapterID int64) ([]string, error)
	GetParagraph(ctx context.Context, id int64) (*model.Paragraph, error)
	// CreateParagraph returns model.ErrUIDTaken on a uid collision.
	CreateParagraph(ctx context.Context, p *model.Paragraph) error
	UpdateParagraph(ctx context.Context, p *model.Paragraph) error
	DeleteParagraph(ctx context.Context, id int64) error
	// ReplaceParagraphs drops every paragraph of the chapter and inserts
	// texts in order with fresh uids.
	ReplaceParagraphs(ctx context.Context, chapterID int64, texts []string) ([]model.Paragraph, error)
}
