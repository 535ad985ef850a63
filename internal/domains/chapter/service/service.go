package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"novelpedia-backend/internal/aggregate"
	"novelpedia-backend/internal/domains/chapter/model"
	"novelpedia-backend/internal/domains/chapter/repository"
	"novelpedia-backend/internal/infrastructure/storage"
	"novelpedia-backend/internal/metrics"
	"novelpedia-backend/internal/policy"
	pkgdb "novelpedia-backend/pkg/database"
	"novelpedia-backend/pkg/logger"
)

const autosaveStatus = "autosaved"

type chapterService struct {
	repo   repository.Repository
	novels NovelFinder
	tx     pkgdb.Transactor
	store  ImageStore
	images *storage.ImageProcessor
}

func NewChapterService(
	repo repository.Repository,
	novels NovelFinder,
	tx pkgdb.Transactor,
	store ImageStore,
	images *storage.ImageProcessor,
) ServiceInterface {
	return &chapterService{
		repo:   repo,
		novels: novels,
		tx:     tx,
		store:  store,
		images: images,
	}
}

// visible hides drafts from everyone but the novel's author and staff.
func visible(actor policy.Actor, c *model.Chapter) bool {
	return c.IsPublished() || policy.CanSeeDraftChapters(actor, c.NovelAuthorID)
}

// =====================================================
// READS
// =====================================================

func (s *chapterService) ListChapters(ctx context.Context, actor policy.Actor, novelSlug string, filter model.ListFilter) ([]model.Chapter, error) {
	n, err := s.novels.GetBySlug(ctx, novelSlug)
	if err != nil {
		return nil, err
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.List(ctx, n.ID, filter, policy.CanSeeDraftChapters(actor, n.AuthorID))
}

// GetChapter reports a hidden draft as not found.
func (s *chapterService) GetChapter(ctx context.Context, actor policy.Actor, id int64) (*model.Chapter, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(actor, c) {
		return nil, model.ErrChapterNotFound
	}
	paragraphs, err := s.repo.ListParagraphs(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Paragraphs = paragraphs
	return c, nil
}

func (s *chapterService) ChapterStats(ctx context.Context, id int64) (*model.Stats, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.Stats{WordCount: c.WordCount, TotalViews: c.TotalViews}, nil
}

// =====================================================
// CHAPTER WRITES
// =====================================================

func (s *chapterService) CreateChapter(ctx context.Context, actor policy.Actor, novelSlug string, req model.CreateChapterRequest) (*model.Chapter, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	n, err := s.novels.GetBySlug(ctx, novelSlug)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireModifyChapter(actor, n.AuthorID); err != nil {
		return nil, err
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, model.NewInvalidInputError(err)
	}

	c := &model.Chapter{
		NovelID:       n.ID,
		NovelAuthorID: n.AuthorID,
		Title:         req.Title,
		Status:        req.Status,
		ContentHTML:   req.ContentHTML,
		ContentDelta:  req.ContentDelta,
		WordCount:     aggregate.HTMLWordCount(req.ContentHTML),
	}

	// The novel row lock serializes concurrent creations so max+1 is unique.
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.LockNovel(ctx, n.ID); err != nil {
			return err
		}
		last, err := s.repo.MaxNumber(ctx, n.ID)
		if err != nil {
			return err
		}
		c.Number = last + 1
		if err := s.repo.Create(ctx, c); err != nil {
			return err
		}
		if c.IsPublished() {
			return s.repo.TouchNovel(ctx, n.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("chapter created", map[string]interface{}{
		"chapter_id": c.ID,
		"novel_id":   n.ID,
		"number":     c.Number,
	})
	return c, nil
}

func (s *chapterService) UpdateChapter(ctx context.Context, actor policy.Actor, id int64, req model.UpdateChapterRequest) (*model.Chapter, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, model.NewInvalidInputError(err)
	}

	var c *model.Chapter
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if err := policy.RequireModifyChapter(actor, c.NovelAuthorID); err != nil {
			return err
		}

		req.Apply(c)
		if req.ContentHTML != nil {
			if err := s.recountFromHTML(ctx, c); err != nil {
				return err
			}
		}
		if err := s.repo.Update(ctx, c); err != nil {
			return err
		}
		if c.IsPublished() {
			return s.repo.TouchNovel(ctx, c.NovelID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// recountFromHTML derives the word count from content_html unless the
// chapter keeps its text in paragraphs.
func (s *chapterService) recountFromHTML(ctx context.Context, c *model.Chapter) error {
	texts, err := s.repo.ParagraphTexts(ctx, c.ID)
	if err != nil {
		return err
	}
	if len(texts) > 0 {
		c.WordCount = aggregate.ParagraphWordCount(texts)
	} else {
		c.WordCount = aggregate.HTMLWordCount(c.ContentHTML)
	}
	metrics.RecordRecompute(metrics.RecomputeWordCount)
	return nil
}

func (s *chapterService) DeleteChapter(ctx context.Context, actor policy.Actor, id int64) error {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return err
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.RequireModifyChapter(actor, c.NovelAuthorID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if c.HeroImage != nil {
		s.removeImage(ctx, c.ID, *c.HeroImage)
	}
	logger.Info("chapter deleted", map[string]interface{}{"chapter_id": id, "user_id": actor.ID.String()})
	return nil
}

// ReorderChapters gives orderedIDs[i] the number i+1. The ids must be a
// permutation of the novel's chapters.
func (s *chapterService) ReorderChapters(ctx context.Context, actor policy.Actor, novelSlug string, orderedIDs []int64) ([]model.Chapter, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	n, err := s.novels.GetBySlug(ctx, novelSlug)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireModifyChapter(actor, n.AuthorID); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.LockNovel(ctx, n.ID); err != nil {
			return err
		}
		current, err := s.repo.IDsByNovel(ctx, n.ID)
		if err != nil {
			return err
		}
		if !isPermutation(current, orderedIDs) {
			return model.NewInvalidOrderError()
		}
		return s.repo.Renumber(ctx, n.ID, orderedIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, n.ID, model.ListFilter{}, true)
}

func isPermutation(current, ordered []int64) bool {
	if len(current) != len(ordered) {
		return false
	}
	seen := make(map[int64]bool, len(current))
	for _, id := range current {
		seen[id] = false
	}
	for _, id := range ordered {
		used, ok := seen[id]
		if !ok || used {
			return false
		}
		seen[id] = true
	}
	return true
}

// =====================================================
// AUTOSAVE
// =====================================================

func (s *chapterService) Autosave(ctx context.Context, actor policy.Actor, id int64, req model.AutosaveRequest) (*model.AutosaveResult, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireModifyChapter(actor, c.NovelAuthorID); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, model.NewInvalidInputError(err)
	}

	// Step 1: store the hero image outside the transaction
	oldHero := c.HeroImage
	var newHeroURL string
	if req.HeroImageData != nil {
		newHeroURL, err = s.storeHero(ctx, c.ID, *req.HeroImageData)
		if err != nil {
			return nil, err
		}
	}

	// Step 2: apply the edits and recount under the chapter lock
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		c = locked

		if req.Title != nil {
			c.Title = strings.TrimSpace(*req.Title)
		}
		if req.ContentHTML != nil {
			c.ContentHTML = *req.ContentHTML
		}
		if len(req.ContentDelta) > 0 {
			c.ContentDelta = req.ContentDelta
		}
		if req.HeroImageData != nil {
			if newHeroURL == "" {
				c.HeroImage = nil
			} else {
				c.HeroImage = &newHeroURL
				if c.ContentHTML != "" {
					c.ContentHTML = strings.ReplaceAll(c.ContentHTML, *req.HeroImageData, newHeroURL)
				}
			}
		}

		switch {
		case req.Paragraphs != nil:
			if _, err := s.repo.ReplaceParagraphs(ctx, c.ID, *req.Paragraphs); err != nil {
				return err
			}
			c.WordCount = aggregate.ParagraphWordCount(*req.Paragraphs)
			metrics.RecordRecompute(metrics.RecomputeWordCount)
		case req.ContentHTML != nil:
			c.WordCount = aggregate.HTMLWordCount(c.ContentHTML)
			metrics.RecordRecompute(metrics.RecomputeWordCount)
		}

		return s.repo.Update(ctx, c)
	})
	if err != nil {
		if newHeroURL != "" {
			s.removeImage(ctx, c.ID, newHeroURL)
		}
		return nil, err
	}

	if req.HeroImageData != nil && oldHero != nil {
		s.removeImage(ctx, c.ID, *oldHero)
	}

	result := &model.AutosaveResult{
		Status:       autosaveStatus,
		WordCount:    c.WordCount,
		HeroImageURL: c.HeroImage,
	}
	if req.ContentHTML != nil || newHeroURL != "" {
		html := c.ContentHTML
		result.ContentHTML = &html
	}
	if len(req.ContentDelta) > 0 {
		result.ContentDelta = c.ContentDelta
	}
	return result, nil
}

// storeHero uploads a data URL and returns its public URL. An empty payload
// means the image is being cleared and returns "".
func (s *chapterService) storeHero(ctx context.Context, chapterID int64, dataURL string) (string, error) {
	if dataURL == "" {
		return "", nil
	}
	img, err := s.images.DecodeDataURL(dataURL)
	if err != nil {
		return "", model.NewInvalidImageError(err)
	}
	key := fmt.Sprintf("chapters/%d/hero/%s.%s", chapterID, uuid.NewString(), img.Ext())
	return s.store.Upload(ctx, key, img.Data, img.ContentType())
}

func (s *chapterService) removeImage(ctx context.Context, chapterID int64, url string) {
	key, ok := s.store.KeyFromURL(url)
	if !ok {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		logger.Warn("failed to remove hero image", err, map[string]interface{}{"chapter_id": chapterID})
	}
}

// =====================================================
// PARAGRAPHS
// =====================================================

func (s *chapterService) ListParagraphs(ctx context.Context, actor policy.Actor, chapterID int64) ([]model.Paragraph, error) {
	c, err := s.repo.GetByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if !visible(actor, c) {
		return nil, model.ErrChapterNotFound
	}
	return s.repo.ListParagraphs(ctx, chapterID)
}

func (s *chapterService) CreateParagraph(ctx context.Context, actor policy.Actor, chapterID int64, req model.CreateParagraphRequest) (*model.Paragraph, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, model.NewInvalidInputError(err)
	}

	p := &model.Paragraph{ChapterID: chapterID, UID: req.UID, Text: req.Text}
	if p.UID == "" {
		p.UID = uuid.NewString()
	}

	err := s.recount(ctx, actor, chapterID, func(ctx context.Context, existing int) error {
		if req.Order != nil {
			p.Order = *req.Order
		} else {
			p.Order = existing
		}
		return s.repo.CreateParagraph(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *chapterService) UpdateParagraph(ctx context.Context, actor policy.Actor, id int64, req model.UpdateParagraphRequest) (*model.Paragraph, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, model.NewInvalidInputError(err)
	}
	p, err := s.repo.GetParagraph(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.recount(ctx, actor, p.ChapterID, func(ctx context.Context, _ int) error {
		if req.Text != nil {
			p.Text = *req.Text
		}
		if req.Order != nil {
			p.Order = *req.Order
		}
		return s.repo.UpdateParagraph(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *chapterService) DeleteParagraph(ctx context.Context, actor policy.Actor, id int64) error {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return err
	}
	p, err := s.repo.GetParagraph(ctx, id)
	if err != nil {
		return err
	}
	return s.recount(ctx, actor, p.ChapterID, func(ctx context.Context, _ int) error {
		return s.repo.DeleteParagraph(ctx, id)
	})
}

// recount runs a paragraph mutation with the chapter row locked, then
// re-reads every paragraph and writes word_count in the same transaction.
// mutate receives the paragraph count before the change.
func (s *chapterService) recount(ctx context.Context, actor policy.Actor, chapterID int64, mutate func(ctx context.Context, existing int) error) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.repo.LockByID(ctx, chapterID)
		if err != nil {
			return err
		}
		if err := policy.RequireModifyParagraph(actor, c.NovelAuthorID); err != nil {
			return err
		}

		before, err := s.repo.ParagraphTexts(ctx, chapterID)
		if err != nil {
			return err
		}
		if err := mutate(ctx, len(before)); err != nil {
			return err
		}

		texts, err := s.repo.ParagraphTexts(ctx, chapterID)
		if err != nil {
			return err
		}
		return s.repo.SetWordCount(ctx, chapterID, aggregate.ParagraphWordCount(texts))
	})
	if err != nil {
		return err
	}
	metrics.RecordRecompute(metrics.RecomputeWordCount)
	return nil
}
