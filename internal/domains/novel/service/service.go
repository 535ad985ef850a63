package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	catalog "novelpedia-backend/internal/domains/catalog/model"
	"novelpedia-backend/internal/domains/novel/model"
	"novelpedia-backend/internal/domains/novel/repository"
	"novelpedia-backend/internal/infrastructure/storage"
	"novelpedia-backend/internal/policy"
	"novelpedia-backend/internal/shared/utils"
	pkgdb "novelpedia-backend/pkg/database"
	"novelpedia-backend/pkg/logger"
)

const (
	slugFallback    = "novel"
	maxSlugAttempts = 5
)

type novelService struct {
	repo     repository.Repository
	terms    TermResolver
	promoter AuthorPromoter
	tx       pkgdb.Transactor
	covers   CoverStore
	images   *storage.ImageProcessor
}

func NewNovelService(
	repo repository.Repository,
	terms TermResolver,
	promoter AuthorPromoter,
	tx pkgdb.Transactor,
	covers CoverStore,
	images *storage.ImageProcessor,
) ServiceInterface {
	return &novelService{
		repo:     repo,
		terms:    terms,
		promoter: promoter,
		tx:       tx,
		covers:   covers,
		images:   images,
	}
}

// =====================================================
// CREATE
// =====================================================

func (s *novelService) CreateNovel(ctx context.Context, actor policy.Actor, req model.CreateNovelRequest) (*model.Novel, error) {
	if err := policy.RequireCreateNovel(actor); err != nil {
		return nil, err
	}

	// Step 1: validate
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, model.NewInvalidInputError(err)
	}
	dup, err := s.repo.TitleExistsForAuthor(ctx, actor.ID, req.Title, 0)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, model.NewDuplicateTitleError()
	}

	n := &model.Novel{
		Title:          req.Title,
		Synopsis:       req.Synopsis,
		ShortSynopsis:  req.ShortSynopsis,
		AuthorID:       actor.ID,
		TargetAudience: req.TargetAudience,
		Language:       req.Language,
		UpdateSchedule: req.UpdateSchedule,
		PlannedLength:  req.PlannedLength,
		MaturityRating: req.MaturityRating,
		Status:         req.Status,
	}

	// Step 2: insert, attach terms and promote in one transaction
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.resolvePrimaryGenre(ctx, n, req.PrimaryGenreName); err != nil {
			return err
		}
		if err := s.saveWithSlug(ctx, n, s.repo.Create); err != nil {
			return err
		}
		if err := s.attach(ctx, n, catalog.KindTag, req.TagNames); err != nil {
			return err
		}
		if err := s.attach(ctx, n, catalog.KindGenre, req.GenreNames); err != nil {
			return err
		}
		if policy.ShouldPromoteToAuthor(actor.Role) {
			if err := s.promoter.PromoteToAuthor(ctx, actor.ID); err != nil {
				return fmt.Errorf("promote author: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("novel created", map[string]interface{}{
		"novel_id": n.ID,
		"slug":     n.Slug,
		"user_id":  actor.ID.String(),
	})
	return s.repo.GetByID(ctx, n.ID)
}

// =====================================================
// UPDATE / DELETE
// =====================================================

func (s *novelService) UpdateNovel(ctx context.Context, actor policy.Actor, slug string, req model.UpdateNovelRequest) (*model.Novel, error) {
	n, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireModifyNovel(actor, n.AuthorID); err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, model.NewInvalidInputError(err)
	}
	req.Apply(n)

	if req.Title != nil {
		dup, err := s.repo.TitleExistsForAuthor(ctx, n.AuthorID, n.Title, n.ID)
		if err != nil {
			return nil, err
		}
		if dup {
			return nil, model.NewDuplicateTitleError()
		}
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if req.PrimaryGenreName != nil {
			if err := s.resolvePrimaryGenre(ctx, n, *req.PrimaryGenreName); err != nil {
				return err
			}
		}

		if req.ClearSlug {
			n.Slug = ""
			if err := s.saveWithSlug(ctx, n, s.repo.Update); err != nil {
				return err
			}
		} else if err := s.repo.Update(ctx, n); err != nil {
			return err
		}

		if req.TagNames != nil {
			if err := s.attach(ctx, n, catalog.KindTag, *req.TagNames); err != nil {
				return err
			}
		}
		if req.GenreNames != nil {
			if err := s.attach(ctx, n, catalog.KindGenre, *req.GenreNames); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, n.ID)
}

func (s *novelService) DeleteNovel(ctx context.Context, actor policy.Actor, slug string) error {
	n, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := policy.RequireModifyNovel(actor, n.AuthorID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, n.ID); err != nil {
		return err
	}

	if n.CoverImage != nil {
		if err := s.covers.DeleteByPrefix(ctx, coverPrefix(n.ID)); err != nil {
			logger.Warn("failed to remove cover images", err, map[string]interface{}{"novel_id": n.ID})
		}
	}
	logger.Info("novel deleted", map[string]interface{}{"novel_id": n.ID, "user_id": actor.ID.String()})
	return nil
}

// =====================================================
// SLUG ASSIGNMENT
// =====================================================

// assignSlug picks base, base-2, base-3, ... skipping slugs held by other
// novels.
func (s *novelService) assignSlug(ctx context.Context, n *model.Novel) error {
	base := utils.Slugify(n.Title)
	if base == "" {
		base = slugFallback
	}

	candidate := base
	suffix := 1
	for {
		exists, err := s.repo.SlugExists(ctx, candidate, n.ID)
		if err != nil {
			return err
		}
		if !exists {
			break
		}
		suffix++
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}

	n.Slug = candidate
	return nil
}

// saveWithSlug assigns a slug and saves. A concurrent writer can take the
// slug between the check and the write; the unique constraint reports it
// and the assignment is retried.
func (s *novelService) saveWithSlug(ctx context.Context, n *model.Novel, save func(context.Context, *model.Novel) error) error {
	for attempt := 1; ; attempt++ {
		if err := s.assignSlug(ctx, n); err != nil {
			return err
		}

		err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			return save(ctx, n)
		})
		if !errors.Is(err, model.ErrSlugTaken) || attempt == maxSlugAttempts {
			return err
		}

		logger.Warn("slug taken concurrently, retrying", err, map[string]interface{}{
			"slug":    n.Slug,
			"attempt": attempt,
		})
	}
}

// =====================================================
// TERMS
// =====================================================

func (s *novelService) attach(ctx context.Context, n *model.Novel, kind catalog.Kind, names []string) error {
	terms, err := s.terms.Resolve(ctx, kind, names)
	if err != nil {
		return err
	}
	ids := make([]int64, len(terms))
	for i, t := range terms {
		ids[i] = t.ID
	}
	if err := s.repo.SetTerms(ctx, n.ID, kind, ids); err != nil {
		return err
	}
	if kind == catalog.KindTag {
		n.Tags = terms
	} else {
		n.Genres = terms
	}
	return nil
}

// resolvePrimaryGenre get-or-creates the genre; a blank name clears it.
func (s *novelService) resolvePrimaryGenre(ctx context.Context, n *model.Novel, name string) error {
	terms, err := s.terms.Resolve(ctx, catalog.KindGenre, []string{name})
	if err != nil {
		return err
	}
	if len(terms) == 0 {
		n.PrimaryGenreID, n.PrimaryGenre = nil, nil
		return nil
	}
	n.PrimaryGenreID = &terms[0].ID
	n.PrimaryGenre = &terms[0]
	return nil
}

// =====================================================
// READS
// =====================================================

func (s *novelService) GetNovel(ctx context.Context, slug string) (*model.Novel, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *novelService) ListNovels(ctx context.Context, filter model.ListFilter) ([]model.Novel, int, error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

func (s *novelService) Trending(ctx context.Context) ([]model.Novel, error) {
	novels, _, err := s.repo.List(ctx, model.ListFilter{Ordering: "trending", Limit: model.TrendingLimit})
	return novels, err
}

func (s *novelService) Latest(ctx context.Context) ([]model.Novel, error) {
	novels, _, err := s.repo.List(ctx, model.ListFilter{Ordering: "-created_at", Limit: model.LatestLimit})
	return novels, err
}

func (s *novelService) MyNovels(ctx context.Context, actor policy.Actor, filter model.ListFilter) ([]model.Novel, int, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, 0, err
	}
	id := actor.ID
	filter.AuthorID = &id
	filter.Author = ""
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

func (s *novelService) AuthorNovels(ctx context.Context, authorName string, filter model.ListFilter) ([]model.Novel, int, error) {
	filter.Author = authorName
	filter.AuthorID = nil
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

func (s *novelService) IncrementViews(ctx context.Context, slug string) (int64, error) {
	n, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return 0, err
	}
	return s.repo.IncrementViews(ctx, n.ID)
}

// =====================================================
// COVER
// =====================================================

func (s *novelService) UploadCover(ctx context.Context, actor policy.Actor, slug string, data []byte) (*model.Novel, error) {
	n, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireModifyNovel(actor, n.AuthorID); err != nil {
		return nil, err
	}

	img, err := s.images.ValidateImage(data)
	if err != nil {
		return nil, model.NewInvalidCoverError(err)
	}
	if img.Format != "jpeg" && img.Format != "png" {
		return nil, model.NewInvalidCoverError(storage.ErrUnsupported)
	}
	variants, err := s.images.ProcessCover(img.Data)
	if err != nil {
		return nil, model.NewInvalidCoverError(err)
	}

	if err := s.covers.DeleteByPrefix(ctx, coverPrefix(n.ID)); err != nil {
		logger.Warn("failed to remove old cover", err, map[string]interface{}{"novel_id": n.ID})
	}

	batch := uuid.NewString()
	urls := make(map[string]string, len(variants))
	for name, body := range variants {
		key := fmt.Sprintf("%s%s_%s.jpg", coverPrefix(n.ID), batch, name)
		url, err := s.covers.Upload(ctx, key, body, "image/jpeg")
		if err != nil {
			return nil, err
		}
		urls[name] = url
	}

	cover, large := urls["cover"], urls["large"]
	if err := s.repo.UpdateCover(ctx, n.ID, &cover, &large); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, n.ID)
}

func coverPrefix(novelID int64) string {
	return fmt.Sprintf("novels/%d/cover/", novelID)
}

// =====================================================
// BOOKMARKS
// =====================================================

func (s *novelService) AddBookmark(ctx context.Context, actor policy.Actor, slug string) (*model.Bookmark, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	n, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	b, err := s.repo.AddBookmark(ctx, actor.ID, n.ID)
	if err != nil {
		return nil, err
	}
	b.Novel = n
	return b, nil
}

func (s *novelService) RemoveBookmark(ctx context.Context, actor policy.Actor, slug string) error {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return err
	}
	n, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return s.repo.RemoveBookmark(ctx, actor.ID, n.ID)
}

func (s *novelService) ListBookmarks(ctx context.Context, actor policy.Actor) ([]model.Bookmark, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	return s.repo.ListBookmarks(ctx, actor.ID)
}

// =====================================================
// FEATURED
// =====================================================

func (s *novelService) ListFeatured(ctx context.Context) ([]model.Featured, error) {
	return s.repo.ListFeatured(ctx)
}

func (s *novelService) FeatureNovel(ctx context.Context, actor policy.Actor, req model.FeatureNovelRequest) (*model.Featured, error) {
	if err := policy.Require(actor, actor.IsStaff(), "Only staff can feature novels"); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, model.NewInvalidInputError(err)
	}
	n, err := s.repo.GetByID(ctx, req.NovelID)
	if err != nil {
		return nil, err
	}

	f, err := s.repo.CreateFeatured(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	f.Novel = n

	logger.Info("novel featured", map[string]interface{}{
		"novel_id":    n.ID,
		"featured_id": f.ID,
		"by":          actor.ID.String(),
	})
	return f, nil
}

func (s *novelService) UnfeatureNovel(ctx context.Context, actor policy.Actor, id int64) error {
	if err := policy.Require(actor, actor.IsStaff(), "Only staff can feature novels"); err != nil {
		return err
	}
	return s.repo.DeactivateFeatured(ctx, id)
}
