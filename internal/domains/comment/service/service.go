package service

import (
	"context"
	"errors"

	"novelpedia-backend/internal/domains/comment/model"
	"novelpedia-backend/internal/domains/comment/repository"
	"novelpedia-backend/internal/policy"
	"novelpedia-backend/pkg/logger"
)

type commentService struct {
	repo repository.CommentRepository
}

func NewCommentService(repo repository.CommentRepository) ServiceInterface {
	return &commentService{repo: repo}
}

// =====================================================
// READ
// =====================================================

func (s *commentService) ListComments(ctx context.Context, req model.ListCommentsRequest) (*model.ListCommentsResponse, error) {
	target, err := model.NewTarget(req.Chapter, req.Paragraph)
	if err != nil {
		return nil, err
	}
	req.Normalize()

	comments, total, err := s.repo.ListByTarget(ctx, target, req.Limit, req.Offset())
	if err != nil {
		return nil, err
	}
	return &model.ListCommentsResponse{
		Comments: comments,
		Total:    total,
		Page:     req.Page,
		Limit:    req.Limit,
	}, nil
}

func (s *commentService) GetComment(ctx context.Context, id int64) (*model.Comment, error) {
	return s.repo.GetByID(ctx, id)
}

// Thread walks the reply tree under id with an explicit stack. Replies are
// visited oldest first. A comment reached twice is emitted once, so a
// malformed parent chain cannot loop.
func (s *commentService) Thread(ctx context.Context, id int64) ([]model.ThreadEntry, error) {
	root, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	all, err := s.repo.AllByTarget(ctx, root.Target)
	if err != nil {
		return nil, err
	}
	replies := make(map[int64][]model.Comment)
	for _, c := range all {
		if c.ParentID != nil {
			replies[*c.ParentID] = append(replies[*c.ParentID], c)
		}
	}

	type frame struct {
		comment model.Comment
		depth   int
	}
	var (
		thread  []model.ThreadEntry
		visited = map[int64]bool{}
		stack   = []frame{{comment: *root}}
	)
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[top.comment.ID] {
			continue
		}
		visited[top.comment.ID] = true
		thread = append(thread, model.ThreadEntry{Comment: top.comment, Depth: top.depth})

		children := replies[top.comment.ID]
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{comment: children[i], depth: top.depth + 1})
		}
	}
	return thread, nil
}

// =====================================================
// WRITE
// =====================================================

func (s *commentService) CreateComment(ctx context.Context, actor policy.Actor, req model.CreateCommentRequest) (*model.Comment, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	target, err := req.Validate()
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.TargetExists(ctx, target)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.NewTargetNotFoundError(target)
	}

	// A reply lives on the same target as its parent
	if req.Parent != nil {
		parent, err := s.repo.GetByID(ctx, *req.Parent)
		if err != nil {
			if errors.Is(err, model.ErrCommentNotFound) {
				return nil, model.ErrParentNotFound
			}
			return nil, err
		}
		if parent.Target != target {
			return nil, model.ErrParentElsewhere
		}
	}

	comment := &model.Comment{
		UserID:   actor.ID,
		Target:   target,
		ParentID: req.Parent,
		Text:     req.Text,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}

	logger.Info("comment created", map[string]interface{}{
		"comment_id":  comment.ID,
		"target_kind": string(target.Kind),
		"target_id":   target.ID,
		"user_id":     actor.ID.String(),
	})

	return s.repo.GetByID(ctx, comment.ID)
}

func (s *commentService) UpdateComment(ctx context.Context, actor policy.Actor, id int64, req model.UpdateCommentRequest) (*model.Comment, error) {
	comment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireModifyComment(actor, comment.UserID); err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, model.NewInvalidInputError(err)
	}
	comment.Text = req.Text

	if err := s.repo.UpdateText(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) DeleteComment(ctx context.Context, actor policy.Actor, id int64) error {
	comment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.RequireModifyComment(actor, comment.UserID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info("comment deleted", map[string]interface{}{
		"comment_id": id,
		"user_id":    actor.ID.String(),
	})
	return nil
}
