package service

import (
	"context"
	"sort"
	"time"

	"novelpedia-backend/internal/domains/comment/model"
)

type memoryRepo struct {
	next       int64
	comments   map[int64]*model.Comment
	chapters   map[int64]bool
	paragraphs map[int64]bool
	clock      time.Time
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		comments:   map[int64]*model.Comment{},
		chapters:   map[int64]bool{},
		paragraphs: map[int64]bool{},
		clock:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// put stores c as-is, bypassing the service's parent checks.
func (m *memoryRepo) put(c model.Comment) {
	if c.ID > m.next {
		m.next = c.ID
	}
	m.clock = m.clock.Add(time.Second)
	c.CreatedAt = m.clock
	m.comments[c.ID] = &c
}

func (m *memoryRepo) Create(_ context.Context, c *model.Comment) error {
	m.next++
	c.ID = m.next
	m.put(*c)
	c.CreatedAt = m.comments[c.ID].CreatedAt
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (*model.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memoryRepo) UpdateText(_ context.Context, c *model.Comment) error {
	stored, ok := m.comments[c.ID]
	if !ok {
		return model.ErrCommentNotFound
	}
	stored.Text = c.Text
	return nil
}

// Delete mirrors ON DELETE CASCADE on parent_id.
func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.comments[id]; !ok {
		return model.ErrCommentNotFound
	}
	doomed := []int64{id}
	for len(doomed) > 0 {
		cur := doomed[0]
		doomed = doomed[1:]
		delete(m.comments, cur)
		for _, c := range m.comments {
			if c.ParentID != nil && *c.ParentID == cur {
				doomed = append(doomed, c.ID)
			}
		}
	}
	return nil
}

func (m *memoryRepo) AllByTarget(_ context.Context, target model.Target) ([]model.Comment, error) {
	out := []model.Comment{}
	for _, c := range m.comments {
		if c.Target == target {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryRepo) ListByTarget(ctx context.Context, target model.Target, limit, offset int) ([]model.Comment, int, error) {
	all, _ := m.AllByTarget(ctx, target)
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memoryRepo) TargetExists(_ context.Context, target model.Target) (bool, error) {
	if target.Kind == model.TargetParagraph {
		return m.paragraphs[target.ID], nil
	}
	return m.chapters[target.ID], nil
}
