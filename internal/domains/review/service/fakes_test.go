package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"novelpedia-backend/internal/domains/review/model"
)

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type novelRow struct {
	authorID uuid.UUID
	rating   decimal.Decimal
	count    int
}

type memoryRepo struct {
	mu      sync.Mutex
	next    int64
	reviews map[int64]*model.Review
	novels  map[int64]*novelRow
	locked  []int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		reviews: map[int64]*model.Review{},
		novels:  map[int64]*novelRow{},
	}
}

func (m *memoryRepo) addNovel(id int64, author uuid.UUID) {
	m.novels[id] = &novelRow{authorID: author}
}

func (m *memoryRepo) Create(_ context.Context, r *model.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	r.ID = m.next
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	m.reviews[r.ID] = &cp
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (*model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, model.ErrReviewNotFound
	}
	cp := *r
	cp.NovelAuthorID = m.novels[r.NovelID].authorID
	return &cp, nil
}

func (m *memoryRepo) Update(_ context.Context, r *model.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.reviews[r.ID]
	if !ok {
		return model.ErrReviewNotFound
	}
	stored.Rating = r.Rating
	stored.Comment = r.Comment
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[id]; !ok {
		return model.ErrReviewNotFound
	}
	delete(m.reviews, id)
	return nil
}

func (m *memoryRepo) List(_ context.Context, req model.ListReviewsRequest) ([]model.Review, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Review{}
	for _, r := range m.reviews {
		if req.NovelID != nil && r.NovelID != *req.NovelID {
			continue
		}
		if req.UserID != nil && r.UserID != *req.UserID {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := len(out)
	start := req.Offset()
	if start > total {
		start = total
	}
	end := start + req.Limit
	if end > total {
		end = total
	}
	return out[start:end], total, nil
}

func (m *memoryRepo) LockNovel(_ context.Context, novelID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.novels[novelID]; !ok {
		return model.ErrNovelNotFound
	}
	m.locked = append(m.locked, novelID)
	return nil
}

func (m *memoryRepo) Ratings(_ context.Context, novelID int64) ([]decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []decimal.Decimal{}
	for _, r := range m.reviews {
		if r.NovelID == novelID {
			out = append(out, r.Rating)
		}
	}
	return out, nil
}

func (m *memoryRepo) SetNovelRating(_ context.Context, novelID int64, rating decimal.Decimal, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.novels[novelID]
	n.rating, n.count = rating, count
	return nil
}
