package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	catalog "novelpedia-backend/internal/domains/catalog/model"
	"novelpedia-backend/internal/domains/novel/model"
)

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memoryRepo struct {
	mu        sync.Mutex
	next      int64
	novels    map[int64]*model.Novel
	terms     map[int64]map[catalog.Kind][]int64
	bookmarks map[uuid.UUID]map[int64]time.Time
	featured  []model.Featured

	// hiddenSlugChecks makes SlugExists lie, simulating a concurrent insert
	// between the check and the write.
	hiddenSlugChecks int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		novels:    map[int64]*model.Novel{},
		terms:     map[int64]map[catalog.Kind][]int64{},
		bookmarks: map[uuid.UUID]map[int64]time.Time{},
	}
}

func (m *memoryRepo) slugTaken(slug string, exclude int64) bool {
	for id, n := range m.novels {
		if n.Slug == slug && id != exclude {
			return true
		}
	}
	return false
}

func (m *memoryRepo) Create(_ context.Context, n *model.Novel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugTaken(n.Slug, 0) {
		return model.ErrSlugTaken
	}
	m.next++
	n.ID = m.next
	n.CreatedAt = time.Now()
	n.LastUpdated = n.CreatedAt
	cp := *n
	m.novels[n.ID] = &cp
	return nil
}

func (m *memoryRepo) Update(_ context.Context, n *model.Novel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.novels[n.ID]
	if !ok {
		return model.ErrNovelNotFound
	}
	if m.slugTaken(n.Slug, n.ID) {
		return model.ErrSlugTaken
	}
	cp := *n
	cp.Rating, cp.ReviewsCount = old.Rating, old.ReviewsCount
	m.novels[n.ID] = &cp
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.novels[id]; !ok {
		return model.ErrNovelNotFound
	}
	delete(m.novels, id)
	return nil
}

func (m *memoryRepo) GetBySlug(ctx context.Context, slug string) (*model.Novel, error) {
	m.mu.Lock()
	var id int64
	for nid, n := range m.novels {
		if n.Slug == slug {
			id = nid
		}
	}
	m.mu.Unlock()
	if id == 0 {
		return nil, model.ErrNovelNotFound
	}
	return m.GetByID(ctx, id)
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (*model.Novel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.novels[id]
	if !ok {
		return nil, model.ErrNovelNotFound
	}
	cp := *n
	cp.Tags = m.termList(id, catalog.KindTag)
	cp.Genres = m.termList(id, catalog.KindGenre)
	return &cp, nil
}

func (m *memoryRepo) termList(id int64, kind catalog.Kind) []catalog.Term {
	out := []catalog.Term{}
	for _, tid := range m.terms[id][kind] {
		out = append(out, catalog.Term{ID: tid})
	}
	return out
}

func (m *memoryRepo) List(_ context.Context, f model.ListFilter) ([]model.Novel, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Novel{}
	for _, n := range m.novels {
		if f.AuthorID != nil && n.AuthorID != *f.AuthorID {
			continue
		}
		if f.Author != "" && n.AuthorName != f.Author {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(n.Title), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := len(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (m *memoryRepo) SlugExists(_ context.Context, slug string, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hiddenSlugChecks > 0 {
		m.hiddenSlugChecks--
		return false, nil
	}
	return m.slugTaken(slug, excludeID), nil
}

func (m *memoryRepo) TitleExistsForAuthor(_ context.Context, authorID uuid.UUID, title string, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, n := range m.novels {
		if id != excludeID && n.AuthorID == authorID && strings.EqualFold(n.Title, title) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) SetTerms(_ context.Context, novelID int64, kind catalog.Kind, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.terms[novelID] == nil {
		m.terms[novelID] = map[catalog.Kind][]int64{}
	}
	m.terms[novelID][kind] = append([]int64{}, ids...)
	return nil
}

func (m *memoryRepo) IncrementViews(_ context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.novels[id]
	if !ok {
		return 0, model.ErrNovelNotFound
	}
	n.Views++
	return n.Views, nil
}

func (m *memoryRepo) UpdateCover(_ context.Context, id int64, cover, large *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.novels[id]
	if !ok {
		return model.ErrNovelNotFound
	}
	n.CoverImage, n.CoverImageLarge = cover, large
	return nil
}

func (m *memoryRepo) AddBookmark(_ context.Context, userID uuid.UUID, novelID int64) (*model.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bookmarks[userID] == nil {
		m.bookmarks[userID] = map[int64]time.Time{}
	}
	created, ok := m.bookmarks[userID][novelID]
	if !ok {
		created = time.Now()
		m.bookmarks[userID][novelID] = created
	}
	return &model.Bookmark{UserID: userID, NovelID: novelID, CreatedAt: created}, nil
}

func (m *memoryRepo) RemoveBookmark(_ context.Context, userID uuid.UUID, novelID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookmarks[userID][novelID]; !ok {
		return model.ErrBookmarkNotFound
	}
	delete(m.bookmarks[userID], novelID)
	return nil
}

func (m *memoryRepo) ListBookmarks(_ context.Context, userID uuid.UUID) ([]model.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Bookmark{}
	for novelID, created := range m.bookmarks[userID] {
		out = append(out, model.Bookmark{UserID: userID, NovelID: novelID, CreatedAt: created})
	}
	return out, nil
}

func (m *memoryRepo) ListFeatured(_ context.Context) ([]model.Featured, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Featured{}
	for _, f := range m.featured {
		if !f.IsActive {
			continue
		}
		if n, ok := m.novels[f.NovelID]; ok {
			cp := *n
			f.Novel = &cp
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FeaturedAt.Equal(out[j].FeaturedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].FeaturedAt.After(out[j].FeaturedAt)
	})
	return out, nil
}

func (m *memoryRepo) CreateFeatured(_ context.Context, novelID int64) (*model.Featured, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.novels[novelID]; !ok {
		return nil, model.ErrNovelNotFound
	}
	m.next++
	f := model.Featured{ID: m.next, NovelID: novelID, FeaturedAt: time.Now(), IsActive: true}
	m.featured = append(m.featured, f)
	return &f, nil
}

func (m *memoryRepo) DeactivateFeatured(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.featured {
		if m.featured[i].ID == id {
			m.featured[i].IsActive = false
			return nil
		}
	}
	return model.ErrFeaturedNotFound
}

// fakeTerms hands out stable ids per (kind, name).
type fakeTerms struct {
	next int64
	ids  map[string]int64
}

func (f *fakeTerms) Resolve(_ context.Context, kind catalog.Kind, names []string) ([]catalog.Term, error) {
	if f.ids == nil {
		f.ids = map[string]int64{}
	}
	out := []catalog.Term{}
	for _, n := range catalog.NormalizeNames(names) {
		key := string(kind) + ":" + n
		if _, ok := f.ids[key]; !ok {
			f.next++
			f.ids[key] = f.next
		}
		out = append(out, catalog.Term{ID: f.ids[key], Name: n})
	}
	return out, nil
}

type fakePromoter struct {
	promoted []uuid.UUID
}

func (f *fakePromoter) PromoteToAuthor(_ context.Context, id uuid.UUID) error {
	f.promoted = append(f.promoted, id)
	return nil
}

type fakeCovers struct {
	uploads map[string][]byte
	cleared []string
}

func (f *fakeCovers) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[key] = data
	return "http://minio.local/novelpedia/" + key, nil
}

func (f *fakeCovers) DeleteByPrefix(_ context.Context, prefix string) error {
	f.cleared = append(f.cleared, prefix)
	return nil
}
