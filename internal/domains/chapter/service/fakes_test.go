package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"novelpedia-backend/internal/domains/chapter/model"
	novel "novelpedia-backend/internal/domains/novel/model"
)

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeNovels struct {
	bySlug map[string]*novel.Novel
}

func (f *fakeNovels) add(id int64, slug string, author uuid.UUID) {
	if f.bySlug == nil {
		f.bySlug = map[string]*novel.Novel{}
	}
	f.bySlug[slug] = &novel.Novel{ID: id, Slug: slug, AuthorID: author}
}

func (f *fakeNovels) GetBySlug(_ context.Context, slug string) (*novel.Novel, error) {
	n, ok := f.bySlug[slug]
	if !ok {
		return nil, novel.ErrNovelNotFound
	}
	cp := *n
	return &cp, nil
}

var errDuplicateNumber = errors.New("duplicate chapter number")

type memoryRepo struct {
	mu         sync.Mutex
	nextID     int64
	chapters   map[int64]*model.Chapter
	paragraphs map[int64]*model.Paragraph
	touched    map[int64]int
	locks      []int64
	gone       map[int64]bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		chapters:   map[int64]*model.Chapter{},
		paragraphs: map[int64]*model.Paragraph{},
		touched:    map[int64]int{},
		gone:       map[int64]bool{},
	}
}

func (m *memoryRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memoryRepo) Create(_ context.Context, c *model.Chapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.chapters {
		if other.NovelID == c.NovelID && other.Number == c.Number {
			return errDuplicateNumber
		}
	}
	c.ID = m.id()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.chapters[c.ID] = &cp
	return nil
}

func (m *memoryRepo) Update(_ context.Context, c *model.Chapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.chapters[c.ID]; !ok {
		return model.ErrChapterNotFound
	}
	c.UpdatedAt = time.Now()
	cp := *c
	cp.Paragraphs = nil
	m.chapters[c.ID] = &cp
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.chapters[id]; !ok {
		return model.ErrChapterNotFound
	}
	delete(m.chapters, id)
	for pid, p := range m.paragraphs {
		if p.ChapterID == id {
			delete(m.paragraphs, pid)
		}
	}
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (*model.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chapters[id]
	if !ok {
		return nil, model.ErrChapterNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memoryRepo) LockByID(ctx context.Context, id int64) (*model.Chapter, error) {
	m.mu.Lock()
	m.locks = append(m.locks, id)
	m.mu.Unlock()
	return m.GetByID(ctx, id)
}

func (m *memoryRepo) List(_ context.Context, novelID int64, f model.ListFilter, includeDrafts bool) ([]model.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Chapter{}
	for _, c := range m.chapters {
		if c.NovelID != novelID {
			continue
		}
		if !includeDrafts && !c.IsPublished() {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *memoryRepo) LockNovel(_ context.Context, novelID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gone[novelID] {
		return model.ErrNovelNotFound
	}
	m.locks = append(m.locks, -novelID)
	return nil
}

func (m *memoryRepo) TouchNovel(_ context.Context, novelID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched[novelID]++
	return nil
}

func (m *memoryRepo) MaxNumber(_ context.Context, novelID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	last := 0
	for _, c := range m.chapters {
		if c.NovelID == novelID && c.Number > last {
			last = c.Number
		}
	}
	return last, nil
}

func (m *memoryRepo) IDsByNovel(ctx context.Context, novelID int64) ([]int64, error) {
	chapters, _ := m.List(ctx, novelID, model.ListFilter{}, true)
	ids := make([]int64, len(chapters))
	for i, c := range chapters {
		ids[i] = c.ID
	}
	return ids, nil
}

func (m *memoryRepo) Renumber(_ context.Context, _ int64, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		m.chapters[id].Number = i + 1
	}
	return nil
}

func (m *memoryRepo) SetWordCount(_ context.Context, id int64, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chapters[id]
	if !ok {
		return model.ErrChapterNotFound
	}
	c.WordCount = count
	return nil
}

func (m *memoryRepo) ListParagraphs(_ context.Context, chapterID int64) ([]model.Paragraph, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Paragraph{}
	for _, p := range m.paragraphs {
		if p.ChapterID == chapterID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memoryRepo) ParagraphTexts(ctx context.Context, chapterID int64) ([]string, error) {
	paragraphs, _ := m.ListParagraphs(ctx, chapterID)
	texts := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		texts[i] = p.Text
	}
	return texts, nil
}

func (m *memoryRepo) GetParagraph(_ context.Context, id int64) (*model.Paragraph, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.paragraphs[id]
	if !ok {
		return nil, model.ErrParagraphNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryRepo) CreateParagraph(_ context.Context, p *model.Paragraph) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.paragraphs {
		if other.UID == p.UID {
			return model.ErrUIDTaken
		}
	}
	p.ID = m.id()
	p.CreatedAt = time.Now()
	cp := *p
	m.paragraphs[p.ID] = &cp
	return nil
}

func (m *memoryRepo) UpdateParagraph(_ context.Context, p *model.Paragraph) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.paragraphs[p.ID]
	if !ok {
		return model.ErrParagraphNotFound
	}
	stored.Text = p.Text
	stored.Order = p.Order
	return nil
}

func (m *memoryRepo) DeleteParagraph(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.paragraphs[id]; !ok {
		return model.ErrParagraphNotFound
	}
	delete(m.paragraphs, id)
	return nil
}

func (m *memoryRepo) ReplaceParagraphs(_ context.Context, chapterID int64, texts []string) ([]model.Paragraph, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.paragraphs {
		if p.ChapterID == chapterID {
			delete(m.paragraphs, id)
		}
	}
	out := make([]model.Paragraph, len(texts))
	for i, t := range texts {
		p := model.Paragraph{ID: m.id(), ChapterID: chapterID, UID: uuid.NewString(), Order: i, Text: t}
		m.paragraphs[p.ID] = &p
		out[i] = p
	}
	return out, nil
}

type fakeStore struct {
	uploads map[string][]byte
	deleted []string
}

const storeBase = "http://minio.local/novelpedia/"

func (f *fakeStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[key] = data
	return storeBase + key, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStore) KeyFromURL(url string) (string, bool) {
	return strings.CutPrefix(url, storeBase)
}
