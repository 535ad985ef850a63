package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelpedia-backend/internal/domains/chapter/model"
	"novelpedia-backend/internal/infrastructure/storage"
	"novelpedia-backend/internal/policy"
	"novelpedia-backend/internal/shared/apperror"
)

const novelSlug = "my-story"

type fixture struct {
	svc    ServiceInterface
	repo   *memoryRepo
	store  *fakeStore
	author policy.Actor
	ctx    context.Context
}

func newFixture() fixture {
	repo := newMemoryRepo()
	store := &fakeStore{}
	novels := &fakeNovels{}
	author := policy.User(uuid.New(), policy.RoleAuthor)
	novels.add(7, novelSlug, author.ID)

	svc := NewChapterService(repo, novels, passthroughTx{}, store, storage.NewImageProcessor())
	return fixture{svc: svc, repo: repo, store: store, author: author, ctx: context.Background()}
}

func (f fixture) chapter(t *testing.T, title string, status model.Status) *model.Chapter {
	t.Helper()
	c, err := f.svc.CreateChapter(f.ctx, f.author, novelSlug, model.CreateChapterRequest{Title: title, Status: status})
	require.NoError(t, err)
	return c
}

func (f fixture) wordCount(t *testing.T, chapterID int64) int {
	t.Helper()
	stats, err := f.svc.ChapterStats(f.ctx, chapterID)
	require.NoError(t, err)
	return stats.WordCount
}

func strPtr(s string) *string { return &s }

func pngDataURL(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// =====================================================
// NUMBERING & OWNERSHIP
// =====================================================

func TestCreateChapter_NumbersAreMaxPlusOne(t *testing.T) {
	f := newFixture()

	one := f.chapter(t, "One", model.StatusDraft)
	two := f.chapter(t, "Two", model.StatusDraft)
	three := f.chapter(t, "Three", model.StatusPublished)

	assert.Equal(t, []int{1, 2, 3}, []int{one.Number, two.Number, three.Number})
	assert.Contains(t, f.repo.locks, int64(-7))
	assert.Equal(t, 1, f.repo.touched[7], "only the published chapter bumps the novel")
}

func TestCreateChapter_RequiresNovelOwner(t *testing.T) {
	f := newFixture()
	req := model.CreateChapterRequest{Title: "Intruder"}

	_, err := f.svc.CreateChapter(f.ctx, policy.Anonymous(), novelSlug, req)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, err = f.svc.CreateChapter(f.ctx, policy.User(uuid.New(), policy.RoleAuthor), novelSlug, req)
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)

	_, err = f.svc.CreateChapter(f.ctx, policy.User(uuid.New(), policy.RoleAdmin), novelSlug, req)
	assert.NoError(t, err)
}

func TestCreateChapter_NovelDeletedBeforeLockIsNotFound(t *testing.T) {
	f := newFixture()
	f.repo.gone[7] = true

	_, err := f.svc.CreateChapter(f.ctx, f.author, novelSlug, model.CreateChapterRequest{Title: "Late"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, err, model.ErrNovelNotFound)
	assert.Empty(t, f.repo.chapters)
}

func TestCreateChapter_ValidatesInput(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateChapter(f.ctx, f.author, novelSlug, model.CreateChapterRequest{Title: "  "})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.CreateChapter(f.ctx, f.author, novelSlug, model.CreateChapterRequest{Title: "X", Status: "archived"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.CreateChapter(f.ctx, f.author, "missing", model.CreateChapterRequest{Title: "X"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateChapter_PublishingBumpsNovel(t *testing.T) {
	f := newFixture()
	c := f.chapter(t, "Draft", model.StatusDraft)
	require.Zero(t, f.repo.touched[7])

	published := model.StatusPublished
	updated, err := f.svc.UpdateChapter(f.ctx, f.author, c.ID, model.UpdateChapterRequest{Status: &published})
	require.NoError(t, err)
	assert.True(t, updated.IsPublished())
	assert.Equal(t, c.Number, updated.Number)
	assert.Equal(t, 1, f.repo.touched[7])
}

func TestUpdateAndDeleteChapter_NonOwnerDenied(t *testing.T) {
	f := newFixture()
	c := f.chapter(t, "Mine", model.StatusPublished)
	stranger := policy.User(uuid.New(), policy.RoleAuthor)

	_, err := f.svc.UpdateChapter(f.ctx, stranger, c.ID, model.UpdateChapterRequest{Title: strPtr("Theirs")})
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)

	err = f.svc.DeleteChapter(f.ctx, stranger, c.ID)
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)

	require.NoError(t, f.svc.DeleteChapter(f.ctx, f.author, c.ID))
	_, err = f.svc.GetChapter(f.ctx, f.author, c.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateChapter_HTMLCountOnlyWithoutParagraphs(t *testing.T) {
	f := newFixture()
	plain := f.chapter(t, "Plain", model.StatusDraft)
	split := f.chapter(t, "Split", model.StatusDraft)

	_, err := f.svc.CreateParagraph(f.ctx, f.author, split.ID, model.CreateParagraphRequest{Text: "just two"})
	require.NoError(t, err)

	html := "<p>one <b>two</b></p><p>three</p>"
	_, err = f.svc.UpdateChapter(f.ctx, f.author, plain.ID, model.UpdateChapterRequest{ContentHTML: &html})
	require.NoError(t, err)
	_, err = f.svc.UpdateChapter(f.ctx, f.author, split.ID, model.UpdateChapterRequest{ContentHTML: &html})
	require.NoError(t, err)

	assert.Equal(t, 3, f.wordCount(t, plain.ID))
	assert.Equal(t, 2, f.wordCount(t, split.ID))
}

// =====================================================
// VISIBILITY
// =====================================================

func TestListChapters_Visibility(t *testing.T) {
	f := newFixture()
	f.chapter(t, "Published", model.StatusPublished)
	f.chapter(t, "Draft", model.StatusDraft)

	titles := func(actor policy.Actor) []string {
		chapters, err := f.svc.ListChapters(f.ctx, actor, novelSlug, model.ListFilter{})
		require.NoError(t, err)
		out := make([]string, len(chapters))
		for i, c := range chapters {
			out[i] = c.Title
		}
		return out
	}

	assert.Equal(t, []string{"Published"}, titles(policy.Anonymous()))
	assert.Equal(t, []string{"Published"}, titles(policy.User(uuid.New(), policy.RoleReader)))
	assert.Equal(t, []string{"Published"}, titles(policy.User(uuid.New(), policy.RoleAuthor)))
	assert.Equal(t, []string{"Published", "Draft"}, titles(f.author))
	assert.Equal(t, []string{"Published", "Draft"}, titles(policy.User(uuid.New(), policy.RoleAdmin)))
}

func TestListChapters_Search(t *testing.T) {
	f := newFixture()
	f.chapter(t, "The Beginning", model.StatusPublished)
	f.chapter(t, "The End", model.StatusPublished)

	chapters, err := f.svc.ListChapters(f.ctx, policy.Anonymous(), novelSlug, model.ListFilter{Search: " end "})
	require.NoError(t, err)
	require.Len(t, chapters, 1)
	assert.Equal(t, "The End", chapters[0].Title)
}

func TestGetChapter_HiddenDraftIsNotFound(t *testing.T) {
	f := newFixture()
	draft := f.chapter(t, "Draft", model.StatusDraft)

	_, err := f.svc.GetChapter(f.ctx, policy.Anonymous(), draft.ID)
	assert.ErrorIs(t, err, model.ErrChapterNotFound)

	_, err = f.svc.ListParagraphs(f.ctx, policy.User(uuid.New(), policy.RoleReader), draft.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	got, err := f.svc.GetChapter(f.ctx, f.author, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "Draft", got.Title)
}

// =====================================================
// REORDER
// =====================================================

func TestReorderChapters(t *testing.T) {
	f := newFixture()
	a := f.chapter(t, "A", model.StatusPublished)
	b := f.chapter(t, "B", model.StatusPublished)
	c := f.chapter(t, "C", model.StatusPublished)

	chapters, err := f.svc.ReorderChapters(f.ctx, f.author, novelSlug, []int64{c.ID, a.ID, b.ID})
	require.NoError(t, err)

	require.Len(t, chapters, 3)
	assert.Equal(t, []string{"C", "A", "B"}, []string{chapters[0].Title, chapters[1].Title, chapters[2].Title})
	assert.Equal(t, []int{1, 2, 3}, []int{chapters[0].Number, chapters[1].Number, chapters[2].Number})
}

func TestReorderChapters_RejectsNonPermutation(t *testing.T) {
	f := newFixture()
	a := f.chapter(t, "A", model.StatusPublished)
	b := f.chapter(t, "B", model.StatusPublished)

	cases := map[string][]int64{
		"missing":   {a.ID},
		"duplicate": {a.ID, a.ID},
		"foreign":   {a.ID, 999},
		"extra":     {a.ID, b.ID, 999},
	}
	for name, ids := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.ReorderChapters(f.ctx, f.author, novelSlug, ids)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}

	_, err := f.svc.ReorderChapters(f.ctx, policy.User(uuid.New(), policy.RoleReader), novelSlug, []int64{b.ID, a.ID})
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)
}

// =====================================================
// PARAGRAPHS & WORD COUNT
// =====================================================

func TestParagraphMutations_KeepWordCountInSync(t *testing.T) {
	f := newFixture()
	c := f.chapter(t, "Counted", model.StatusDraft)

	first, err := f.svc.CreateParagraph(f.ctx, f.author, c.ID, model.CreateParagraphRequest{Text: "one two"})
	require.NoError(t, err)
	assert.Equal(t, 2, f.wordCount(t, c.ID))

	second, err := f.svc.CreateParagraph(f.ctx, f.author, c.ID, model.CreateParagraphRequest{Text: "three  four\tfive"})
	require.NoError(t, err)
	assert.Equal(t, 5, f.wordCount(t, c.ID))
	assert.Equal(t, 1, second.Order, "appended after the existing paragraph")

	_, err = f.svc.UpdateParagraph(f.ctx, f.author, first.ID, model.UpdateParagraphRequest{Text: strPtr("single")})
	require.NoError(t, err)
	assert.Equal(t, 4, f.wordCount(t, c.ID))

	require.NoError(t, f.svc.DeleteParagraph(f.ctx, f.author, second.ID))
	assert.Equal(t, 1, f.wordCount(t, c.ID))

	require.NoError(t, f.svc.DeleteParagraph(f.ctx, f.author, first.ID))
	assert.Equal(t, 0, f.wordCount(t, c.ID))

	assert.Contains(t, f.repo.locks, c.ID, "chapter row is locked during recount")
}

func TestCreateParagraph_UID(t *testing.T) {
	f := newFixture()
	c := f.chapter(t, "UIDs", model.StatusDraft)

	generated, err := f.svc.CreateParagraph(f.ctx, f.author, c.ID, model.CreateParagraphRequest{Text: "x"})
	require.NoError(t, err)
	_, err = uuid.Parse(generated.UID)
	assert.NoError(t, err)

	given := uuid.NewString()
	p, err := f.svc.CreateParagraph(f.ctx, f.author, c.ID, model.CreateParagraphRequest{Text: "y", UID: given})
	require.NoError(t, err)
	assert.Equal(t, given, p.UID)

	_, err = f.svc.CreateParagraph(f.ctx, f.author, c.ID, model.CreateParagraphRequest{Text: "z", UID: given})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.CreateParagraph(f.ctx, f.author, c.ID, model.CreateParagraphRequest{Text: "z", UID: "not-a-uuid"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	order := 5
	updated, err := f.svc.UpdateParagraph(f.ctx, f.author, p.ID, model.UpdateParagraphRequest{Order: &order})
	require.NoError(t, err)
	assert.Equal(t, given, updated.UID)
	assert.Equal(t, 5, updated.Order)
}

func TestParagraphMutations_RequireNovelOwner(t *testing.T) {
	f := newFixture()
	c := f.chapter(t, "Guarded", model.StatusPublished)
	p, err := f.svc.CreateParagraph(f.ctx, f.author, c.ID, model.CreateParagraphRequest{Text: "mine"})
	require.NoError(t, err)
	stranger := policy.User(uuid.New(), policy.RoleReader)

	_, err = f.svc.CreateParagraph(f.ctx, stranger, c.ID, model.CreateParagraphRequest{Text: "theirs"})
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)
	_, err = f.svc.UpdateParagraph(f.ctx, stranger, p.ID, model.UpdateParagraphRequest{Text: strPtr("theirs")})
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)
	err = f.svc.DeleteParagraph(f.ctx, stranger, p.ID)
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)

	assert.Equal(t, 1, f.wordCount(t, c.ID))
}

// =====================================================
// AUTOSAVE
// =====================================================

func TestAutosave_ParagraphsReplaceAndCount(t *testing.T) {
	f := newFixture()
	c := f.chapter(t, "Auto", model.StatusDraft)
	_, err := f.svc.CreateParagraph(f.ctx, f.author, c.ID, model.CreateParagraphRequest{Text: "old text here"})
	require.NoError(t, err)

	paragraphs := []string{"alpha beta", "gamma"}
	res, err := f.svc.Autosave(f.ctx, f.author, c.ID, model.AutosaveRequest{
		Title:       strPtr("Renamed"),
		ContentHTML: strPtr("<p>ignored for counting when paragraphs are sent</p>"),
		Paragraphs:  &paragraphs,
	})
	require.NoError(t, err)
	assert.Equal(t, "autosaved", res.Status)
	assert.Equal(t, 3, res.WordCount)

	got, err := f.svc.GetChapter(f.ctx, f.author, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	require.Len(t, got.Paragraphs, 2)
	assert.Equal(t, "alpha beta", got.Paragraphs[0].Text)
	assert.Equal(t, 3, got.WordCount)
}

func TestAutosave_HTMLCount(t *testing.T) {
	f := newFixture()
	c := f.chapter(t, "Auto", model.StatusDraft)

	res, err := f.svc.Autosave(f.ctx, f.author, c.ID, model.AutosaveRequest{
		ContentHTML:  strPtr("<h1>Hello</h1>\n<p>brave   new world</p>"),
		ContentDelta: []byte(`{"ops":[]}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.WordCount)
	require.NotNil(t, res.ContentHTML)
	assert.JSONEq(t, `{"ops":[]}`, string(res.ContentDelta))
	assert.Equal(t, 4, f.wordCount(t, c.ID))
}

func TestAutosave_HeroImage(t *testing.T) {
	f := newFixture()
	c := f.chapter(t, "Hero", model.StatusDraft)
	dataURL := pngDataURL(t)

	res, err := f.svc.Autosave(f.ctx, f.author, c.ID, model.AutosaveRequest{
		ContentHTML:   strPtr(`<img src="` + dataURL + `">`),
		HeroImageData: &dataURL,
	})
	require.NoError(t, err)
	require.NotNil(t, res.HeroImageURL)
	assert.True(t, strings.HasPrefix(*res.HeroImageURL, storeBase+"chapters/"))
	assert.True(t, strings.HasSuffix(*res.HeroImageURL, ".png"))
	require.NotNil(t, res.ContentHTML)
	assert.NotContains(t, *res.ContentHTML, "data:image")
	assert.Contains(t, *res.ContentHTML, *res.HeroImageURL)
	assert.Len(t, f.store.uploads, 1)

	// clearing removes the stored object
	res, err = f.svc.Autosave(f.ctx, f.author, c.ID, model.AutosaveRequest{HeroImageData: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, res.HeroImageURL)
	assert.Len(t, f.store.deleted, 1)
}

func TestAutosave_RejectsBadImageAndStrangers(t *testing.T) {
	f := newFixture()
	c := f.chapter(t, "Hero", model.StatusDraft)

	_, err := f.svc.Autosave(f.ctx, f.author, c.ID, model.AutosaveRequest{HeroImageData: strPtr("http://example.com/x.png")})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.Autosave(f.ctx, f.author, c.ID, model.AutosaveRequest{HeroImageData: strPtr("data:image/png;base64,@@@")})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.Autosave(f.ctx, policy.User(uuid.New(), policy.RoleAuthor), c.ID, model.AutosaveRequest{Title: strPtr("x")})
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)

	assert.Empty(t, f.store.uploads)
}
