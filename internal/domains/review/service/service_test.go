package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelpedia-backend/internal/domains/review/model"
	"novelpedia-backend/internal/policy"
	"novelpedia-backend/internal/shared/apperror"
)

const novelID = int64(3)

type fixture struct {
	svc    ServiceInterface
	repo   *memoryRepo
	author policy.Actor
	ctx    context.Context
}

func newFixture() fixture {
	repo := newMemoryRepo()
	author := policy.User(uuid.New(), policy.RoleAuthor)
	repo.addNovel(novelID, author.ID)
	return fixture{
		svc:    NewReviewService(repo, passthroughTx{}),
		repo:   repo,
		author: author,
		ctx:    context.Background(),
	}
}

func rating(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func reader() policy.Actor { return policy.User(uuid.New(), policy.RoleReader) }

func (f fixture) review(t *testing.T, actor policy.Actor, r string) *model.Review {
	t.Helper()
	rev, err := f.svc.CreateReview(f.ctx, actor, model.CreateReviewRequest{NovelID: novelID, Rating: rating(r), Comment: "ok"})
	require.NoError(t, err)
	return rev
}

func (f fixture) assertAggregate(t *testing.T, avg string, count int) {
	t.Helper()
	n := f.repo.novels[novelID]
	assert.True(t, decimal.RequireFromString(avg).Equal(n.rating), "rating %s, want %s", n.rating, avg)
	assert.Equal(t, count, n.count)
}

func TestReviewMutations_KeepNovelAggregate(t *testing.T) {
	f := newFixture()
	alice, bob := reader(), reader()

	first := f.review(t, alice, "4.0")
	f.assertAggregate(t, "4.0", 1)

	second := f.review(t, bob, "3.5")
	f.assertAggregate(t, "3.8", 2) // 3.75 rounds half up

	_, err := f.svc.UpdateReview(f.ctx, alice, first.ID, model.UpdateReviewRequest{Rating: rating("5")})
	require.NoError(t, err)
	f.assertAggregate(t, "4.3", 2) // 4.25

	require.NoError(t, f.svc.DeleteReview(f.ctx, bob, second.ID))
	f.assertAggregate(t, "5.0", 1)

	require.NoError(t, f.svc.DeleteReview(f.ctx, alice, first.ID))
	f.assertAggregate(t, "0", 0)

	assert.Len(t, f.repo.locked, 5, "every write locks the novel")
}

func TestCreateReview_MultiplePerUserAreCounted(t *testing.T) {
	f := newFixture()
	alice := reader()

	f.review(t, alice, "2")
	f.review(t, alice, "4")

	f.assertAggregate(t, "3.0", 2)
}

func TestCreateReview_Validation(t *testing.T) {
	f := newFixture()
	cases := map[string]model.CreateReviewRequest{
		"missing rating": {NovelID: novelID},
		"negative":       {NovelID: novelID, Rating: rating("-0.5")},
		"above five":     {NovelID: novelID, Rating: rating("5.1")},
		"two decimals":   {NovelID: novelID, Rating: rating("3.25")},
		"missing novel":  {Rating: rating("3")},
		"unknown novel":  {NovelID: 99, Rating: rating("3")},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.CreateReview(f.ctx, reader(), req)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}

	_, err := f.svc.CreateReview(f.ctx, policy.Anonymous(), model.CreateReviewRequest{NovelID: novelID, Rating: rating("3")})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	f.assertAggregate(t, "0", 0)
}

func TestReviewPermissions(t *testing.T) {
	f := newFixture()
	alice, mallory := reader(), reader()
	rev := f.review(t, alice, "4")

	_, err := f.svc.UpdateReview(f.ctx, mallory, rev.ID, model.UpdateReviewRequest{Rating: rating("1")})
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)

	// the novel's author may delete but not edit
	_, err = f.svc.UpdateReview(f.ctx, f.author, rev.ID, model.UpdateReviewRequest{Rating: rating("1")})
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)

	err = f.svc.DeleteReview(f.ctx, mallory, rev.ID)
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)

	require.NoError(t, f.svc.DeleteReview(f.ctx, f.author, rev.ID))
	f.assertAggregate(t, "0", 0)

	_, err = f.svc.GetReview(f.ctx, rev.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListReviews_StatisticsForNovel(t *testing.T) {
	f := newFixture()
	f.review(t, reader(), "1.5")
	f.review(t, reader(), "4.9")
	f.review(t, reader(), "5")

	id := novelID
	resp, err := f.svc.ListReviews(f.ctx, model.ListReviewsRequest{NovelID: &id, Limit: 2})
	require.NoError(t, err)

	assert.Len(t, resp.Reviews, 2)
	assert.Equal(t, 3, resp.Pagination.Total)
	assert.True(t, resp.Pagination.HasNext)
	require.NotNil(t, resp.Statistics)
	assert.Equal(t, 3, resp.Statistics.TotalReviews)
	assert.Equal(t, "3.8", resp.Statistics.AverageRating.String())
	assert.Equal(t, map[int]int{1: 1, 2: 0, 3: 0, 4: 1, 5: 1}, resp.Statistics.RatingBreakdown)

	all, err := f.svc.ListReviews(f.ctx, model.ListReviewsRequest{})
	require.NoError(t, err)
	assert.Nil(t, all.Statistics)
}

func TestListMyReviews(t *testing.T) {
	f := newFixture()
	alice := reader()
	f.review(t, alice, "3")
	f.review(t, reader(), "4")

	resp, err := f.svc.ListMyReviews(f.ctx, alice, model.ListReviewsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Reviews, 1)
	assert.Equal(t, alice.ID, resp.Reviews[0].UserID)

	_, err = f.svc.ListMyReviews(f.ctx, policy.Anonymous(), model.ListReviewsRequest{})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}
