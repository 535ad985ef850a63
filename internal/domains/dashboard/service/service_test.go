package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"novelpedia-backend/internal/aggregate"
	"novelpedia-backend/internal/policy"
	"novelpedia-backend/internal/shared/apperror"
)

type stubRepo struct {
	in       aggregate.PerformanceInput
	ratings  []decimal.Decimal
	recent   time.Time
	previous time.Time
}

func (s *stubRepo) PerformanceInput(_ context.Context, _ uuid.UUID, recent, previous time.Time) (*aggregate.PerformanceInput, error) {
	s.recent, s.previous = recent, previous
	in := s.in
	return &in, nil
}

func (s *stubRepo) Ratings(context.Context, uuid.UUID) ([]decimal.Decimal, error) {
	return s.ratings, nil
}

var fixedNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func newService(repo *stubRepo) *DashboardService {
	s := NewDashboardService(repo)
	s.now = func() time.Time { return fixedNow }
	return s
}

func author() policy.Actor { return policy.User(uuid.New(), policy.RoleAuthor) }

func TestStats_ZeroViews(t *testing.T) {
	repo := &stubRepo{in: aggregate.PerformanceInput{
		TotalReviews:  2,
		TotalComments: 3,
		TotalChapters: 4,
	}}

	stats, err := newService(repo).Stats(context.Background(), author())
	require.NoError(t, err)

	assert.Zero(t, stats.Performance.TotalViews.Value)
	assert.Zero(t, stats.Performance.EngagementRate.Value)
	assert.Zero(t, stats.Performance.EstimatedRevenue.Value)
	assert.Zero(t, stats.Performance.ChapterCompletion.Value)
	assert.True(t, stats.Ratings.AverageRating.IsZero())
	assert.Equal(t, map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}, stats.Ratings.Distribution)
}

func TestStats_Windows(t *testing.T) {
	repo := &stubRepo{}
	_, err := newService(repo).Stats(context.Background(), author())
	require.NoError(t, err)

	assert.True(t, fixedNow.AddDate(0, 0, -30).Equal(repo.recent))
	assert.True(t, fixedNow.AddDate(0, 0, -60).Equal(repo.previous))
}

func TestStats_Figures(t *testing.T) {
	repo := &stubRepo{
		in: aggregate.PerformanceInput{
			TotalViews:        1000,
			Views:             aggregate.Window{Current: 300, Previous: 200},
			TotalReviews:      3,
			TotalComments:     7,
			Engagement:        aggregate.Window{Current: 4, Previous: 0},
			TotalChapters:     3,
			PublishedChapters: 2,
			Published:         aggregate.Window{Current: 1, Previous: 2},
		},
		ratings: []decimal.Decimal{
			decimal.RequireFromString("4.5"),
			decimal.RequireFromString("3"),
			decimal.RequireFromString("0.5"),
		},
	}

	stats, err := newService(repo).Stats(context.Background(), author())
	require.NoError(t, err)

	p := stats.Performance
	assert.Equal(t, 1000.0, p.TotalViews.Value)
	assert.Equal(t, 50.0, p.TotalViews.Change)
	assert.Equal(t, 1.0, p.EngagementRate.Value)
	assert.Equal(t, 100.0, p.EngagementRate.Change)
	assert.Equal(t, 66.7, p.ChapterCompletion.Value)
	assert.Equal(t, -50.0, p.ChapterCompletion.Change)
	assert.Equal(t, 2.5, p.EstimatedRevenue.Value)

	assert.Equal(t, "2.7", stats.Ratings.AverageRating.String())
	assert.Equal(t, 3, stats.Ratings.TotalReviews)
	assert.Equal(t, map[string]int{"1": 1, "2": 0, "3": 1, "4": 1, "5": 0}, stats.Ratings.Distribution)
}

func TestStats_RequiresAuthentication(t *testing.T) {
	_, err := newService(&stubRepo{}).Stats(context.Background(), policy.Anonymous())
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestExportStats(t *testing.T) {
	repo := &stubRepo{
		in:      aggregate.PerformanceInput{TotalViews: 400},
		ratings: []decimal.Decimal{decimal.RequireFromString("5")},
	}

	data, err := newService(repo).ExportStats(context.Background(), author())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Performance", "Ratings"}, f.GetSheetList())

	views, err := f.GetCellValue("Performance", "B2")
	require.NoError(t, err)
	assert.Equal(t, "400", views)

	revenue, err := f.GetCellValue("Performance", "B5")
	require.NoError(t, err)
	assert.Equal(t, "1", revenue)

	fives, err := f.GetCellValue("Ratings", "B9")
	require.NoError(t, err)
	assert.Equal(t, "1", fives)
}
