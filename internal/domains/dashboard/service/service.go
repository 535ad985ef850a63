package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"novelpedia-backend/internal/aggregate"
	"novelpedia-backend/internal/domains/dashboard/model"
	"novelpedia-backend/internal/domains/dashboard/repository"
	"novelpedia-backend/internal/policy"
)

type DashboardService struct {
	repo repository.DashboardRepository
	now  func() time.Time
}

func NewDashboardService(repo repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo, now: time.Now}
}

func (s *DashboardService) Stats(ctx context.Context, actor policy.Actor) (*model.Stats, error) {
	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	now := s.now()
	in, err := s.repo.PerformanceInput(ctx, actor.ID, now.Add(-model.Window), now.Add(-2*model.Window))
	if err != nil {
		return nil, err
	}

	ratings, err := s.repo.Ratings(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	avg := aggregate.AverageRating(ratings)

	distribution := make(map[string]int, 5)
	for star, n := range aggregate.RatingDistribution(ratings) {
		distribution[strconv.Itoa(star)] = n
	}

	return &model.Stats{
		Performance: aggregate.Performance(*in),
		Ratings: model.Ratings{
			AverageRating: avg.Average,
			TotalReviews:  avg.Count,
			Distribution:  distribution,
		},
	}, nil
}

func (s *DashboardService) ExportStats(ctx context.Context, actor policy.Actor) ([]byte, error) {
	stats, err := s.Stats(ctx, actor)
	if err != nil {
		return nil, err
	}

	buf, err := buildWorkbook(stats)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard workbook: %w", err)
	}
	return buf, nil
}
