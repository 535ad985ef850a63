package aggregate

import (
	"math"

	"github.com/shopspring/decimal"
)

// RevenuePerView is the fixed per-view figure behind estimatedRevenue.
var RevenuePerView = decimal.RequireFromString("0.0025")

// Window holds a count for the trailing 30 days and the 30 days before it.
type Window struct {
	Current  int64
	Previous int64
}

// PerformanceInput is everything the dashboard reads from storage.
type PerformanceInput struct {
	TotalViews int64
	Views      Window

	TotalReviews  int64
	TotalComments int64
	Engagement    Window

	TotalChapters     int64
	PublishedChapters int64
	Published         Window
}

type Metric struct {
	Value       float64 `json:"value"`
	Change      float64 `json:"change"`
	Description string  `json:"description"`
}

type PerformanceStats struct {
	TotalViews        Metric `json:"totalViews"`
	EngagementRate    Metric `json:"engagementRate"`
	ChapterCompletion Metric `json:"chapterCompletion"`
	EstimatedRevenue  Metric `json:"estimatedRevenue"`
}

// PercentageChange compares two windows. A zero previous window yields 100
// when the current one is positive and 0 otherwise.
func PercentageChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

// Revenue returns views * RevenuePerView.
func Revenue(views int64) decimal.Decimal {
	return decimal.NewFromInt(views).Mul(RevenuePerView)
}

// Performance derives the four dashboard metrics.
func Performance(in PerformanceInput) PerformanceStats {
	engagementRate := 0.0
	if in.TotalViews > 0 {
		engagementRate = float64(in.TotalReviews+in.TotalComments) / float64(in.TotalViews) * 100
	}

	completion := 0.0
	if in.TotalChapters > 0 {
		completion = float64(in.PublishedChapters) / float64(in.TotalChapters) * 100
	}

	recentRevenue := Revenue(in.Views.Current).InexactFloat64()
	previousRevenue := Revenue(in.Views.Previous).InexactFloat64()

	return PerformanceStats{
		TotalViews: Metric{
			Value:       float64(in.TotalViews),
			Change:      round(PercentageChange(float64(in.Views.Current), float64(in.Views.Previous)), 1),
			Description: "Last 30 days",
		},
		EngagementRate: Metric{
			Value:       round(engagementRate, 1),
			Change:      round(PercentageChange(float64(in.Engagement.Current), float64(in.Engagement.Previous)), 1),
			Description: "Comments and reviews per view",
		},
		ChapterCompletion: Metric{
			Value:       round(completion, 1),
			Change:      round(PercentageChange(float64(in.Published.Current), float64(in.Published.Previous)), 1),
			Description: "Published chapters vs total",
		},
		EstimatedRevenue: Metric{
			Value:       Revenue(in.TotalViews).Round(2).InexactFloat64(),
			Change:      round(PercentageChange(recentRevenue, previousRevenue), 1),
			Description: "Based on $0.0025 per view",
		},
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
