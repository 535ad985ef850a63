package service

import (
	"strconv"

	"github.com/xuri/excelize/v2"

	"novelpedia-backend/internal/aggregate"
	"novelpedia-backend/internal/domains/dashboard/model"
)

const (
	performanceSheet = "Performance"
	ratingsSheet     = "Ratings"
)

func buildWorkbook(stats *model.Stats) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", performanceSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(ratingsSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	// Performance: one row per metric
	perf := [][]interface{}{
		{"Metric", "Value", "Change (%)", "Description"},
		metricRow("Total views", stats.Performance.TotalViews),
		metricRow("Engagement rate (%)", stats.Performance.EngagementRate),
		metricRow("Chapter completion (%)", stats.Performance.ChapterCompletion),
		metricRow("Estimated revenue ($)", stats.Performance.EstimatedRevenue),
	}
	if err := writeRows(f, performanceSheet, perf); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(performanceSheet, "A1", "D1", headerStyle); err != nil {
		return nil, err
	}

	// Ratings: summary then the per-star distribution
	ratings := [][]interface{}{
		{"Average rating", stats.Ratings.AverageRating.InexactFloat64()},
		{"Total reviews", stats.Ratings.TotalReviews},
		{},
		{"Stars", "Reviews"},
	}
	for star := 1; star <= 5; star++ {
		ratings = append(ratings, []interface{}{star, stats.Ratings.Distribution[strconv.Itoa(star)]})
	}
	if err := writeRows(f, ratingsSheet, ratings); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(ratingsSheet, "A4", "B4", headerStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func metricRow(name string, m aggregate.Metric) []interface{} {
	return []interface{}{name, m.Value, m.Change, m.Description}
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
