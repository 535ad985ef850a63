package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"novelpedia-backend/internal/aggregate"
)

// DashboardRepository reads the raw counts behind an author's dashboard.
// recent and previous are the starts of the current and prior windows.
type DashboardRepository interface {
	PerformanceInput(ctx context.Context, authorID uuid.UUID, recent, previous time.Time) (*aggregate.PerformanceInput, error)
	Ratings(ctx context.Context, authorID uuid.UUID) ([]decimal.Decimal, error)
}
