package model

import (
	"time"

	"github.com/shopspring/decimal"

	"novelpedia-backend/internal/aggregate"
)

// Window lengths for the change figures.
const (
	WindowDays = 30
	Window     = WindowDays * 24 * time.Hour
)

// Stats is the author dashboard. It is derived on every read and never
// stored.
type Stats struct {
	Performance aggregate.PerformanceStats `json:"performance"`
	Ratings     Ratings                    `json:"ratings"`
}

type Ratings struct {
	AverageRating decimal.Decimal `json:"averageRating"`
	TotalReviews  int             `json:"totalReviews"`
	Distribution  map[string]int  `json:"distribution"`
}
