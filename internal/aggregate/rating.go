package aggregate

import (
	"github.com/shopspring/decimal"
)

// RatingAggregate is the pair persisted on a novel.
type RatingAggregate struct {
	Average decimal.Decimal
	Count   int
}

// AverageRating averages ratings to one decimal place. No ratings gives 0.
func AverageRating(ratings []decimal.Decimal) RatingAggregate {
	if len(ratings) == 0 {
		return RatingAggregate{Average: decimal.Zero}
	}
	sum := decimal.Zero
	for _, r := range ratings {
		sum = sum.Add(r)
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(ratings)))).Round(1)
	return RatingAggregate{Average: avg, Count: len(ratings)}
}

// RatingDistribution buckets ratings by floor, clamped into 1..5.
// All five buckets are always present.
func RatingDistribution(ratings []decimal.Decimal) map[int]int {
	dist := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range ratings {
		bucket := int(r.Floor().IntPart())
		if bucket < 1 {
			bucket = 1
		}
		if bucket > 5 {
			bucket = 5
		}
		dist[bucket]++
	}
	return dist
}
