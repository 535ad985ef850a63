package model

const (
	// Content limits
	MaxCommentLength = 5000

	// Rating bounds, one decimal place
	MinRating = 0
	MaxRating = 5

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// OrderingColumns whitelists ?ordering= values.
var OrderingColumns = map[string]string{
	"":            "r.created_at DESC",
	"-created_at": "r.created_at DESC",
	"created_at":  "r.created_at ASC",
	"-rating":     "r.rating DESC",
	"rating":      "r.rating ASC",
}
