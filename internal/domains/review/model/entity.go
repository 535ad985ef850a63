package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Review rates a novel from 0.0 to 5.0. A user may hold more than one
// review per novel; the novel aggregate counts every one of them.
type Review struct {
	ID            int64           `json:"id"`
	NovelID       int64           `json:"novel"`
	NovelAuthorID uuid.UUID       `json:"-"`
	UserID        uuid.UUID       `json:"user_id"`
	UserName      string          `json:"user"`
	Rating        decimal.Decimal `json:"rating"`
	Comment       string          `json:"comment"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
