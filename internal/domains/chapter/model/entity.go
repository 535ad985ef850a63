package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Chapter belongs to a novel. Number is unique within the novel and
// WordCount is derived from the paragraphs, or from ContentHTML when the
// chapter has none.
type Chapter struct {
	ID            int64           `json:"id"`
	NovelID       int64           `json:"novel_id"`
	NovelAuthorID uuid.UUID       `json:"-"`
	Title         string          `json:"title"`
	Number        int             `json:"number"`
	Status        Status          `json:"status"`
	WordCount     int             `json:"word_count"`
	TotalViews    int64           `json:"total_views"`
	ContentHTML   string          `json:"content_html"`
	ContentDelta  json.RawMessage `json:"content_delta"`
	HeroImage     *string         `json:"hero_image_url"`
	Paragraphs    []Paragraph     `json:"paragraphs,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (c *Chapter) IsPublished() bool {
	return c.Status == StatusPublished
}

// Paragraph is ordered by (Order, ID). UID never changes once assigned.
type Paragraph struct {
	ID        int64     `json:"id"`
	ChapterID int64     `json:"chapter_id"`
	UID       string    `json:"uid"`
	Order     int       `json:"order"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Stats struct {
	WordCount  int   `json:"word_count"`
	TotalViews int64 `json:"total_views"`
}

// AutosaveResult echoes what the editor needs to refresh.
type AutosaveResult struct {
	Status       string          `json:"status"`
	WordCount    int             `json:"word_count"`
	ContentHTML  *string         `json:"content_html,omitempty"`
	ContentDelta json.RawMessage `json:"content_delta,omitempty"`
	HeroImageURL *string         `json:"hero_image_url,omitempty"`
}
