package model

import (
	"encoding/json"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var statusValues = []interface{}{StatusDraft, StatusPublished}

type CreateChapterRequest struct {
	Title        string          `json:"title" binding:"required"`
	Status       Status          `json:"status"`
	ContentHTML  string          `json:"content_html"`
	ContentDelta json.RawMessage `json:"content_delta"`
}

func (r *CreateChapterRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	if r.Status == "" {
		r.Status = StatusDraft
	}
}

func (r CreateChapterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, 255)),
		validation.Field(&r.Status, validation.In(statusValues...)),
	)
}

// UpdateChapterRequest is a partial update. Number is only changed through
// reorder.
type UpdateChapterRequest struct {
	Title        *string          `json:"title"`
	Status       *Status          `json:"status"`
	ContentHTML  *string          `json:"content_html"`
	ContentDelta *json.RawMessage `json:"content_delta"`
}

func (r UpdateChapterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.RuneLength(1, 255)),
		validation.Field(&r.Status, validation.In(statusValues...)),
	)
}

func (r UpdateChapterRequest) Apply(c *Chapter) {
	if r.Title != nil {
		c.Title = strings.TrimSpace(*r.Title)
	}
	if r.Status != nil {
		c.Status = *r.Status
	}
	if r.ContentHTML != nil {
		c.ContentHTML = *r.ContentHTML
	}
	if r.ContentDelta != nil {
		c.ContentDelta = *r.ContentDelta
	}
}

type ReorderRequest struct {
	ChapterIDs []int64 `json:"chapter_ids" binding:"required"`
}

// AutosaveRequest carries whatever the editor changed. Absent fields are
// left alone. Paragraphs replaces the full paragraph set. HeroImageData is
// a data URL; an empty string removes the image.
type AutosaveRequest struct {
	Title         *string         `json:"title"`
	ContentHTML   *string         `json:"content_html"`
	ContentDelta  json.RawMessage `json:"content_delta"`
	Paragraphs    *[]string       `json:"paragraphs"`
	HeroImageData *string         `json:"hero_image_data"`
}

func (r AutosaveRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.RuneLength(1, 255)),
	)
}

// ListFilter narrows a novel's chapter list.
type ListFilter struct {
	Search string `form:"search"`
}

type CreateParagraphRequest struct {
	Text  string `json:"text"`
	Order *int   `json:"order"`
	UID   string `json:"uid"`
}

func (r CreateParagraphRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Order, validation.Min(0)),
		validation.Field(&r.UID, is.UUID),
	)
}

// UpdateParagraphRequest cannot touch the uid.
type UpdateParagraphRequest struct {
	Text  *string `json:"text"`
	Order *int    `json:"order"`
}

func (r UpdateParagraphRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Order, validation.Min(0)),
	)
}
