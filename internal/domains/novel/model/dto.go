package model

import (
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	MaxShortSynopsis = 500
	DefaultLanguage  = "English"
	DefaultPageSize  = 20
	MaxPageSize      = 100
	TrendingLimit    = 20
	LatestLimit      = 20
)

var statusValues = []interface{}{StatusOngoing, StatusCompleted}

// CreateNovelRequest attaches tags and genres by name. Missing names are
// created.
type CreateNovelRequest struct {
	Title            string   `json:"title" binding:"required"`
	Synopsis         string   `json:"synopsis"`
	ShortSynopsis    string   `json:"short_synopsis"`
	Status           Status   `json:"status"`
	TargetAudience   string   `json:"target_audience"`
	Language         string   `json:"language"`
	UpdateSchedule   string   `json:"update_schedule"`
	PlannedLength    string   `json:"planned_length"`
	MaturityRating   string   `json:"maturity_rating"`
	PrimaryGenreName string   `json:"primary_genre_name"`
	TagNames         []string `json:"tag_names"`
	GenreNames       []string `json:"genre_names"`
}

func (r *CreateNovelRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	if r.Status == "" {
		r.Status = StatusOngoing
	}
	if strings.TrimSpace(r.Language) == "" {
		r.Language = DefaultLanguage
	}
	r.ShortSynopsis = defaultShortSynopsis(r.Synopsis, r.ShortSynopsis)
}

func (r CreateNovelRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, 255)),
		validation.Field(&r.ShortSynopsis, validation.RuneLength(0, MaxShortSynopsis)),
		validation.Field(&r.Status, validation.In(statusValues...)),
		validation.Field(&r.TargetAudience, validation.RuneLength(0, 50)),
		validation.Field(&r.Language, validation.RuneLength(0, 50)),
		validation.Field(&r.UpdateSchedule, validation.RuneLength(0, 50)),
		validation.Field(&r.PlannedLength, validation.RuneLength(0, 50)),
		validation.Field(&r.MaturityRating, validation.RuneLength(0, 30)),
		validation.Field(&r.PrimaryGenreName, validation.RuneLength(0, 50)),
		validation.Field(&r.TagNames, validation.Each(validation.RuneLength(0, 50))),
		validation.Field(&r.GenreNames, validation.Each(validation.RuneLength(0, 50))),
	)
}

// UpdateNovelRequest is a partial update. Nil fields are left alone; a nil
// name list keeps the current set. ClearSlug recomputes the slug from the
// (possibly new) title.
type UpdateNovelRequest struct {
	Title            *string   `json:"title"`
	Synopsis         *string   `json:"synopsis"`
	ShortSynopsis    *string   `json:"short_synopsis"`
	Status           *Status   `json:"status"`
	TargetAudience   *string   `json:"target_audience"`
	Language         *string   `json:"language"`
	UpdateSchedule   *string   `json:"update_schedule"`
	PlannedLength    *string   `json:"planned_length"`
	MaturityRating   *string   `json:"maturity_rating"`
	PrimaryGenreName *string   `json:"primary_genre_name"`
	TagNames         *[]string `json:"tag_names"`
	GenreNames       *[]string `json:"genre_names"`
	ClearSlug        bool      `json:"clear_slug"`
}

func (r UpdateNovelRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.RuneLength(1, 255)),
		validation.Field(&r.ShortSynopsis, validation.RuneLength(0, MaxShortSynopsis)),
		validation.Field(&r.Status, validation.In(statusValues...)),
		validation.Field(&r.TargetAudience, validation.RuneLength(0, 50)),
		validation.Field(&r.Language, validation.RuneLength(0, 50)),
		validation.Field(&r.UpdateSchedule, validation.RuneLength(0, 50)),
		validation.Field(&r.PlannedLength, validation.RuneLength(0, 50)),
		validation.Field(&r.MaturityRating, validation.RuneLength(0, 30)),
		validation.Field(&r.PrimaryGenreName, validation.RuneLength(0, 50)),
	)
}

// Apply copies the set fields onto n.
func (r UpdateNovelRequest) Apply(n *Novel) {
	if r.Title != nil {
		n.Title = strings.TrimSpace(*r.Title)
	}
	if r.Synopsis != nil {
		n.Synopsis = *r.Synopsis
	}
	if r.ShortSynopsis != nil {
		n.ShortSynopsis = *r.ShortSynopsis
	}
	if r.Synopsis != nil && r.ShortSynopsis == nil && n.ShortSynopsis == "" {
		n.ShortSynopsis = defaultShortSynopsis(n.Synopsis, "")
	}
	if r.Status != nil {
		n.Status = *r.Status
	}
	if r.TargetAudience != nil {
		n.TargetAudience = *r.TargetAudience
	}
	if r.Language != nil {
		n.Language = *r.Language
	}
	if r.UpdateSchedule != nil {
		n.UpdateSchedule = *r.UpdateSchedule
	}
	if r.PlannedLength != nil {
		n.PlannedLength = *r.PlannedLength
	}
	if r.MaturityRating != nil {
		n.MaturityRating = *r.MaturityRating
	}
}

// ListFilter drives GET /novels. Author, Genre and Tag match by name.
type ListFilter struct {
	Search   string `form:"search"`
	Status   Status `form:"status"`
	Author   string `form:"author"`
	Genre    string `form:"genre"`
	Tag      string `form:"tag"`
	Ordering string `form:"ordering"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`

	AuthorID *uuid.UUID `form:"-"`
}

// Normalize clamps paging and falls back to newest first.
func (f *ListFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if _, ok := OrderingColumns[f.Ordering]; !ok {
		f.Ordering = "-created_at"
	}
}

// OrderingColumns whitelists ?ordering= values.
var OrderingColumns = map[string]string{
	"created_at":    "n.created_at ASC",
	"-created_at":   "n.created_at DESC",
	"last_updated":  "n.last_updated ASC",
	"-last_updated": "n.last_updated DESC",
	"views":         "n.views ASC",
	"-views":        "n.views DESC",
	"rating":        "n.rating ASC",
	"-rating":       "n.rating DESC",
	"title":         "n.title ASC",
	"-title":        "n.title DESC",
	"trending":      "n.views DESC, n.likes DESC, n.rating DESC",
}

func defaultShortSynopsis(synopsis, short string) string {
	if short != "" || synopsis == "" {
		return short
	}
	if utf8.RuneCountInString(synopsis) <= MaxShortSynopsis {
		return synopsis
	}
	return string([]rune(synopsis)[:MaxShortSynopsis])
}

type FeatureNovelRequest struct {
	NovelID int64 `json:"novel_id"`
}

func (r FeatureNovelRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NovelID, validation.Required, validation.Min(int64(1))),
	)
}
