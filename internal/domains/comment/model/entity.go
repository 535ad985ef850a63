package model

import (
	"time"

	"github.com/google/uuid"
)

// TargetKind discriminates what a comment is attached to.
type TargetKind string

const (
	TargetChapter   TargetKind = "chapter"
	TargetParagraph TargetKind = "paragraph"
)

// Target is the single chapter or paragraph a comment belongs to.
// Build one with NewTarget; the zero value is invalid.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   int64      `json:"id"`
}

// NewTarget accepts exactly one of chapter and paragraph.
func NewTarget(chapterID, paragraphID *int64) (Target, error) {
	switch {
	case chapterID == nil && paragraphID == nil:
		return Target{}, ErrMissingTarget
	case chapterID != nil && paragraphID != nil:
		return Target{}, ErrAmbiguousTarget
	case chapterID != nil:
		return newTarget(TargetChapter, *chapterID)
	default:
		return newTarget(TargetParagraph, *paragraphID)
	}
}

func newTarget(kind TargetKind, id int64) (Target, error) {
	if id <= 0 {
		return Target{}, NewInvalidTargetError(string(kind))
	}
	return Target{Kind: kind, ID: id}, nil
}

// ChapterID and ParagraphID split the target back into the two nullable
// columns it is stored as.
func (t Target) ChapterID() *int64 {
	if t.Kind != TargetChapter {
		return nil
	}
	id := t.ID
	return &id
}

func (t Target) ParagraphID() *int64 {
	if t.Kind != TargetParagraph {
		return nil
	}
	id := t.ID
	return &id
}

func (t Target) Valid() bool {
	return (t.Kind == TargetChapter || t.Kind == TargetParagraph) && t.ID > 0
}

type Comment struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user"`
	Target    Target    `json:"target"`
	ParentID  *int64    `json:"parent,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ThreadEntry is one comment of a thread in depth-first order. The root has
// depth 0.
type ThreadEntry struct {
	Comment
	Depth int `json:"depth"`
}
