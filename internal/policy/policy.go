// Package policy decides whether an actor may act on a piece of content.
// Every check takes the actor explicitly; nothing reads request state.
package policy

import (
	"github.com/google/uuid"

	"novelpedia-backend/internal/shared/apperror"
)

type Role string

const (
	RoleReader Role = "reader"
	RoleAuthor Role = "author"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleReader, RoleAuthor, RoleAdmin:
		return true
	}
	return false
}

// Actor is the identity a request runs as. The zero value is anonymous.
type Actor struct {
	ID            uuid.UUID
	Role          Role
	Authenticated bool
}

func Anonymous() Actor { return Actor{} }

func User(id uuid.UUID, role Role) Actor {
	return Actor{ID: id, Role: role, Authenticated: true}
}

// IsStaff reports admin privileges. Staff and admin are the same thing here.
func (a Actor) IsStaff() bool {
	return a.Authenticated && a.Role == RoleAdmin
}

func (a Actor) Is(id uuid.UUID) bool {
	return a.Authenticated && id != uuid.Nil && a.ID == id
}

// Codes shared by every ownership failure.
const (
	CodeUnauthenticated = "AUTH001"
	CodeForbidden       = "AUTH002"
)

var errUnauthenticated = apperror.New(apperror.ErrUnauthenticated, CodeUnauthenticated, "Authentication required")

// RequireAuthenticated fails for anonymous actors.
func RequireAuthenticated(a Actor) error {
	if !a.Authenticated {
		return errUnauthenticated
	}
	return nil
}

func CanCreateNovel(a Actor) bool { return a.Authenticated }

// CanModifyNovel covers novel update/delete and, transitively, every
// chapter and paragraph under it.
func CanModifyNovel(a Actor, novelAuthorID uuid.UUID) bool {
	return a.Is(novelAuthorID) || a.IsStaff()
}

func CanUpdateReview(a Actor, reviewAuthorID uuid.UUID) bool {
	return a.Is(reviewAuthorID)
}

// CanDeleteReview also lets the reviewed novel's author remove it.
func CanDeleteReview(a Actor, reviewAuthorID, novelAuthorID uuid.UUID) bool {
	return a.Is(reviewAuthorID) || a.Is(novelAuthorID)
}

func CanModifyComment(a Actor, commentAuthorID uuid.UUID) bool {
	return a.Is(commentAuthorID)
}

func CanSeeDraftChapters(a Actor, novelAuthorID uuid.UUID) bool {
	return a.Is(novelAuthorID) || a.IsStaff()
}

// ShouldPromoteToAuthor is true only for plain readers.
func ShouldPromoteToAuthor(r Role) bool {
	return r == RoleReader
}

// Require turns a predicate result into the error the caller returns:
// unauthenticated when there is no identity, otherwise PermissionDenied.
func Require(a Actor, allowed bool, message string) error {
	if !a.Authenticated {
		return errUnauthenticated
	}
	if !allowed {
		return apperror.PermissionDenied(CodeForbidden, message)
	}
	return nil
}

func RequireModifyNovel(a Actor, novelAuthorID uuid.UUID) error {
	return Require(a, CanModifyNovel(a, novelAuthorID), "You do not have permission to modify this novel")
}

func RequireModifyChapter(a Actor, novelAuthorID uuid.UUID) error {
	return Require(a, CanModifyChapter(a, novelAuthorID), "You do not have permission to modify chapters of this novel")
}

// CanModifyChapter and CanModifyParagraph follow ownership of the novel.
func CanModifyChapter(a Actor, novelAuthorID uuid.UUID) bool {
	return CanModifyNovel(a, novelAuthorID)
}

func CanModifyParagraph(a Actor, novelAuthorID uuid.UUID) bool {
	return CanModifyNovel(a, novelAuthorID)
}

func RequireCreateNovel(a Actor) error {
	return Require(a, CanCreateNovel(a), "You do not have permission to create novels")
}

func RequireModifyParagraph(a Actor, novelAuthorID uuid.UUID) error {
	return Require(a, CanModifyParagraph(a, novelAuthorID), "You do not have permission to modify paragraphs of this novel")
}

func RequireUpdateReview(a Actor, reviewAuthorID uuid.UUID) error {
	return Require(a, CanUpdateReview(a, reviewAuthorID), "You can only edit your own reviews")
}

func RequireDeleteReview(a Actor, reviewAuthorID, novelAuthorID uuid.UUID) error {
	return Require(a, CanDeleteReview(a, reviewAuthorID, novelAuthorID), "You do not have permission to delete this review")
}

func RequireModifyComment(a Actor, commentAuthorID uuid.UUID) error {
	return Require(a, CanModifyComment(a, commentAuthorID), "You can only modify your own comments")
}
