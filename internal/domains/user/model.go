package user

import (
	"time"

	"github.com/google/uuid"

	"novelpedia-backend/internal/policy"
)

// User maps 1:1 to the users table.
type User struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	DOB          time.Time   `json:"dob"`
	Gender       Gender      `json:"gender"`
	Role         policy.Role `json:"role"`
	Status       Status      `json:"user_status"`
	IsActive     bool        `json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type Status string

const (
	StatusNormal    Status = "normal"
	StatusBanned    Status = "banned"
	StatusSuspended Status = "suspended"
)

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "O"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// CanSignIn is false for deactivated, banned or suspended accounts.
func (u *User) CanSignIn() bool {
	return u.IsActive && (u.Status == StatusNormal || u.Status == "")
}

// Actor returns the policy identity for this user.
func (u *User) Actor() policy.Actor {
	return policy.User(u.ID, u.Role)
}

// ToDTO strips credentials.
func (u *User) ToDTO() UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		DOB:       u.DOB.Format(DateLayout),
		Gender:    u.Gender,
		Role:      u.Role,
		Status:    u.Status,
		IsStaff:   u.Role == policy.RoleAdmin,
		CreatedAt: u.CreatedAt,
	}
}
