package user

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"novelpedia-backend/internal/policy"
)

// DateLayout is the wire format for dates of birth.
const DateLayout = "2006-01-02"

var namePattern = regexp.MustCompile(`^[\p{L}\p{N}_.\-]+$`)

// ========================================
// IDENTITY STORE INPUT
// ========================================

// CreateUserInput is the trusted input of Service.CreateUser. Password is
// plaintext and is hashed before storage.
type CreateUserInput struct {
	Name     string
	Email    string
	DOB      time.Time
	Gender   Gender
	Password string
	Role     policy.Role
}

// ========================================
// AUTH DTOs
// ========================================

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	DOB      string `json:"dob" binding:"required"`
	Gender   string `json:"gender" binding:"required"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(3, 150),
			validation.Match(namePattern).Error("name may only contain letters, digits, '.', '_' and '-'"),
		),
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.EmailFormat.Error("invalid email format"),
			validation.Length(5, 255),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be 8-128 characters"),
		),
		validation.Field(&r.DOB,
			validation.Required,
			validation.Date(DateLayout).Error("dob must be YYYY-MM-DD"),
		),
		validation.Field(&r.Gender,
			validation.Required,
			validation.In(string(GenderMale), string(GenderFemale), string(GenderOther)),
		),
	)
}

// ToInput converts a validated request. Email is lowercased.
func (r RegisterRequest) ToInput() CreateUserInput {
	dob, _ := time.Parse(DateLayout, r.DOB)
	return CreateUserInput{
		Name:     strings.TrimSpace(r.Name),
		Email:    strings.ToLower(strings.TrimSpace(r.Email)),
		DOB:      dob,
		Gender:   Gender(r.Gender),
		Password: r.Password,
		Role:     policy.RoleReader,
	}
}

// LoginRequest accepts a name or an email as identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Identifier, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// TokenPair is what the token issuer hands back.
type TokenPair struct {
	AccessToken  string    `json:"access"`
	RefreshToken string    `json:"refresh"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type LoginResponse struct {
	TokenPair
	User UserDTO `json:"user"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
	)
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 128)),
	)
}

// ========================================
// PROFILE DTOs
// ========================================

// UpdateProfileRequest is a partial update: nil fields are left as they are.
type UpdateProfileRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	DOB    *string `json:"dob"`
	Gender *string `json:"gender"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.NilOrNotEmpty.Error("name cannot be blank"),
			validation.Length(3, 150),
			validation.Match(namePattern).Error("name may only contain letters, digits, '.', '_' and '-'"),
		),
		validation.Field(&r.Email,
			validation.NilOrNotEmpty.Error("email cannot be blank"),
			is.EmailFormat.Error("invalid email format"),
			validation.Length(5, 255),
		),
		validation.Field(&r.DOB,
			validation.NilOrNotEmpty,
			validation.Date(DateLayout).Error("dob must be YYYY-MM-DD"),
		),
		validation.Field(&r.Gender,
			validation.NilOrNotEmpty,
			validation.In(string(GenderMale), string(GenderFemale), string(GenderOther)),
		),
	)
}

// ========================================
// RESPONSE DTOs
// ========================================

type UserDTO struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	DOB       string      `json:"dob"`
	Gender    Gender      `json:"gender"`
	Role      policy.Role `json:"role"`
	Status    Status      `json:"user_status"`
	IsStaff   bool        `json:"is_staff"`
	CreatedAt time.Time   `json:"created_at"`
}
