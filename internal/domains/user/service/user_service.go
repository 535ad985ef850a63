package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"novelpedia-backend/internal/domains/user"
	"novelpedia-backend/internal/policy"
	"novelpedia-backend/pkg/cache"
	"novelpedia-backend/pkg/logger"
)

const (
	defaultBcryptCost = 12
	resetKeyPrefix    = "reset:"
)

type userService struct {
	repo      user.Repository
	tokens    user.TokenIssuer
	messenger user.ResetMessenger
	cache     cache.Cache
	resetTTL  time.Duration
	hashCost  int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewUserService(
	repo user.Repository,
	tokens user.TokenIssuer,
	messenger user.ResetMessenger,
	cache cache.Cache,
	resetTTL time.Duration,
) user.Service {
	return &userService{
		repo:      repo,
		tokens:    tokens,
		messenger: messenger,
		cache:     cache,
		resetTTL:  resetTTL,
		hashCost:  defaultBcryptCost,
	}
}

// ========================================
// IDENTITY STORE
// ========================================

// ResolveIdentifier matches an exact name first, then an exact email.
func (s *userService) ResolveIdentifier(ctx context.Context, identifier string) (*user.User, error) {
	u, err := s.repo.FindByName(ctx, identifier)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return nil, err
	}
	return s.repo.FindByEmail(ctx, identifier)
}

// Authenticate returns ErrInvalidCredentials for every failure mode. An
// unknown identifier still pays for a bcrypt comparison.
func (s *userService) Authenticate(ctx context.Context, identifier, password string) (*user.User, error) {
	u, err := s.ResolveIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return nil, user.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("resolve identifier: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}
	if !u.CanSignIn() {
		return nil, user.ErrInvalidCredentials
	}
	return u, nil
}

func (s *userService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.hashCost)
	})
	return s.dummyHash
}

// CreateUser rejects duplicate names and emails with field errors and stores
// only the bcrypt hash of the password.
func (s *userService) CreateUser(ctx context.Context, in user.CreateUserInput) (*user.User, error) {
	// Step 1: uniqueness, checked up front for clean field errors. The unique
	// constraints still catch a concurrent insert.
	exists, err := s.repo.ExistsByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, user.NewNameTakenError()
	}
	exists, err = s.repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, user.NewEmailTakenError()
	}

	// Step 2: hash
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := in.Role
	if !role.Valid() {
		role = policy.RoleReader
	}
	gender := in.Gender
	if !gender.IsValid() {
		gender = user.GenderOther
	}

	// Step 3: persist
	u := &user.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		DOB:          in.DOB,
		Gender:       gender,
		Role:         role,
		Status:       user.StatusNormal,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	logger.Info("user created", map[string]interface{}{"user_id": u.ID.String(), "role": string(u.Role)})
	return u, nil
}

// ========================================
// AUTHENTICATION
// ========================================

func (s *userService) Register(ctx context.Context, req user.RegisterRequest) (*user.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, user.NewInvalidInputError(err)
	}

	u, err := s.CreateUser(ctx, req.ToInput())
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, u)
}

func (s *userService) Login(ctx context.Context, req user.LoginRequest) (*user.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, user.NewInvalidInputError(err)
	}

	u, err := s.Authenticate(ctx, strings.TrimSpace(req.Identifier), req.Password)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, u)
}

// Refresh rotates the refresh token: the presented one is revoked.
func (s *userService) Refresh(ctx context.Context, refreshToken string) (*user.LoginResponse, error) {
	userID, err := s.tokens.Consume(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrInvalidToken
		}
		return nil, err
	}
	if !u.CanSignIn() {
		return nil, user.ErrInvalidToken
	}
	return s.issue(ctx, u)
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.Revoke(ctx, refreshToken)
}

func (s *userService) issue(ctx context.Context, u *user.User) (*user.LoginResponse, error) {
	pair, err := s.tokens.Issue(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &user.LoginResponse{TokenPair: *pair, User: u.ToDTO()}, nil
}

// ========================================
// PROFILE
// ========================================

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*user.UserDTO, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := u.ToDTO()
	return &dto, nil
}

// UpdateProfile applies the non-nil fields. A name or email held by another
// account is rejected; re-sending the current value is a no-op.
func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req user.UpdateProfileRequest) (*user.UserDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, user.NewInvalidInputError(err)
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != u.Name {
			taken, err := s.repo.ExistsByName(ctx, name)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, user.NewNameTakenError()
			}
			u.Name = name
		}
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != u.Email {
			taken, err := s.repo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, user.NewEmailTakenError()
			}
			u.Email = email
		}
	}
	if req.DOB != nil {
		u.DOB, _ = time.Parse(user.DateLayout, *req.DOB)
	}
	if req.Gender != nil {
		u.Gender = user.Gender(*req.Gender)
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	logger.Info("profile updated", map[string]interface{}{"user_id": u.ID.String()})
	dto := u.ToDTO()
	return &dto, nil
}

// ========================================
// PASSWORD RESET
// ========================================

// ForgotPassword succeeds silently for unknown emails. A delivery failure is
// returned.
func (s *userService) ForgotPassword(ctx context.Context, req user.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return user.NewInvalidInputError(err)
	}

	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil
		}
		return err
	}

	token, err := generateSecureToken(32)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	if err := s.cache.Set(ctx, resetKeyPrefix+token, u.ID.String(), s.resetTTL); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.messenger.SendPasswordReset(ctx, u.Email, token); err != nil {
		_ = s.cache.Delete(ctx, resetKeyPrefix+token)
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes the token; it cannot be replayed.
func (s *userService) ResetPassword(ctx context.Context, req user.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return user.NewInvalidInputError(err)
	}

	var raw string
	found, err := s.cache.Take(ctx, resetKeyPrefix+req.Token, &raw)
	if err != nil {
		return fmt.Errorf("load reset token: %w", err)
	}
	if !found {
		return user.ErrInvalidToken
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return user.ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, userID, string(hash))
}

// generateSecureToken returns n random bytes hex encoded.
func generateSecureToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
