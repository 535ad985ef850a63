package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"novelpedia-backend/internal/domains/user"
	infraCache "novelpedia-backend/internal/infrastructure/cache"
	"novelpedia-backend/internal/policy"
)

type memoryRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[uuid.UUID]*user.User{}}
}

func (m *memoryRepo) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Name == u.Name {
			return user.NewNameTakenError()
		}
		if existing.Email == u.Email {
			return user.NewEmailTakenError()
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memoryRepo) find(match func(*user.User) bool) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *memoryRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	return m.find(func(u *user.User) bool { return u.ID == id })
}

func (m *memoryRepo) FindByName(_ context.Context, name string) (*user.User, error) {
	return m.find(func(u *user.User) bool { return u.Name == name })
}

func (m *memoryRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	return m.find(func(u *user.User) bool { return u.Email == email })
}

func (m *memoryRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	_, err := m.FindByName(ctx, name)
	return err == nil, nil
}

func (m *memoryRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *memoryRepo) Update(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.users[u.ID]
	if !ok {
		return user.ErrUserNotFound
	}
	for id, other := range m.users {
		if id == u.ID {
			continue
		}
		if other.Name == u.Name {
			return user.NewNameTakenError()
		}
		if other.Email == u.Email {
			return user.NewEmailTakenError()
		}
	}
	stored.Name, stored.Email, stored.DOB, stored.Gender = u.Name, u.Email, u.DOB, u.Gender
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *memoryRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memoryRepo) PromoteToAuthor(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok && u.Role == policy.RoleReader {
		u.Role = policy.RoleAuthor
	}
	return nil
}

func (m *memoryRepo) mutate(id uuid.UUID, fn func(*user.User)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.users[id])
}

type recordingMessenger struct {
	to, token string
	err       error
}

func (r *recordingMessenger) SendPasswordReset(_ context.Context, to, token string) error {
	r.to, r.token = to, token
	return r.err
}

func newTestCache(t *testing.T) *infraCache.RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	return infraCache.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}
