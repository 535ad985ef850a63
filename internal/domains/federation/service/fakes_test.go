package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"novelpedia-backend/internal/domains/federation"
	"novelpedia-backend/internal/domains/user"
	infraCache "novelpedia-backend/internal/infrastructure/cache"
)

// memoryUsers backs both user.Repository and the CreateUser half of
// user.Service.
type memoryUsers struct {
	user.Service
	mu    sync.Mutex
	users []*user.User
}

func (m *memoryUsers) find(match func(*user.User) bool) (*user.User, error) {
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

func (m *memoryUsers) Create(_ context.Context, u *user.User) error {
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
	cp := *u
	m.users = append(m.users, &cp)
	return nil
}

func (m *memoryUsers) CreateUser(ctx context.Context, in user.CreateUserInput) (*user.User, error) {
	u := &user.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: "hash:" + in.Password,
		DOB:          in.DOB,
		Gender:       in.Gender,
		Role:         in.Role,
		Status:       user.StatusNormal,
		IsActive:     true,
	}
	if err := m.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (m *memoryUsers) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	return m.find(func(u *user.User) bool { return u.ID == id })
}

func (m *memoryUsers) FindByName(_ context.Context, name string) (*user.User, error) {
	return m.find(func(u *user.User) bool { return u.Name == name })
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*user.User, error) {
	return m.find(func(u *user.User) bool { return u.Email == email })
}

func (m *memoryUsers) ExistsByName(ctx context.Context, name string) (bool, error) {
	_, err := m.FindByName(ctx, name)
	return err == nil, nil
}

func (m *memoryUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *memoryUsers) Update(context.Context, *user.User) error { return nil }

func (m *memoryUsers) UpdatePassword(context.Context, uuid.UUID, string) error { return nil }

func (m *memoryUsers) PromoteToAuthor(context.Context, uuid.UUID) error { return nil }

func (m *memoryUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

type memoryLinks struct {
	mu    sync.Mutex
	links map[string]federation.ExternalAccount
	err   error
}

func (m *memoryLinks) Upsert(_ context.Context, link *federation.ExternalAccount) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.links == nil {
		m.links = map[string]federation.ExternalAccount{}
	}
	m.links[link.UserID.String()+"/"+link.Provider] = *link
	return nil
}

type stubIssuer struct {
	user.TokenIssuer
	err error
}

func (s stubIssuer) Issue(_ context.Context, u *user.User) (*user.TokenPair, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &user.TokenPair{AccessToken: "access-" + u.Name, RefreshToken: "refresh-" + u.Name}, nil
}

// stubProvider accepts code "good" and serves profiles keyed by access token.
type stubProvider struct {
	profiles map[string]*federation.Profile
}

func (p *stubProvider) Name() string     { return federation.ProviderGoogle }
func (p *stubProvider) Configured() bool { return true }

func (p *stubProvider) AuthCodeURL(state, _ string) string {
	return "https://provider.test/auth?state=" + state
}

func (p *stubProvider) Exchange(_ context.Context, code, _ string) (string, error) {
	if code != "good" {
		return "", federation.Fail(federation.ReasonExchangeFailed, errors.New("bad code"))
	}
	return "token-jordan", nil
}

func (p *stubProvider) FetchProfile(_ context.Context, accessToken string) (*federation.Profile, error) {
	profile, ok := p.profiles[accessToken]
	if !ok {
		return nil, federation.Fail(federation.ReasonProfileUnavailable, nil)
	}
	return profile, nil
}

type fixture struct {
	svc   *FederationService
	users *memoryUsers
	links *memoryLinks
	redis *miniredis.Miniredis
}

func newFixture(t *testing.T, providers ...federation.Provider) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	states := infraCache.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	if len(providers) == 0 {
		providers = []federation.Provider{&stubProvider{profiles: map[string]*federation.Profile{
			"token-jordan": {UID: "g-1", Email: "jordan@example.com", Name: "Jordan", Raw: map[string]interface{}{"id": "g-1"}},
		}}}
	}

	users := &memoryUsers{}
	links := &memoryLinks{}
	svc := NewFederationService(providers, users, users, links, stubIssuer{}, states, 10*time.Minute)
	return fixture{svc: svc, users: users, links: links, redis: mr}
}
