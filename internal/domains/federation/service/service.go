package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"time"

	"novelpedia-backend/internal/domains/federation"
	"novelpedia-backend/internal/domains/user"
	"novelpedia-backend/internal/metrics"
	"novelpedia-backend/internal/policy"
	"novelpedia-backend/internal/shared/apperror"
	"novelpedia-backend/pkg/cache"
	"novelpedia-backend/pkg/logger"
)

const (
	stateKeyPrefix  = "oauth_state:"
	stateBytes      = 18 // 24 URL-safe characters
	passwordBytes   = 32
	maxNameAttempts = 50
)

var defaultDOB = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// ServiceInterface is the external identity federation flow.
type ServiceInterface interface {
	Providers() []federation.ProviderInfo
	Start(ctx context.Context, provider, redirectURI string) (*federation.StartResult, error)
	Callback(ctx context.Context, provider, code, state string) (*user.LoginResponse, error)
	LoginWithAccessToken(ctx context.Context, provider, accessToken string) (*user.LoginResponse, error)
}

// FederationService maps an external identity onto exactly one local user.
type FederationService struct {
	providers map[string]federation.Provider
	users     user.Repository
	identity  user.Service
	links     federation.LinkRepository
	tokens    user.TokenIssuer
	states    cache.Cache
	stateTTL  time.Duration
}

func NewFederationService(
	providers []federation.Provider,
	users user.Repository,
	identity user.Service,
	links federation.LinkRepository,
	tokens user.TokenIssuer,
	states cache.Cache,
	stateTTL time.Duration,
) *FederationService {
	byName := make(map[string]federation.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &FederationService{
		providers: byName,
		users:     users,
		identity:  identity,
		links:     links,
		tokens:    tokens,
		states:    states,
		stateTTL:  stateTTL,
	}
}

func (s *FederationService) Providers() []federation.ProviderInfo {
	out := make([]federation.ProviderInfo, 0, len(s.providers))
	for name, p := range s.providers {
		out = append(out, federation.ProviderInfo{
			ID:         name,
			Name:       "Continue with " + displayName(name),
			Configured: p.Configured(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func displayName(provider string) string {
	if provider == federation.ProviderGoogle {
		return "Google"
	}
	return provider
}

func (s *FederationService) provider(name string) (federation.Provider, error) {
	p, ok := s.providers[name]
	if !ok || !p.Configured() {
		return nil, federation.ErrProviderNotConfigured
	}
	return p, nil
}

// ========================================
// START / CALLBACK
// ========================================

// Start issues a single-use state and the provider's consent URL.
func (s *FederationService) Start(ctx context.Context, providerName, redirectURI string) (*federation.StartResult, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return nil, s.fail(providerName, err)
	}

	state, err := randomToken(stateBytes)
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}
	record := federation.StateRecord{Provider: providerName, RedirectURI: redirectURI}
	if err := s.states.Set(ctx, stateKeyPrefix+state, record, s.stateTTL); err != nil {
		return nil, fmt.Errorf("store state: %w", err)
	}

	return &federation.StartResult{
		AuthURL: p.AuthCodeURL(state, redirectURI),
		State:   state,
	}, nil
}

// Callback consumes state, exchanges code and signs the user in.
func (s *FederationService) Callback(ctx context.Context, providerName, code, state string) (*user.LoginResponse, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return nil, s.fail(providerName, err)
	}

	var record federation.StateRecord
	found := false
	if state != "" {
		found, err = s.states.Take(ctx, stateKeyPrefix+state, &record)
		if err != nil {
			return nil, fmt.Errorf("load state: %w", err)
		}
	}
	if !found || record.Provider != providerName {
		return nil, s.fail(providerName, federation.ErrInvalidState)
	}
	if code == "" {
		return nil, s.fail(providerName, federation.Fail(federation.ReasonExchangeFailed, errors.New("missing code")))
	}

	accessToken, err := p.Exchange(ctx, code, record.RedirectURI)
	if err != nil {
		return nil, s.fail(providerName, err)
	}
	return s.complete(ctx, p, accessToken)
}

// LoginWithAccessToken serves clients that ran the consent flow themselves.
func (s *FederationService) LoginWithAccessToken(ctx context.Context, providerName, accessToken string) (*user.LoginResponse, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return nil, s.fail(providerName, err)
	}
	if accessToken == "" {
		return nil, s.fail(providerName, federation.Fail(federation.ReasonNoAccessToken, nil))
	}
	return s.complete(ctx, p, accessToken)
}

func (s *FederationService) complete(ctx context.Context, p federation.Provider, accessToken string) (*user.LoginResponse, error) {
	profile, err := p.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, s.fail(p.Name(), err)
	}

	u, err := s.Reconcile(ctx, p.Name(), profile)
	if err != nil {
		return nil, s.fail(p.Name(), err)
	}

	// The user and link stay even when issuance fails.
	pair, err := s.tokens.Issue(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	metrics.RecordFederation(p.Name(), "success")
	return &user.LoginResponse{TokenPair: *pair, User: u.ToDTO()}, nil
}

// fail counts the failure under its reason and passes err through.
func (s *FederationService) fail(provider string, err error) error {
	reason := federation.Reason(err)
	if reason == "" {
		reason = "error"
	}
	metrics.RecordFederation(provider, reason)
	return err
}

// ========================================
// RECONCILIATION
// ========================================

// Reconcile returns the local user owning profile's email, creating one on
// first sight, and records the provider link.
func (s *FederationService) Reconcile(ctx context.Context, providerName string, profile *federation.Profile) (*user.User, error) {
	u, err := s.users.FindByEmail(ctx, profile.Email)
	switch {
	case err == nil:
	case errors.Is(err, user.ErrUserNotFound):
		u, err = s.createUser(ctx, profile)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	if !u.CanSignIn() {
		return nil, federation.Fail(federation.ReasonAuthenticationFailed, user.ErrInvalidCredentials)
	}

	s.link(ctx, u, providerName, profile)
	return u, nil
}

// createUser picks the first free name of base, base_1, base_2... A lost
// race on the name moves to the next candidate; a lost race on the email
// returns the winner.
func (s *FederationService) createUser(ctx context.Context, profile *federation.Profile) (*user.User, error) {
	password, err := randomToken(passwordBytes)
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}

	base := baseName(profile.Name, profile.Email)
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name := candidateName(base, attempt)
		taken, err := s.users.ExistsByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		u, err := s.identity.CreateUser(ctx, user.CreateUserInput{
			Name:     name,
			Email:    profile.Email,
			DOB:      defaultDOB,
			Gender:   user.GenderOther,
			Password: password,
			Role:     policy.RoleReader,
		})
		if err == nil {
			return u, nil
		}

		appErr, ok := apperror.As(err)
		switch {
		case ok && appErr.Code == user.ErrCodeNameTaken:
			continue
		case ok && appErr.Code == user.ErrCodeEmailTaken:
			return s.users.FindByEmail(ctx, profile.Email)
		default:
			return nil, err
		}
	}
	return nil, fmt.Errorf("no free username for %q after %d attempts", base, maxNameAttempts)
}

// link upserts the provider link. Failures never fail the login.
func (s *FederationService) link(ctx context.Context, u *user.User, providerName string, profile *federation.Profile) {
	err := s.links.Upsert(ctx, &federation.ExternalAccount{
		UserID:    u.ID,
		Provider:  providerName,
		UID:       profile.UID,
		ExtraData: profile.Raw,
	})
	if err != nil {
		logger.Warn("external account link failed", err, map[string]interface{}{
			"user_id":  u.ID.String(),
			"provider": providerName,
		})
	}
}

// randomToken returns n random bytes, URL-safe base64 encoded without
// padding.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
