package federation

import (
	"context"

	"github.com/google/uuid"
)

// ProviderGoogle is the only provider wired today.
const ProviderGoogle = "google"

// Profile is what a provider tells us about the signed-in identity.
type Profile struct {
	UID   string
	Email string
	Name  string
	Raw   map[string]interface{}
}

// Provider exchanges authorization artifacts for a Profile. Implementations
// must bound every outbound call with a timeout and never retry.
type Provider interface {
	Name() string
	Configured() bool
	AuthCodeURL(state, redirectURI string) string
	// Exchange trades an authorization code for an access token.
	Exchange(ctx context.Context, code, redirectURI string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}

// ExternalAccount links a local user to one provider identity.
type ExternalAccount struct {
	UserID    uuid.UUID
	Provider  string
	UID       string
	ExtraData map[string]interface{}
}

// LinkRepository stores ExternalAccount rows, one per (user, provider).
type LinkRepository interface {
	Upsert(ctx context.Context, link *ExternalAccount) error
}

// ========================================
// DTOs
// ========================================

type StartResult struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

type ProviderInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}

type StartRequest struct {
	RedirectURI string `form:"redirect_uri"`
}

type TokenLoginRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

// StateRecord is what the state key holds until the callback consumes it.
type StateRecord struct {
	Provider    string `json:"provider"`
	RedirectURI string `json:"redirect_uri,omitempty"`
}
