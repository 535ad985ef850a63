package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"novelpedia-backend/internal/domains/federation"
	"novelpedia-backend/pkg/logger"
)

const maxProfileBytes = 1 << 20

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	UserinfoURLs []string
	Timeout      time.Duration
}

// Google signs users in with Google OAuth 2.0 and reads their profile from
// the first userinfo endpoint that returns an email.
type Google struct {
	oauth     oauth2.Config
	userinfo  []string
	timeout   time.Duration
	client    *http.Client
	available bool
}

var _ federation.Provider = (*Google)(nil)

func NewGoogle(cfg GoogleConfig) *Google {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Google{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userinfo:  cfg.UserinfoURLs,
		timeout:   timeout,
		client:    &http.Client{Timeout: timeout},
		available: cfg.ClientID != "" && cfg.ClientSecret != "",
	}
}

func (g *Google) Name() string { return federation.ProviderGoogle }

func (g *Google) Configured() bool { return g.available }

func (g *Google) config(redirectURI string) *oauth2.Config {
	cfg := g.oauth
	if redirectURI != "" {
		cfg.RedirectURL = redirectURI
	}
	return &cfg
}

func (g *Google) AuthCodeURL(state, redirectURI string) string {
	return g.config(redirectURI).AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

func (g *Google) Exchange(ctx context.Context, code, redirectURI string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.client)

	tok, err := g.config(redirectURI).Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if !errors.As(err, &rerr) && strings.Contains(err.Error(), "missing access_token") {
			return "", federation.Fail(federation.ReasonNoAccessToken, err)
		}
		return "", federation.Fail(federation.ReasonExchangeFailed, err)
	}
	if tok.AccessToken == "" {
		return "", federation.Fail(federation.ReasonNoAccessToken, nil)
	}
	return tok.AccessToken, nil
}

// FetchProfile tries each userinfo endpoint in order. Failures are logged
// and the next endpoint is tried.
func (g *Google) FetchProfile(ctx context.Context, accessToken string) (*federation.Profile, error) {
	for _, endpoint := range g.userinfo {
		data, err := g.userinfoAt(ctx, endpoint, accessToken)
		if err != nil {
			logger.Warn("userinfo endpoint failed", err, map[string]interface{}{"endpoint": endpoint})
			continue
		}

		email, _ := data["email"].(string)
		if email == "" {
			logger.Warn("userinfo response has no email", nil, map[string]interface{}{"endpoint": endpoint})
			continue
		}
		return &federation.Profile{
			UID:   firstString(data, "id", "sub"),
			Email: strings.ToLower(strings.TrimSpace(email)),
			Name:  firstString(data, "name", "given_name"),
			Raw:   data,
		}, nil
	}
	return nil, federation.Fail(federation.ReasonProfileUnavailable, nil)
}

func (g *Google) userinfoAt(ctx context.Context, endpoint, accessToken string) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned %d", resp.StatusCode)
	}

	var data map[string]interface{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxProfileBytes)).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return data, nil
}

// firstString returns the first key holding a non-empty value. Numeric ids
// are rendered without a fraction.
func firstString(data map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := data[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
