package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/Maxbrain0/echo_blog/config"
	"github.com/Maxbrain0/echo_blog/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

// Profile endpoints returning a JSON object with the subject under "id".
const (
	GoogleProfileURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
	FacebookProfileURL = "https://graph.facebook.com/me?fields=id"
)

// maxProfileBytes bounds how much of a profile response is read.
const maxProfileBytes = 1 << 20

// Provider is one OAuth identity provider. Providers differ only in data:
// endpoints, scopes and where the subject id is fetched from.
type Provider struct {
	Name       model.Provider
	OAuth      oauth2.Config
	ProfileURL string
}

// AuthCodeURL is the consent page the browser is sent to.
func (p *Provider) AuthCodeURL(state string) string {
	return p.OAuth.AuthCodeURL(state)
}

// Subject exchanges the callback code for a token and asks the provider who
// the token belongs to.
func (p *Provider) Subject(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("%s: missing authorization code", p.Name)
	}
	token, err := p.OAuth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%s: code exchange: %w", p.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.ProfileURL, nil)
	if err != nil {
		return "", fmt.Errorf("%s: profile request: %w", p.Name, err)
	}
	res, err := p.OAuth.Client(ctx, token).Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: fetch profile: %w", p.Name, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: fetch profile: status %d", p.Name, res.StatusCode)
	}

	var profile struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(io.LimitReader(res.Body, maxProfileBytes)).Decode(&profile); err != nil {
		return "", fmt.Errorf("%s: decode profile: %w", p.Name, err)
	}
	if profile.ID == "" {
		return "", ErrMissingSubject
	}
	return profile.ID, nil
}

// Providers indexes the configured providers by name.
type Providers map[model.Provider]*Provider

// NewProviders builds a Provider for every provider with credentials in cfg.
func NewProviders(cfg config.Config) Providers {
	ps := Providers{}
	if cfg.GoogleClientID != "" {
		ps[model.ProviderGoogle] = &Provider{
			Name: model.ProviderGoogle,
			OAuth: oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				RedirectURL:  cfg.GoogleCallbackURL,
				Scopes:       []string{"profile"},
				Endpoint:     google.Endpoint,
			},
			ProfileURL: GoogleProfileURL,
		}
	}
	if cfg.FacebookAppID != "" {
		ps[model.ProviderFacebook] = &Provider{
			Name: model.ProviderFacebook,
			OAuth: oauth2.Config{
				ClientID:     cfg.FacebookAppID,
				ClientSecret: cfg.FacebookAppSecret,
				RedirectURL:  cfg.FacebookCallbackURL,
				Endpoint:     facebook.Endpoint,
			},
			ProfileURL: FacebookProfileURL,
		}
	}
	return ps
}

// Names lists the configured provider names in a stable order.
func (ps Providers) Names() []model.Provider {
	names := make([]model.Provider, 0, len(ps))
	for name := range ps {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
