package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/playdex/claim-core/internal/core/domain"
	"github.com/playdex/claim-core/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.IdentityProvider = (*Client)(nil)

// Config holds the OAuth2 application credentials and provider endpoints.
// All values are fixed at startup; the client is safe for concurrent use.
type Config struct {
	// ClientID and ClientSecret identify the confidential client.
	ClientID     string
	ClientSecret string

	// AuthURL is the provider's authorization endpoint.
	AuthURL string

	// TokenURL is the token exchange endpoint.
	TokenURL string

	// ProfileURL returns the authenticated account's profile.
	ProfileURL string

	// RevokeURL is the token revocation endpoint. Optional; when empty,
	// RevokeToken is a no-op.
	RevokeURL string

	// RedirectURI must exactly match the value registered with the
	// provider.
	RedirectURI string

	// Scopes are the requested OAuth scopes.
	Scopes []string

	// Timeout bounds each outbound call. Defaults to 30s.
	Timeout time.Duration
}

// Client talks to the external identity provider.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a provider client from explicit configuration.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BuildAuthURL constructs the provider authorization URL. Pure function:
// same attempt in, same URL out. Only the S256 challenge method is ever
// sent.
func (c *Client) BuildAuthURL(state, codeChallenge string) string {
	params := url.Values{
		"response_type":         {"code"},
		"client_id":             {c.cfg.ClientID},
		"redirect_uri":          {c.cfg.RedirectURI},
		"scope":                 {strings.Join(c.cfg.Scopes, " ")},
		"state":                 {state},
		"code_challenge":        {codeChallenge},
		"code_challenge_method": {"S256"},
	}
	return c.cfg.AuthURL + "?" + params.Encode()
}

// tokenResponse is the provider's token endpoint wire format.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

// ExchangeCode exchanges an authorization code for tokens, presenting the
// PKCE verifier and the confidential client credentials via Basic auth.
func (c *Client) ExchangeCode(ctx context.Context, code, codeVerifier string) (*domain.TokenSet, error) {
	params := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {c.cfg.RedirectURI},
		"code_verifier": {codeVerifier},
	}
	return c.tokenRequest(ctx, params)
}

// RefreshToken exchanges a refresh token for a new token set.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenSet, error) {
	params := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	return c.tokenRequest(ctx, params)
}

// tokenRequest posts a form-encoded grant to the token endpoint.
func (c *Client) tokenRequest(ctx context.Context, params url.Values) (*domain.TokenSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL,
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if tr.Error != "" {
		return nil, fmt.Errorf("oauth error: %s - %s", tr.Error, tr.ErrorDesc)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access token")
	}

	return &domain.TokenSet{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
		ExpiresIn:    tr.ExpiresIn,
	}, nil
}

// FetchProfile fetches the authenticated account's profile.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*domain.IdentityProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.ProfileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("profile endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	// Providers disagree on whether the account ID is numeric or a
	// string; json.Number tolerates both.
	var profile struct {
		ID          json.Number `json:"id"`
		Username    string      `json:"username"`
		DisplayName string      `json:"display_name"`
		AvatarURL   string      `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if profile.Username == "" {
		return nil, fmt.Errorf("profile response missing username")
	}

	return &domain.IdentityProfile{
		ExternalID:  profile.ID.String(),
		Handle:      profile.Username,
		DisplayName: profile.DisplayName,
		AvatarURL:   profile.AvatarURL,
	}, nil
}

// RevokeToken revokes a token at the provider. No-op when the provider
// has no revocation endpoint configured.
func (c *Client) RevokeToken(ctx context.Context, token string) error {
	if c.cfg.RevokeURL == "" {
		return nil
	}

	params := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.RevokeURL,
		strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("revoke endpoint returned %d", resp.StatusCode)
	}
	return nil
}
