package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const ProviderGoogle = "google"

// Client talks to the Supabase auth REST API (GoTrue).
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// AuthorizeURL is the browser URL that starts an OAuth sign-in and returns to
// redirectTo with the session in the fragment.
func (c *Client) AuthorizeURL(provider, redirectTo string, query url.Values) string {
	params := url.Values{}
	params.Set("provider", provider)
	params.Set("redirect_to", redirectTo)
	for key, values := range query {
		for _, value := range values {
			params.Add(key, value)
		}
	}
	return c.baseURL + "/auth/v1/authorize?" + params.Encode()
}

// GoogleAuthorizeURL asks for offline access and forces the consent screen so
// a refresh token is always issued.
func (c *Client) GoogleAuthorizeURL(redirectTo string) string {
	return c.AuthorizeURL(ProviderGoogle, redirectTo, url.Values{
		"access_type": {"offline"},
		"prompt":      {"consent"},
	})
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (User, error) {
	var payload userResponse
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &payload); err != nil {
		return User{}, err
	}
	user, ok := payload.toUser()
	if !ok {
		return User{}, ErrInvalidToken
	}
	return user, nil
}

type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	User         userResponse `json:"user"`
}

func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return TokenResponse{}, ErrUnauthorized
	}
	body := map[string]string{"refresh_token": refreshToken}
	var resp TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", body, &resp); err != nil {
		return TokenResponse{}, err
	}
	if resp.AccessToken == "" {
		return TokenResponse{}, ErrInvalidToken
	}
	return resp, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("supabase %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusBadRequest && strings.HasPrefix(path, "/auth/v1/token"):
		return ErrUnauthorized
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("supabase %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
