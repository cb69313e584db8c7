package apiclient

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"
)

type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Username  string    `json:"username"`
	Age       int       `json:"age"`
	City      string    `json:"city"`
	AvatarURL *string   `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProfileInput struct {
	FullName  string
	Username  string
	Age       int
	City      string
	Avatar    []byte
	AvatarURL string
}

type setupProfileRequest struct {
	FullName     string `json:"full_name"`
	Username     string `json:"username"`
	Age          int    `json:"age"`
	City         string `json:"city"`
	AvatarBase64 string `json:"avatar_base64,omitempty"`
	AvatarURL    string `json:"avatar_url,omitempty"`
}

type Me struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func (c *Client) Me(ctx context.Context) (Me, error) {
	var me Me
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &me)
	return me, err
}

func (c *Client) OAuthURL(ctx context.Context) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.send(ctx, c.http, http.MethodGet, "/api/auth/oauth-url", nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

func (c *Client) GetProfile(ctx context.Context) (Profile, error) {
	var profile Profile
	err := c.do(ctx, http.MethodGet, "/api/profiles/me", nil, &profile)
	return profile, err
}

// HasProfile reports whether the signed-in user has finished setup. The
// userID argument only ties the answer to the session that asked.
func (c *Client) HasProfile(ctx context.Context, userID string) (bool, error) {
	_, err := c.GetProfile(ctx)
	if IsCode(err, "profile_not_found") {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) SetupProfile(ctx context.Context, input ProfileInput) (Profile, error) {
	req := setupProfileRequest{
		FullName:  input.FullName,
		Username:  input.Username,
		Age:       input.Age,
		City:      input.City,
		AvatarURL: input.AvatarURL,
	}
	if len(input.Avatar) > 0 {
		req.AvatarBase64 = base64.StdEncoding.EncodeToString(input.Avatar)
	}
	var profile Profile
	err := c.do(ctx, http.MethodPut, "/api/profiles/me", req, &profile)
	return profile, err
}
