package common

import (
	"net/http"

	"telicommunity-go/internal/transport/httpserver/middleware"
)

type authMeResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type oauthURLResponse struct {
	URL         string `json:"url"`
	RedirectURI string `json:"redirect_uri"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	writeJSON(w, http.StatusOK, authMeResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	})
}

// OAuthURL returns the browser URL for Google sign-in. The browser comes back
// to the app's redirect URI with the session in the fragment.
func (h *Handlers) OAuthURL(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		h.log.Error("auth.oauth_url: oauth not configured")
		writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth not configured")
		return
	}
	writeJSON(w, http.StatusOK, oauthURLResponse{
		URL:         h.oauth.GoogleAuthorizeURL(h.oauthRedirect),
		RedirectURI: h.oauthRedirect,
	})
}
