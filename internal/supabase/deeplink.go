package supabase

import (
	"net/url"
	"strings"
)

type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// ParseRedirectFragment pulls the token pair out of an OAuth redirect such as
// telicommunity://google-auth#access_token=...&refresh_token=...
// Anything without both tokens is ignored.
func ParseRedirectFragment(rawURL string) (Tokens, bool) {
	_, fragment, found := strings.Cut(rawURL, "#")
	if !found || fragment == "" {
		return Tokens{}, false
	}
	values, err := url.ParseQuery(fragment)
	if err != nil {
		return Tokens{}, false
	}
	tokens := Tokens{
		AccessToken:  strings.TrimSpace(values.Get("access_token")),
		RefreshToken: strings.TrimSpace(values.Get("refresh_token")),
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return Tokens{}, false
	}
	return tokens, true
}
