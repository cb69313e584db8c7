package common

import (
	"telicommunity-go/pkg/logger"
)

type OAuthURLBuilder interface {
	GoogleAuthorizeURL(redirectTo string) string
}

type Handlers struct {
	oauth         OAuthURLBuilder
	oauthRedirect string
	log           logger.Logger
}

func New(oauth OAuthURLBuilder, oauthRedirect string, log logger.Logger) *Handlers {
	return &Handlers{
		oauth:         oauth,
		oauthRedirect: oauthRedirect,
		log:           log,
	}
}
