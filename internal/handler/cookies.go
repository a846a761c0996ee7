package handler

import (
	"net/http"

	"github.com/adeelchainz/base-server/internal/config"
	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// SessionCookies writes the http-only session cookies scoped to the API root
type SessionCookies struct {
	path          string
	domain        string
	secure        bool
	accessMaxAge  int
	refreshMaxAge int
}

func NewSessionCookies(cfg *config.Config) *SessionCookies {
	return &SessionCookies{
		path:          cfg.Server.APIRoot,
		domain:        cfg.Server.CookieDomain,
		secure:        !cfg.IsDevelopment(),
		accessMaxAge:  cfg.JWT.AccessTokenExpiry.MaxAge(),
		refreshMaxAge: cfg.JWT.RefreshTokenExpiry.MaxAge(),
	}
}

func (s *SessionCookies) Set(c *gin.Context, accessToken, refreshToken string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AccessTokenCookie, accessToken, s.accessMaxAge, s.path, s.domain, s.secure, true)
	c.SetCookie(RefreshTokenCookie, refreshToken, s.refreshMaxAge, s.path, s.domain, s.secure, true)
}

func (s *SessionCookies) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AccessTokenCookie, "", -1, s.path, s.domain, s.secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, s.path, s.domain, s.secure, true)
}
