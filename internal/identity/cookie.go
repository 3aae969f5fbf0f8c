package identity

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// TokenCookieName is where the anonymous session token lives on the
	// client.
	TokenCookieName = "farm_uid"

	tokenCookieTTL = 365 * 24 * time.Hour
)

// CookieTokenStore backs the resolver's TokenStore with an HTTP cookie on
// the current request.
type CookieTokenStore struct {
	c *gin.Context
}

func NewCookieTokenStore(c *gin.Context) *CookieTokenStore {
	return &CookieTokenStore{c: c}
}

func (s *CookieTokenStore) Token() (string, bool) {
	token, err := s.c.Cookie(TokenCookieName)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

func (s *CookieTokenStore) SetToken(token string) error {
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(TokenCookieName, token, int(tokenCookieTTL.Seconds()), "/", "", false, true)
	return nil
}
