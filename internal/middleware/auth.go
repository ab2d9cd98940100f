package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"wakemeup/internal/token"
)

const userIDContextKey = "userID"

func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDContextKey)
	if !ok {
		return 0, false
	}
	userID, ok := v.(int64)
	return userID, ok
}

// CookieAuth gates every protected operation. It validates the sealed
// session cookie and, on success, re-issues it with a fresh timestamp:
// the sliding window that keeps a session alive while it is in use.
type CookieAuth struct {
	Sealer *token.Sealer
	Now    func() time.Time // nil means time.Now
}

func (a *CookieAuth) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *CookieAuth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(token.CookieName)
		if err != nil {
			// Absent cookie: reject without touching cookies.
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorBody(c, "NO_AUTH"))
			return
		}

		value, err := a.Sealer.Open(raw)
		if err != nil {
			// A cookie that fails authentication is indistinguishable
			// from no cookie at all.
			log.Warn().Str("req_id", RequestIDFrom(c)).Msg("auth cookie failed to open")
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorBody(c, "NO_AUTH"))
			return
		}

		tok, err := token.Parse(value)
		if err == nil {
			err = tok.Fresh(a.now())
		}
		if err != nil {
			// Poisoned token: force a re-login instead of letting the
			// client retry it forever.
			log.Warn().Err(err).Str("req_id", RequestIDFrom(c)).Msg("rejecting auth token")
			ClearSession(c)
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorBody(c, "NO_AUTH"))
			return
		}

		if err := a.SetSession(c, tok.UserID); err != nil {
			log.Error().Err(err).Str("req_id", RequestIDFrom(c)).Msg("refreshing auth cookie failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorBody(c, "SERVICE_ERROR"))
			return
		}
		c.Set(userIDContextKey, tok.UserID)
		c.Next()
	}
}

// SetSession seals a freshly issued token for userID into the auth
// cookie. Used at login and on every authenticated request.
func (a *CookieAuth) SetSession(c *gin.Context, userID int64) error {
	sealed, err := a.Sealer.Seal(token.Issue(userID, a.now()).String())
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(token.CookieName, sealed, int(token.Window/time.Second), "/", "", false, true)
	return nil
}

// ClearSession expires the auth cookie.
func ClearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(token.CookieName, "", -1, "/", "", false, true)
}
