package middleware

import (
	"net/http"

	"creditcoach/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionCookieMaxAge = 30 * 24 * 60 * 60

// SessionMiddleware makes sure every request carries a session id, issuing a
// new cookie when the browser has none or sent something that is not ours.
func SessionMiddleware(cookieName string, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.New().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, id, sessionCookieMaxAge, "/", "", secure, true)
		}
		c.Set(utils.CtxSessionID, id)
		c.Next()
	}
}

// SessionID returns the id set by SessionMiddleware.
func SessionID(c *gin.Context) string {
	return c.GetString(utils.CtxSessionID)
}
