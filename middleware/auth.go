package middleware

import (
	"net/http"
	"strings"

	"creditcoach/services/auth"
	"creditcoach/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// BearerAuth verifies the Authorization header. With optional set, requests
// without a usable token continue anonymously; otherwise they get a 401.
func BearerAuth(v auth.Verifier, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if optional {
				c.Next()
				return
			}
			utils.JSONError(c, http.StatusUnauthorized, "Please sign in to continue.", "")
			return
		}

		id, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			if optional {
				utils.GetLogger().Debug("auth: ignoring invalid optional token", zap.Error(err))
				c.Next()
				return
			}
			utils.JSONError(c, http.StatusUnauthorized, "Your sign-in has expired. Please sign in again.", "")
			return
		}

		c.Set(utils.CtxIdentity, id)
		c.Next()
	}
}

// IdentityFrom returns the verified identity, or nil for anonymous requests.
func IdentityFrom(c *gin.Context) *auth.Identity {
	if v, ok := c.Get(utils.CtxIdentity); ok {
		if id, ok := v.(*auth.Identity); ok {
			return id
		}
	}
	return nil
}
