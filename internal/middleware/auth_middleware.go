// internal/middleware/auth_middleware.go
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"mobility-service/internal/pkg/partnerauth"
	"mobility-service/internal/pkg/response"
	"mobility-service/internal/pkg/token"

	"github.com/gin-gonic/gin"
)

// BasicAuth guards the SPA-facing API with the shared non-production
// credentials from the environment.
func BasicAuth(username, password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="mobility"`)
			response.Error(c, http.StatusUnauthorized, "missing credentials", nil)
			return
		}
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1
		if !userOK || !passOK {
			response.Error(c, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		c.Next()
	}
}

type PartnerAuthMiddleware struct {
	tokens *token.Manager
	store  *partnerauth.Store
}

func NewPartnerAuthMiddleware(tokens *token.Manager, store *partnerauth.Store) *PartnerAuthMiddleware {
	return &PartnerAuthMiddleware{tokens: tokens, store: store}
}

// Auth validates the partner bearer token and checks it is still active.
func (m *PartnerAuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractBearer(c)
		if raw == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.tokens.Verify(raw)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		active, err := m.store.IsActive(c.Request.Context(), claims.PartnerID, raw)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "failed to verify session", err)
			return
		}
		if !active {
			response.Error(c, http.StatusUnauthorized, "session revoked", nil)
			return
		}

		c.Set("partner_id", claims.PartnerID)
		c.Set("partner_code", claims.PartnerCode)
		c.Set("partner_email", claims.Email)
		c.Set("partner_role", claims.Role)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		// WebSocket clients cannot set headers from the browser.
		return c.Query("token")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
