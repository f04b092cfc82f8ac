package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/infra/security"
)

const (
	principalContextKey = "stayhub.principal"

	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

type principal struct {
	ID    string
	Email string
	Role  string
}

// AuthMiddleware resolves the access token (cookie first, then the
// Authorization header) into a request principal. It never rejects by
// itself; protected handlers call requireAuth.
type AuthMiddleware struct {
	Tokens *security.AccessTokenManager
	Logger *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := accessTokenFromRequest(c)
	if token == "" || m.Tokens == nil {
		c.Next()
		return
	}
	claims, err := m.Tokens.Verify(token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("access token rejected", "error", err)
		}
		c.Next()
		return
	}
	setPrincipal(c, principal{
		ID:    claims.Subject,
		Email: claims.Email,
		Role:  claims.Role,
	})
	c.Next()
}

func accessTokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(accessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	return extractBearerToken(c.GetHeader("Authorization"))
}

func extractBearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

func requireAuth(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return principal{}, false
	}
	return p, true
}
