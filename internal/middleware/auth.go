package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/nutrifast/internal/audit"
	"github.com/vcscsvcscs/nutrifast/internal/auth"
	"github.com/vcscsvcscs/nutrifast/internal/tasks"
	"github.com/vcscsvcscs/nutrifast/pkg/api"
	"go.uber.org/zap"
)

// TokenParser validates bearer tokens
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

func abortWith(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, api.ErrorResponse{
		Code:     code,
		Message:  message,
		Messages: []string{message},
	})
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="nutrifast"`)
	abortWith(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// Authenticate enforces the security requirements the route wrapper stores
// under api.BearerAuthScopes. Operations without that key are public. An
// authenticated caller is recorded for logging, auditing and task attribution.
func Authenticate(parser TokenParser, logger *zap.Logger) api.MiddlewareFunc {
	return func(c *gin.Context) {
		raw, ok := c.Get(api.BearerAuthScopes)
		if !ok {
			return
		}
		scopes, _ := raw.([]string)

		scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
		token = strings.TrimSpace(token)
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			unauthorized(c, "missing bearer token")
			return
		}

		claims, err := parser.Parse(token)
		if err != nil {
			logger.Warn("rejected bearer token",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextIsAdmin, claims.Admin)

		if slices.Contains(scopes, api.ScopeAdmin) && !claims.Admin {
			logger.Warn("admin scope denied",
				zap.String("user_id", claims.Subject),
				zap.String("path", c.Request.URL.Path),
			)
			abortWith(c, http.StatusForbidden, "FORBIDDEN", "admin privileges required")
			return
		}

		ctx := audit.WithUser(c.Request.Context(), claims.Subject)
		ctx = audit.WithClient(ctx, c.ClientIP(), c.Request.UserAgent())
		ctx = tasks.WithSubmitter(ctx, claims.Subject)
		c.Request = c.Request.WithContext(ctx)
	}
}
