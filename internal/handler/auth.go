package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/nutrifast/internal/audit"
	"github.com/vcscsvcscs/nutrifast/internal/auth"
	"github.com/vcscsvcscs/nutrifast/pkg/api"
	"go.uber.org/zap"
)

// AuthHandler issues access tokens
type AuthHandler struct {
	auth   Authenticator
	audit  audit.Recorder
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authenticator Authenticator, recorder audit.Recorder, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: authenticator, audit: recorder, logger: logger}
}

// PostApiV1AuthLogin exchanges admin credentials for a bearer token
func (h *AuthHandler) PostApiV1AuthLogin(c *gin.Context) {
	var req api.LoginRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{
				Code:     "UNAUTHORIZED",
				Message:  err.Error(),
				Messages: []string{err.Error()},
			})
			return
		}
		respondError(c, h.logger, err, "issue token")
		return
	}

	ctx := audit.WithClient(c.Request.Context(), c.ClientIP(), c.Request.UserAgent())
	if err := h.audit.Record(ctx, audit.Entry{
		UserID:        req.Username,
		OperationType: audit.OperationLogin,
		ResourceType:  audit.ResourceUser,
		ResourceID:    req.Username,
	}); err != nil {
		h.logger.Warn("failed to audit login", zap.Error(err))
	}

	c.JSON(http.StatusOK, api.TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
	})
}
