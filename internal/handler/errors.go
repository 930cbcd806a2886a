package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/pkg/api"
	"go.uber.org/zap"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation: http.StatusBadRequest,
	apperr.KindConflict:   http.StatusConflict,
	apperr.KindNotFound:   http.StatusNotFound,
	apperr.KindIntegrity:  http.StatusBadRequest,
	apperr.KindInternal:   http.StatusInternalServerError,
}

// respondError writes err as an ErrorResponse. Internal and integrity
// failures are logged in full; clients only see the display messages.
func respondError(c *gin.Context, logger *zap.Logger, err error, action string) {
	kind := apperr.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	messages := apperr.MessagesOf(err)
	fields := []zap.Field{
		zap.Error(err),
		zap.String("kind", string(kind)),
		zap.String("request_id", c.GetString("request_id")),
	}

	switch kind {
	case apperr.KindInternal:
		logger.Error("failed to "+action, fields...)
		_ = c.Error(err)
		messages = []string{"Failed to " + action}
	case apperr.KindIntegrity:
		logger.Error("unexpected integrity violation while trying to "+action, fields...)
	default:
		logger.Debug("request rejected", append(fields, zap.String("action", action))...)
	}

	c.JSON(status, api.ErrorResponse{
		Code:     string(kind),
		Message:  strings.Join(messages, "; "),
		Messages: messages,
	})
}

// bindJSON decodes the request body, answering 400 on malformed input
func bindJSON(c *gin.Context, logger *zap.Logger, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		logger.Debug("invalid request body", zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:     string(apperr.KindValidation),
			Message:  "Invalid request body",
			Messages: []string{"Invalid request body"},
			Details:  stringPtr(err.Error()),
		})
		return false
	}
	return true
}

// ParamErrorHandler answers requests whose parameters failed to bind
func ParamErrorHandler(c *gin.Context, err error, statusCode int) {
	c.JSON(statusCode, api.ErrorResponse{
		Code:     string(apperr.KindValidation),
		Message:  err.Error(),
		Messages: []string{err.Error()},
	})
}
