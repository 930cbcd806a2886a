package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/nutrifast/pkg/api"
	"go.uber.org/zap"
)

// ProfileHandler implements the profile endpoints
type ProfileHandler struct {
	service ProfileService
	logger  *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(service ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{service: service, logger: logger}
}

// GetApiV1Profile returns the stored profile
func (h *ProfileHandler) GetApiV1Profile(c *gin.Context) {
	p, err := h.service.GetProfile(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "get profile")
		return
	}
	c.JSON(http.StatusOK, profileResponse(p))
}

// PutApiV1Profile replaces the profile
func (h *ProfileHandler) PutApiV1Profile(c *gin.Context) {
	var req api.ProfileRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	p, err := h.service.PutProfile(c.Request.Context(), profileFromRequest(&req))
	if err != nil {
		respondError(c, h.logger, err, "save profile")
		return
	}
	c.JSON(http.StatusOK, profileResponse(p))
}

// GetApiV1ProfileTargets returns the daily calorie and macro targets
func (h *ProfileHandler) GetApiV1ProfileTargets(c *gin.Context) {
	targets, err := h.service.Targets(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "compute macro targets")
		return
	}
	c.JSON(http.StatusOK, targets)
}
