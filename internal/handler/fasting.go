package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/nutrifast/internal/nutrition"
	"github.com/vcscsvcscs/nutrifast/internal/repository"
	"github.com/vcscsvcscs/nutrifast/internal/service"
	"github.com/vcscsvcscs/nutrifast/pkg/api"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// FastingHandler implements the fasting session endpoints
type FastingHandler struct {
	service FastingService
	logger  *zap.Logger
}

// NewFastingHandler creates a new FastingHandler
func NewFastingHandler(service FastingService, logger *zap.Logger) *FastingHandler {
	return &FastingHandler{service: service, logger: logger}
}

func (h *FastingHandler) respondSession(c *gin.Context, status int, session *model.FastingSession, err error, action string) {
	if err != nil {
		respondError(c, h.logger, err, action)
		return
	}
	c.JSON(status, session)
}

// GetApiV1FastingTypes lists the supported protocols
func (h *FastingHandler) GetApiV1FastingTypes(c *gin.Context) {
	names := service.FastingTypeNames()
	types := make([]api.FastingType, 0, len(names))
	for _, name := range names {
		types = append(types, api.FastingType{Name: name, TargetHours: service.FastingTypes[name]})
	}
	c.JSON(http.StatusOK, types)
}

// PostApiV1FastingStart starts a session
func (h *FastingHandler) PostApiV1FastingStart(c *gin.Context) {
	var req api.StartFastingRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	session, err := h.service.Start(c.Request.Context(), req.FastingType, req.Notes)
	h.respondSession(c, http.StatusCreated, session, err, "start fasting session")
}

// PostApiV1FastingPause pauses the active session
func (h *FastingHandler) PostApiV1FastingPause(c *gin.Context) {
	session, err := h.service.Pause(c.Request.Context())
	h.respondSession(c, http.StatusOK, session, err, "pause fasting session")
}

// PostApiV1FastingResume resumes the paused session
func (h *FastingHandler) PostApiV1FastingResume(c *gin.Context) {
	var req api.ResumeFastingRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	session, err := h.service.Resume(c.Request.Context(), req.SessionId)
	h.respondSession(c, http.StatusOK, session, err, "resume fasting session")
}

// PostApiV1FastingCancel cancels the open session
func (h *FastingHandler) PostApiV1FastingCancel(c *gin.Context) {
	session, err := h.service.Cancel(c.Request.Context())
	h.respondSession(c, http.StatusOK, session, err, "cancel fasting session")
}

// PostApiV1FastingEnd completes the open session
func (h *FastingHandler) PostApiV1FastingEnd(c *gin.Context) {
	session, err := h.service.End(c.Request.Context())
	h.respondSession(c, http.StatusOK, session, err, "end fasting session")
}

// GetApiV1FastingProgress reports the open session's progress
func (h *FastingHandler) GetApiV1FastingProgress(c *gin.Context) {
	progress, err := h.service.Progress(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "get fasting progress")
		return
	}
	c.JSON(http.StatusOK, progress)
}

// GetApiV1FastingSessions lists sessions newest first
func (h *FastingHandler) GetApiV1FastingSessions(c *gin.Context, params api.GetApiV1FastingSessionsParams) {
	filter := repository.FastingFilter{
		Status: model.FastingStatus(stringValue(params.Status)),
		From:   params.From,
		To:     params.To,
		Limit:  intValue(params.Limit),
	}

	sessions, err := h.service.ListSessions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err, "list fasting sessions")
		return
	}
	if sessions == nil {
		sessions = []model.FastingSession{}
	}
	c.JSON(http.StatusOK, sessions)
}

// GetApiV1FastingSessionsId retrieves a session
func (h *FastingHandler) GetApiV1FastingSessionsId(c *gin.Context, id string) {
	session, err := h.service.GetSession(c.Request.Context(), id)
	h.respondSession(c, http.StatusOK, session, err, "get fasting session")
}

// PatchApiV1FastingSessionsId replaces a session's notes
func (h *FastingHandler) PatchApiV1FastingSessionsId(c *gin.Context, id string) {
	var req api.SessionNotesRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	session, err := h.service.UpdateNotes(c.Request.Context(), id, req.Notes)
	h.respondSession(c, http.StatusOK, session, err, "update fasting session notes")
}

// DeleteApiV1FastingSessionsId deletes a finished session
func (h *FastingHandler) DeleteApiV1FastingSessionsId(c *gin.Context, id string) {
	if err := h.service.DeleteSession(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "delete fasting session")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetApiV1FastingStats summarises completed sessions
func (h *FastingHandler) GetApiV1FastingStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "compute fasting stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetApiV1FastingGki computes a glucose ketone index
func (h *FastingHandler) GetApiV1FastingGki(c *gin.Context, params api.GetApiV1FastingGkiParams) {
	result, err := nutrition.CalculateGKI(params.Glucose, stringValue(params.GlucoseUnit), params.Ketones)
	if err != nil {
		respondError(c, h.logger, err, "calculate GKI")
		return
	}
	c.JSON(http.StatusOK, result)
}
