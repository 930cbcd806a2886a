package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vcscsvcscs/nutrifast/internal/apperr"
	"github.com/vcscsvcscs/nutrifast/internal/tasks"
	"github.com/vcscsvcscs/nutrifast/pkg/api"
	"go.uber.org/zap"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AdminHandler implements the operational endpoints: background tasks,
// backups and the audit trail
type AdminHandler struct {
	tasks   tasks.Dispatcher
	backups BackupService
	audit   AuditReader
	logger  *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(dispatcher tasks.Dispatcher, backups BackupService, audit AuditReader, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		tasks:   dispatcher,
		backups: backups,
		audit:   audit,
		logger:  logger,
	}
}

// PostApiV1Tasks submits background work
func (h *AdminHandler) PostApiV1Tasks(c *gin.Context) {
	var req api.TaskRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	var payload any
	if len(req.Payload) > 0 && string(req.Payload) != "null" {
		payload = json.RawMessage(req.Payload)
	}

	status, err := h.tasks.Submit(c.Request.Context(), tasks.Kind(strings.TrimSpace(req.Kind)), payload)
	if err != nil {
		respondError(c, h.logger, err, "submit task")
		return
	}

	h.logger.Info("task submitted",
		zap.String("task_id", status.ID),
		zap.String("kind", string(status.Kind)),
		zap.String("state", string(status.State)),
	)
	c.JSON(http.StatusAccepted, status)
}

// GetApiV1TasksId reports a task's state
func (h *AdminHandler) GetApiV1TasksId(c *gin.Context, id string) {
	if _, err := uuid.Parse(id); err != nil {
		respondError(c, h.logger, apperr.NotFoundf("task %s not found", id), "get task status")
		return
	}

	status, err := h.tasks.Status(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "get task status")
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetApiV1AdminBackups lists stored backups newest first
func (h *AdminHandler) GetApiV1AdminBackups(c *gin.Context) {
	objects, err := h.backups.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "list backups")
		return
	}

	response := make([]api.BackupObject, 0, len(objects))
	for _, o := range objects {
		response = append(response, api.BackupObject{
			Name:       o.Name,
			Size:       o.Size,
			Encrypted:  strings.HasSuffix(o.Name, ".enc"),
			ModifiedAt: o.ModifiedAt,
		})
	}
	c.JSON(http.StatusOK, response)
}

// PostApiV1AdminBackups writes a new backup
func (h *AdminHandler) PostApiV1AdminBackups(c *gin.Context) {
	info, err := h.backups.Create(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "create backup")
		return
	}
	c.JSON(http.StatusCreated, info)
}

// PostApiV1AdminBackupsNameRestore replaces every table with a backup
func (h *AdminHandler) PostApiV1AdminBackupsNameRestore(c *gin.Context, name string) {
	counts, err := h.backups.Restore(c.Request.Context(), name)
	if err != nil {
		respondError(c, h.logger, err, "restore backup")
		return
	}
	c.JSON(http.StatusOK, api.RestoreResponse{Name: name, Restored: counts})
}

// GetApiV1AdminAudit returns the latest audit entries
func (h *AdminHandler) GetApiV1AdminAudit(c *gin.Context, params api.GetApiV1AdminAuditParams) {
	limit := defaultAuditLimit
	if params.Limit != nil {
		limit = *params.Limit
	}
	if limit < 1 || limit > maxAuditLimit {
		respondError(c, h.logger, apperr.Validationf("limit must be between 1 and %d", maxAuditLimit), "list audit entries")
		return
	}

	entries, err := h.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err, "list audit entries")
		return
	}

	response := make([]api.AuditEntry, 0, len(entries))
	for _, e := range entries {
		response = append(response, api.AuditEntry{
			UserId:        e.UserID,
			OperationType: string(e.OperationType),
			ResourceType:  string(e.ResourceType),
			ResourceId:    e.ResourceID,
			Timestamp:     e.Timestamp,
			IpAddress:     e.IPAddress,
			UserAgent:     e.UserAgent,
		})
	}
	c.JSON(http.StatusOK, response)
}
