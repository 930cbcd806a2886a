package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/nutrifast/pkg/api"
	"go.uber.org/zap"
)

// EntryHandler implements the food log endpoints
type EntryHandler struct {
	service EntryService
	today   func() string
	logger  *zap.Logger
}

// NewEntryHandler creates a new EntryHandler. today supplies the default
// date for listings without one.
func NewEntryHandler(service EntryService, today func() string, logger *zap.Logger) *EntryHandler {
	return &EntryHandler{service: service, today: today, logger: logger}
}

// GetApiV1Entries lists the entries of a date or an inclusive range
func (h *EntryHandler) GetApiV1Entries(c *gin.Context, params api.GetApiV1EntriesParams) {
	from, to := h.today(), ""
	switch {
	case params.Date != nil:
		from = *params.Date
	case params.From != nil:
		from, to = *params.From, stringValue(params.To)
	case params.To != nil:
		from, to = *params.To, *params.To
	}

	views, err := h.service.ListEntries(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, h.logger, err, "list log entries")
		return
	}

	response := make([]api.LogEntryResponse, 0, len(views))
	for i := range views {
		response = append(response, entryResponse(&views[i]))
	}
	c.JSON(http.StatusOK, response)
}

// PostApiV1Entries logs a product or dish
func (h *EntryHandler) PostApiV1Entries(c *gin.Context) {
	var req api.LogEntryRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	v, err := h.service.CreateEntry(c.Request.Context(), entryFromRequest(&req))
	if err != nil {
		respondError(c, h.logger, err, "create log entry")
		return
	}
	c.JSON(http.StatusCreated, entryResponse(v))
}

// GetApiV1EntriesId retrieves a log entry
func (h *EntryHandler) GetApiV1EntriesId(c *gin.Context, id string) {
	v, err := h.service.GetEntry(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "get log entry")
		return
	}
	c.JSON(http.StatusOK, entryResponse(v))
}

// PutApiV1EntriesId replaces a log entry
func (h *EntryHandler) PutApiV1EntriesId(c *gin.Context, id string) {
	var req api.LogEntryRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	v, err := h.service.UpdateEntry(c.Request.Context(), id, entryFromRequest(&req))
	if err != nil {
		respondError(c, h.logger, err, "update log entry")
		return
	}
	c.JSON(http.StatusOK, entryResponse(v))
}

// DeleteApiV1EntriesId deletes a log entry
func (h *EntryHandler) DeleteApiV1EntriesId(c *gin.Context, id string) {
	if err := h.service.DeleteEntry(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "delete log entry")
		return
	}
	c.Status(http.StatusNoContent)
}
