package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/nutrifast/pkg/api"
	"go.uber.org/zap"
)

// StatsHandler implements the aggregation and report endpoints
type StatsHandler struct {
	stats   StatsService
	reports ReportService
	today   func() string
	logger  *zap.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(stats StatsService, reports ReportService, today func() string, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		stats:   stats,
		reports: reports,
		today:   today,
		logger:  logger,
	}
}

func (h *StatsHandler) anchor(params api.StatsParams) string {
	if params.Date != nil {
		return *params.Date
	}
	return h.today()
}

// GetApiV1StatsDaily returns the nutrition totals of one date
func (h *StatsHandler) GetApiV1StatsDaily(c *gin.Context, params api.StatsParams) {
	stats, err := h.stats.DailyStats(c.Request.Context(), h.anchor(params))
	if err != nil {
		respondError(c, h.logger, err, "compute daily stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetApiV1StatsWeekly returns the seven day rollup ending at the anchor
func (h *StatsHandler) GetApiV1StatsWeekly(c *gin.Context, params api.StatsParams) {
	stats, err := h.stats.WeeklyStats(c.Request.Context(), h.anchor(params))
	if err != nil {
		respondError(c, h.logger, err, "compute weekly stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetApiV1StatsWeeklyReport renders the weekly report as a PDF download
func (h *StatsHandler) GetApiV1StatsWeeklyReport(c *gin.Context, params api.StatsParams) {
	pdfBytes, name, err := h.reports.WeeklyReport(c.Request.Context(), h.anchor(params))
	if err != nil {
		respondError(c, h.logger, err, "generate weekly report")
		return
	}

	h.logger.Info("weekly report served", zap.String("name", name), zap.Int("size", len(pdfBytes)))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	c.Header("Content-Length", fmt.Sprintf("%d", len(pdfBytes)))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
