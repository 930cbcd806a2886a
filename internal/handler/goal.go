package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/nutrifast/pkg/api"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// GoalHandler implements the fasting goal endpoints
type GoalHandler struct {
	service GoalService
	logger  *zap.Logger
}

// NewGoalHandler creates a new GoalHandler
func NewGoalHandler(service GoalService, logger *zap.Logger) *GoalHandler {
	return &GoalHandler{service: service, logger: logger}
}

// GetApiV1Goals lists goals with progress
func (h *GoalHandler) GetApiV1Goals(c *gin.Context) {
	goals, err := h.service.ListGoals(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "list fasting goals")
		return
	}

	response := make([]api.GoalResponse, 0, len(goals))
	for i := range goals {
		response = append(response, goalResponse(&goals[i]))
	}
	c.JSON(http.StatusOK, response)
}

// PostApiV1Goals creates a goal
func (h *GoalHandler) PostApiV1Goals(c *gin.Context) {
	var req api.GoalRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	goal := &model.FastingGoal{
		GoalType:    model.GoalType(req.GoalType),
		TargetValue: req.TargetValue,
	}
	if !req.PeriodStart.IsZero() {
		goal.PeriodStart = dateToTime(req.PeriodStart)
	}
	if !req.PeriodEnd.IsZero() {
		goal.PeriodEnd = dateToTime(req.PeriodEnd)
	}

	created, err := h.service.CreateGoal(c.Request.Context(), goal)
	if err != nil {
		respondError(c, h.logger, err, "create fasting goal")
		return
	}
	c.JSON(http.StatusCreated, goalResponse(created))
}

// GetApiV1GoalsId retrieves a goal with progress
func (h *GoalHandler) GetApiV1GoalsId(c *gin.Context, id string) {
	goal, err := h.service.GetGoal(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "get fasting goal")
		return
	}
	c.JSON(http.StatusOK, goalResponse(goal))
}

// DeleteApiV1GoalsId deletes a goal
func (h *GoalHandler) DeleteApiV1GoalsId(c *gin.Context, id string) {
	if err := h.service.DeleteGoal(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "delete fasting goal")
		return
	}
	c.Status(http.StatusNoContent)
}
