package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/nutrifast/internal/service"
	"github.com/vcscsvcscs/nutrifast/pkg/api"
	"go.uber.org/zap"
)

// DishHandler implements the dish endpoints
type DishHandler struct {
	service DishService
	logger  *zap.Logger
}

// NewDishHandler creates a new DishHandler
func NewDishHandler(service DishService, logger *zap.Logger) *DishHandler {
	return &DishHandler{service: service, logger: logger}
}

// GetApiV1Dishes lists dishes with derived nutrition
func (h *DishHandler) GetApiV1Dishes(c *gin.Context) {
	dishes, err := h.service.ListDishes(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "list dishes")
		return
	}
	if dishes == nil {
		dishes = []service.DishView{}
	}
	c.JSON(http.StatusOK, dishes)
}

// PostApiV1Dishes creates a dish
func (h *DishHandler) PostApiV1Dishes(c *gin.Context) {
	var req api.DishRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	v, err := h.service.CreateDish(c.Request.Context(), dishFromRequest(&req))
	if err != nil {
		respondError(c, h.logger, err, "create dish")
		return
	}
	c.JSON(http.StatusCreated, v)
}

// GetApiV1DishesId retrieves a dish
func (h *DishHandler) GetApiV1DishesId(c *gin.Context, id string) {
	v, err := h.service.GetDish(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "get dish")
		return
	}
	c.JSON(http.StatusOK, v)
}

// PutApiV1DishesId replaces a dish and its ingredients
func (h *DishHandler) PutApiV1DishesId(c *gin.Context, id string) {
	var req api.DishRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	v, err := h.service.UpdateDish(c.Request.Context(), id, dishFromRequest(&req))
	if err != nil {
		respondError(c, h.logger, err, "update dish")
		return
	}
	c.JSON(http.StatusOK, v)
}

// DeleteApiV1DishesId deletes an unreferenced dish
func (h *DishHandler) DeleteApiV1DishesId(c *gin.Context, id string) {
	if err := h.service.DeleteDish(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "delete dish")
		return
	}
	c.Status(http.StatusNoContent)
}
