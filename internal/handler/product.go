package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/nutrifast/internal/repository"
	"github.com/vcscsvcscs/nutrifast/pkg/api"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// ProductHandler implements the product catalogue endpoints
type ProductHandler struct {
	service ProductService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(service ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// GetApiV1Products lists products
func (h *ProductHandler) GetApiV1Products(c *gin.Context, params api.GetApiV1ProductsParams) {
	products, err := h.service.ListProducts(c.Request.Context(), repository.ProductFilter{
		Search:   stringValue(params.Search),
		Category: stringValue(params.Category),
		Limit:    intValue(params.Limit),
		Offset:   intValue(params.Offset),
	})
	if err != nil {
		respondError(c, h.logger, err, "list products")
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	c.JSON(http.StatusOK, products)
}

// PostApiV1Products creates a product
func (h *ProductHandler) PostApiV1Products(c *gin.Context) {
	var req api.ProductRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	p := productFromRequest(&req)
	if err := h.service.CreateProduct(c.Request.Context(), p); err != nil {
		respondError(c, h.logger, err, "create product")
		return
	}
	c.JSON(http.StatusCreated, p)
}

// PostApiV1ProductsImport upserts a batch of products by name
func (h *ProductHandler) PostApiV1ProductsImport(c *gin.Context) {
	var req api.ProductImportRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	products := make([]model.Product, 0, len(req.Products))
	for i := range req.Products {
		products = append(products, *productFromRequest(&req.Products[i]))
	}

	result, err := h.service.ImportProducts(c.Request.Context(), products)
	if err != nil {
		respondError(c, h.logger, err, "import products")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetApiV1ProductsId retrieves a product
func (h *ProductHandler) GetApiV1ProductsId(c *gin.Context, id string) {
	p, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "get product")
		return
	}
	c.JSON(http.StatusOK, p)
}

// PutApiV1ProductsId replaces a product
func (h *ProductHandler) PutApiV1ProductsId(c *gin.Context, id string) {
	var req api.ProductRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	p := productFromRequest(&req)
	if err := h.service.UpdateProduct(c.Request.Context(), id, p); err != nil {
		respondError(c, h.logger, err, "update product")
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteApiV1ProductsId deletes an unreferenced product
func (h *ProductHandler) DeleteApiV1ProductsId(c *gin.Context, id string) {
	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "delete product")
		return
	}
	c.Status(http.StatusNoContent)
}
