package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_search/internal/models"
	"github.com/GTDGit/gtd_search/internal/service"
	"github.com/GTDGit/gtd_search/internal/utils"
)

// Catalog is the product write/read surface used by ProductHandler.
type Catalog interface {
	CreateProduct(ctx context.Context, req *service.CreateProductRequest) (string, error)
	UpdateMetadata(ctx context.Context, id string, metadata models.Metadata) (*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

// ProductHandler handles catalog product HTTP endpoints.
type ProductHandler struct {
	catalog Catalog
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(catalog Catalog) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

type updateMetadataRequest struct {
	ProductID string           `json:"productId"`
	Metadata  *models.Metadata `json:"Metadata"`
}

// CreateProduct handles POST /api/v1/product
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	id, err := h.catalog.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidProduct) {
			utils.Error(c, 400, "INVALID_PRODUCT", validationMessage(err, utils.ErrInvalidProduct))
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to create product")
		return
	}

	utils.Success(c, 201, "Product created successfully", gin.H{"productId": id})
}

// UpdateMetadata handles PUT /api/v1/product/meta-data
func (h *ProductHandler) UpdateMetadata(c *gin.Context) {
	var req updateMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_METADATA", "Metadata must be an object of scalar values")
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		utils.Error(c, 400, "INVALID_REQUEST", "Product ID is required")
		return
	}
	if req.Metadata == nil {
		utils.Error(c, 400, "INVALID_METADATA", "Metadata must be an object")
		return
	}

	p, err := h.catalog.UpdateMetadata(c.Request.Context(), req.ProductID, *req.Metadata)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrProductNotFound):
			utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
		case errors.Is(err, utils.ErrInvalidMetadata):
			utils.Error(c, 400, "INVALID_METADATA", validationMessage(err, utils.ErrInvalidMetadata))
		default:
			utils.Error(c, 500, "INTERNAL_ERROR", "Failed to update metadata")
		}
		return
	}

	utils.Success(c, 200, "Metadata updated successfully", gin.H{
		"productId": p.ID,
		"Metadata":  p.Metadata,
	})
}

// GetProduct handles GET /api/v1/product/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, utils.ErrProductNotFound) {
			utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get product")
		return
	}

	utils.Success(c, 200, "Product retrieved", p)
}

// validationMessage strips the sentinel prefix from a wrapped validation error.
func validationMessage(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == sentinel.Error() {
		return "Invalid request"
	}
	return msg
}
