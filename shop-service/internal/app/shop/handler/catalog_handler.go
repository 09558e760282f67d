package handler

import (
	"net/http"

	"partshop/shop-service/internal/app/shop/entity"
	"partshop/shop-service/internal/app/shop/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type CatalogHandler struct {
	catalogService service.CatalogServiceInterface
	validator      *validator.Validate
}

func NewCatalogHandler(catalogService service.CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		validator:      validator.New(),
	}
}

// === CATEGORIES ===

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	var query entity.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	categories, err := h.catalogService.ListCategories(c.Request.Context(), query.Skip, query.Limit)
	if err != nil {
		handleServiceError(c, err, "get categories")
		return
	}

	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	category, err := h.catalogService.GetCategory(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "get category")
		return
	}

	c.JSON(http.StatusOK, category)
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req entity.CategoryRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "create category")
		return
	}

	c.JSON(http.StatusCreated, category)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req entity.CategoryRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err, "update category")
		return
	}

	c.JSON(http.StatusOK, category)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "delete category")
		return
	}

	c.JSON(http.StatusOK, entity.MessageResponse{Message: "Category deleted"})
}

// === PRODUCTS ===

// ListProducts поддерживает skip, limit и category_id
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var query entity.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	products, err := h.catalogService.ListProducts(c.Request.Context(), &query)
	if err != nil {
		handleServiceError(c, err, "get products")
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "get product")
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req entity.ProductRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "create product")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct - полная замена полей товара
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req entity.ProductRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err, "update product")
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "delete product")
		return
	}

	c.JSON(http.StatusOK, entity.MessageResponse{Message: "Product deleted"})
}
