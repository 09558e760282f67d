package handler

import (
	"net/http"

	"partshop/shop-service/internal/app/shop/entity"
	"partshop/shop-service/internal/app/shop/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type CartHandler struct {
	cartService service.CartServiceInterface
	validator   *validator.Validate
}

func NewCartHandler(cartService service.CartServiceInterface) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validator:   validator.New(),
	}
}

func (h *CartHandler) ListItems(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	items, err := h.cartService.ListItems(c.Request.Context(), user.ID)
	if err != nil {
		handleServiceError(c, err, "get cart items")
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req entity.AddCartItemRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	item, err := h.cartService.AddItem(c.Request.Context(), user.ID, &req)
	if err != nil {
		handleServiceError(c, err, "add item to cart")
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	itemID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req entity.UpdateCartItemRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	item, err := h.cartService.UpdateItem(c.Request.Context(), user.ID, itemID, &req)
	if err != nil {
		handleServiceError(c, err, "update cart item")
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	itemID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.cartService.RemoveItem(c.Request.Context(), user.ID, itemID); err != nil {
		handleServiceError(c, err, "remove cart item")
		return
	}

	c.JSON(http.StatusOK, entity.MessageResponse{Message: "Item removed from cart"})
}
