package handler

import (
	"net/http"

	"partshop/shop-service/internal/app/shop/entity"
	"partshop/shop-service/internal/app/shop/service"
	"partshop/shop-service/internal/app/shop/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	authService service.AuthServiceInterface
	validator   *validator.Validate
}

func NewAuthHandler(authService service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
	}
}

// Register создает пользователя и возвращает access токен
func (h *AuthHandler) Register(c *gin.Context) {
	var req entity.CreateUserRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "register user")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login принимает application/x-www-form-urlencoded (username=<email>) или JSON
func (h *AuthHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(&req); err != nil || req.Login() == "" {
		respondError(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout отзывает текущий токен
func (h *AuthHandler) Logout(c *gin.Context) {
	value, _ := c.Get(contextClaimsKey)
	claims, _ := value.(*util.JWTClaims)

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		handleServiceError(c, err, "logout")
		return
	}

	c.JSON(http.StatusOK, entity.MessageResponse{Message: "Successfully logged out"})
}
