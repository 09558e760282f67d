package handler

import (
	"errors"
	"net/http"
	"strconv"

	"partshop/pkg/logger"
	"partshop/shop-service/internal/app/shop/entity"
	"partshop/shop-service/internal/app/shop/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	contextUserKey   = "user"
	contextUserIDKey = "user_id"
	contextClaimsKey = "claims"
)

type errorMapping struct {
	err    error
	status int
	detail string
}

// serviceErrors сопоставляет ошибки бизнес-логики с HTTP статусом и сообщением для клиента
var serviceErrors = []errorMapping{
	{service.ErrProductNotFound, http.StatusNotFound, "Product not found"},
	{service.ErrCategoryNotFound, http.StatusNotFound, "Category not found"},
	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{service.ErrCartItemNotFound, http.StatusNotFound, "Cart item not found"},
	{service.ErrReviewNotFound, http.StatusNotFound, "Review not found"},
	{service.ErrEmailExists, http.StatusBadRequest, "Email already registered"},
	{service.ErrInvalidQuantity, http.StatusBadRequest, "Quantity must be at least 1"},
	{service.ErrInsufficientStock, http.StatusBadRequest, "Not enough stock"},
	{service.ErrInvalidRating, http.StatusBadRequest, "Rating must be between 1 and 5"},
	{service.ErrReviewExists, http.StatusBadRequest, "You have already reviewed this product"},
	{service.ErrInvalidPrice, http.StatusBadRequest, "Price must not be negative"},
	{service.ErrForbidden, http.StatusForbidden, "Not enough permissions"},
	{service.ErrCategoryInUse, http.StatusConflict, "Category still has products"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Incorrect email or password"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "Could not validate credentials"},
	{service.ErrTokenRevoked, http.StatusUnauthorized, "Could not validate credentials"},
}

func respondError(c *gin.Context, status int, detail string) {
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(status, entity.ErrorResponse{
		Error:  http.StatusText(status),
		Detail: detail,
	})
}

// handleServiceError отвечает клиенту по известной ошибке,
// неизвестные ошибки логируются и отдаются как 500 без подробностей
func handleServiceError(c *gin.Context, err error, action string) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			respondError(c, m.status, m.detail)
			return
		}
	}

	logger.Error().
		Err(err).
		Str("request_id", c.GetString("request_id")).
		Msg("Failed to " + action)
	_ = c.Error(err)
	respondError(c, http.StatusInternalServerError, "Failed to "+action)
}

// bindJSON разбирает тело запроса и проверяет validate теги
func bindJSON(c *gin.Context, v *validator.Validate, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := v.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return false
	}
	return true
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}

// parseID читает положительный числовой параметр пути
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// currentUser возвращает пользователя, установленного AuthMiddleware.Authenticate
func currentUser(c *gin.Context) (*entity.User, bool) {
	value, exists := c.Get(contextUserKey)
	if !exists {
		respondError(c, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}

	user, ok := value.(*entity.User)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	return user, true
}
