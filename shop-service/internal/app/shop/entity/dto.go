package entity

import "github.com/shopspring/decimal"

// === IDENTITY ===

// CreateUserRequest - регистрация пользователя (POST /users/, POST /auth/register)
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"omitempty,min=2,max=100"`
	Password string `json:"password" validate:"required,min=4,max=72"`
}

// LoginRequest принимает как форму (username=<email>&password=...), так и JSON
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password" validate:"required"`
}

// Login возвращает email для поиска пользователя
func (r *LoginRequest) Login() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Username
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// === CATALOG ===

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=2000"`
}

// ProductRequest - полное описание товара для создания и замены
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"min=0"`
	CategoryID  uint            `json:"category_id" validate:"required"`
	ImageURL    *string         `json:"image_url" validate:"omitempty,url"`
}

// ProductFilter - параметры выборки списка товаров
type ProductFilter struct {
	Offset     int
	Limit      int
	CategoryID *uint
}

// ListQuery - query-параметры skip/limit/category_id
type ListQuery struct {
	Skip       int   `form:"skip"`
	Limit      *int  `form:"limit"`
	CategoryID *uint `form:"category_id"`
}

// === CART ===

type AddCartItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  *int `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// === REVIEWS ===

type CreateReviewRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment" validate:"max=5000"`
}

type UpdateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment" validate:"max=5000"`
}

// === COMMON ===

// ErrorResponse - тело ответа с ошибкой; detail содержит сообщение для пользователя
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
