package service

import (
	"context"

	"partshop/shop-service/internal/app/shop/entity"
	"partshop/shop-service/internal/app/shop/util"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, req *entity.CreateUserRequest) (*entity.TokenResponse, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.TokenResponse, error)
	Logout(ctx context.Context, claims *util.JWTClaims) error
	Authenticate(ctx context.Context, accessToken string) (*entity.User, *util.JWTClaims, error)
}

type UserServiceInterface interface {
	Create(ctx context.Context, req *entity.CreateUserRequest) (*entity.User, error)
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	List(ctx context.Context, skip int, limit *int) ([]entity.User, error)
}

type CatalogServiceInterface interface {
	ListCategories(ctx context.Context, skip int, limit *int) ([]entity.Category, error)
	GetCategory(ctx context.Context, id uint) (*entity.Category, error)
	CreateCategory(ctx context.Context, req *entity.CategoryRequest) (*entity.Category, error)
	UpdateCategory(ctx context.Context, id uint, req *entity.CategoryRequest) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id uint) error

	ListProducts(ctx context.Context, query *entity.ListQuery) ([]entity.Product, error)
	GetProduct(ctx context.Context, id uint) (*entity.Product, error)
	CreateProduct(ctx context.Context, req *entity.ProductRequest) (*entity.Product, error)
	UpdateProduct(ctx context.Context, id uint, req *entity.ProductRequest) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type CartServiceInterface interface {
	ListItems(ctx context.Context, userID uint) ([]entity.CartItem, error)
	AddItem(ctx context.Context, userID uint, req *entity.AddCartItemRequest) (*entity.CartItem, error)
	UpdateItem(ctx context.Context, userID, itemID uint, req *entity.UpdateCartItemRequest) (*entity.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID uint) error
}

type ReviewServiceInterface interface {
	Create(ctx context.Context, userID uint, req *entity.CreateReviewRequest) (*entity.Review, error)
	Update(ctx context.Context, userID, reviewID uint, req *entity.UpdateReviewRequest) (*entity.Review, error)
	Delete(ctx context.Context, userID, reviewID uint) error
	ListByProduct(ctx context.Context, productID uint) ([]entity.Review, error)
	ListByUser(ctx context.Context, userID uint) ([]entity.Review, error)
}
