package repository

import (
	"context"
	"errors"
	"time"

	"partshop/shop-service/internal/app/shop/entity"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm/clause"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user with this email already exists")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryInUse     = errors.New("category still has products")
	ErrProductNotFound   = errors.New("product not found")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrInsufficientStock = errors.New("not enough stock")
	ErrReviewNotFound    = errors.New("review not found")
	ErrReviewExists      = errors.New("review for this product already exists")
	ErrNotOwner          = errors.New("record belongs to another user")
	ErrInvalidRating     = errors.New("rating out of range")
)

// Коды ошибок PostgreSQL
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, offset, limit int) ([]entity.User, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uint) (*entity.Category, error)
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uint) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uint) (*entity.Product, error)
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	List(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error)
	// Update заменяет поля товара и в той же транзакции приводит
	// количество в корзинах к новому остатку. Возвращает число затронутых позиций корзины.
	Update(ctx context.Context, product *entity.Product) (int64, error)
	Delete(ctx context.Context, id uint) error
}

// CartRepository - все изменяющие операции атомарны: проверка остатка
// и запись выполняются в одной транзакции под блокировкой строки товара
type CartRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]entity.CartItem, error)
	AddItem(ctx context.Context, userID, productID uint, quantity int) (*entity.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, itemID uint, quantity int) (*entity.CartItem, error)
	Delete(ctx context.Context, userID, itemID uint) (*entity.CartItem, error)
}

// ReviewRepository - запись отзыва и пересчет рейтинга товара выполняются
// в одной транзакции. Методы записи возвращают новый рейтинг товара.
type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) (float64, error)
	Update(ctx context.Context, userID, reviewID uint, rating int, comment string) (*entity.Review, float64, error)
	Delete(ctx context.Context, userID, reviewID uint) (*entity.Review, float64, error)
	ListByProduct(ctx context.Context, productID uint) ([]entity.Review, error)
	ListByUser(ctx context.Context, userID uint) ([]entity.Review, error)
}

// TokenRepository хранит отозванные access токены до истечения их срока
type TokenRepository interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// CategoryCache кеширует полный список категорий
type CategoryCache interface {
	Get(ctx context.Context) ([]entity.Category, bool, error)
	Set(ctx context.Context, categories []entity.Category) error
	Invalidate(ctx context.Context) error
}

// forUpdate - SELECT ... FOR UPDATE
var forUpdate = clause.Locking{Strength: "UPDATE"}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == pgForeignKeyViolation
}
