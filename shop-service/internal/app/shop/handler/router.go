package handler

import (
	"net/http"

	"partshop/pkg/logger"
	"partshop/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "shop-service"

// Handlers собирает все обработчики сервиса для регистрации маршрутов
type Handlers struct {
	Auth        *AuthHandler
	Users       *UserHandler
	Catalog     *CatalogHandler
	Cart        *CartHandler
	Reviews     *ReviewHandler
	Middleware  *AuthMiddleware
	AuthLimiter *RateLimiter
}

// SetupRoutes настраивает все маршруты приложения с использованием Gin
func SetupRoutes(h *Handlers) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))

	// Фронтенд может открываться с любого домена
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Accept", "Authorization", "Content-Type", logger.RequestIDHeader},
		ExposeHeaders:   []string{logger.RequestIDHeader},
		MaxAge:          300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authenticated := h.Middleware.Authenticate()
	adminOnly := h.Middleware.RequireAdmin()

	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.AuthLimiter.Middleware(), h.Auth.Register)
		auth.POST("/login", h.AuthLimiter.Middleware(), h.Auth.Login)
		auth.GET("/me", authenticated, h.Auth.Me)
		auth.POST("/logout", authenticated, h.Auth.Logout)
	}

	users := api.Group("/users")
	{
		handleRoot(users, http.MethodPost, h.AuthLimiter.Middleware(), h.Users.CreateUser)
		users.GET("/me", authenticated, h.Auth.Me)
		handleRoot(users, http.MethodGet, authenticated, adminOnly, h.Users.ListUsers)
		users.GET("/:id", authenticated, adminOnly, h.Users.GetUser)
	}

	categories := api.Group("/categories")
	{
		handleRoot(categories, http.MethodGet, h.Catalog.ListCategories)
		categories.GET("/:id", h.Catalog.GetCategory)
		handleRoot(categories, http.MethodPost, authenticated, adminOnly, h.Catalog.CreateCategory)
		categories.PUT("/:id", authenticated, adminOnly, h.Catalog.UpdateCategory)
		categories.DELETE("/:id", authenticated, adminOnly, h.Catalog.DeleteCategory)
	}

	products := api.Group("/products")
	{
		handleRoot(products, http.MethodGet, h.Catalog.ListProducts)
		products.GET("/:id", h.Catalog.GetProduct)
		handleRoot(products, http.MethodPost, authenticated, adminOnly, h.Catalog.CreateProduct)
		products.PUT("/:id", authenticated, adminOnly, h.Catalog.UpdateProduct)
		products.DELETE("/:id", authenticated, adminOnly, h.Catalog.DeleteProduct)
	}

	cart := api.Group("/cart", authenticated)
	{
		cart.GET("/items", h.Cart.ListItems)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:id", h.Cart.UpdateItem)
		cart.DELETE("/items/:id", h.Cart.RemoveItem)
	}

	reviews := api.Group("/reviews")
	{
		reviews.GET("/product/:product_id", h.Reviews.GetProductReviews)
		reviews.GET("/user/me", authenticated, h.Reviews.GetMyReviews)
		handleRoot(reviews, http.MethodPost, authenticated, h.Reviews.CreateReview)
		reviews.PUT("/:id", authenticated, h.Reviews.UpdateReview)
		reviews.DELETE("/:id", authenticated, h.Reviews.DeleteReview)
	}

	return router
}

// handleRoot регистрирует корень группы в двух формах: /products и /products/.
// Иначе gin отвечает 307 на вариант со слэшем в обход CORS.
func handleRoot(group *gin.RouterGroup, method string, handlers ...gin.HandlerFunc) {
	group.Handle(method, "", handlers...)
	group.Handle(method, "/", handlers...)
}
