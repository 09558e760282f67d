package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"partshop/shop-service/internal/app/shop/entity"
	"partshop/shop-service/internal/app/shop/repository/mocks"
	"partshop/shop-service/internal/app/shop/service"
	"partshop/shop-service/internal/app/shop/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv - полный роутер на реальных сервисах поверх моков репозиториев
type testEnv struct {
	router       *gin.Engine
	jwt          *util.JWTManager
	userRepo     *mocks.MockUserRepository
	tokenRepo    *mocks.MockTokenRepository
	categoryRepo *mocks.MockCategoryRepository
	productRepo  *mocks.MockProductRepository
	cartRepo     *mocks.MockCartRepository
	reviewRepo   *mocks.MockReviewRepository
	cache        *mocks.MockCategoryCache
}

func newTestEnv() *testEnv {
	return newTestEnvWithLimit(100, 100)
}

func newTestEnvWithLimit(rps float64, burst int) *testEnv {
	env := &testEnv{
		jwt:          util.NewJWTManager("test-secret-key", 30*time.Minute),
		userRepo:     new(mocks.MockUserRepository),
		tokenRepo:    new(mocks.MockTokenRepository),
		categoryRepo: new(mocks.MockCategoryRepository),
		productRepo:  new(mocks.MockProductRepository),
		cartRepo:     new(mocks.MockCartRepository),
		reviewRepo:   new(mocks.MockReviewRepository),
		cache:        new(mocks.MockCategoryCache),
	}

	userService := service.NewUserService(env.userRepo, nil)
	authService := service.NewAuthService(userService, env.userRepo, env.tokenRepo, env.jwt)

	env.router = SetupRoutes(&Handlers{
		Auth:        NewAuthHandler(authService),
		Users:       NewUserHandler(userService),
		Catalog:     NewCatalogHandler(service.NewCatalogService(env.categoryRepo, env.productRepo, env.cache, nil)),
		Cart:        NewCartHandler(service.NewCartService(env.cartRepo, nil)),
		Reviews:     NewReviewHandler(service.NewReviewService(env.reviewRepo, nil)),
		Middleware:  NewAuthMiddleware(authService),
		AuthLimiter: NewRateLimiter(rps, burst),
	})

	return env
}

// login регистрирует пользователя в моках и возвращает валидный токен
func (e *testEnv) login(t *testing.T, user *entity.User) string {
	t.Helper()

	token, _, err := e.jwt.GenerateAccessToken(user.ID, user.Email, user.IsAdmin)
	require.NoError(t, err)

	e.tokenRepo.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
	e.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	return token
}

func (e *testEnv) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doForm(path, form string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) entity.ErrorResponse {
	t.Helper()

	var resp entity.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func buyer() *entity.User {
	return &entity.User{ID: 2, Email: "buyer@example.com", Username: "buyer"}
}

func admin() *entity.User {
	return &entity.User{ID: 1, Email: "admin@admin.com", Username: "admin", IsAdmin: true}
}

func newRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}
