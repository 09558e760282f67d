package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"partshop/shop-service/internal/app/shop/entity"
	"partshop/shop-service/internal/app/shop/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testOrigin = "http://localhost:3000"

// doFromOrigin выполняет кросс-доменный запрос так, как его отправляет браузер фронтенда
func (e *testEnv) doFromOrigin(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var data []byte
	if body != nil {
		data, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", testOrigin)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// ===================== Trailing Slash Routes =====================

func TestRouter_CollectionRoutesWithTrailingSlash(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		setup  func(env *testEnv) (body interface{}, token string)
		status int
	}{
		{
			name:   "list products",
			method: http.MethodGet,
			path:   "/api/v1/products/",
			setup: func(env *testEnv) (interface{}, string) {
				env.productRepo.On("List", mock.Anything, mock.Anything).Return([]entity.Product{}, nil)
				return nil, ""
			},
			status: http.StatusOK,
		},
		{
			name:   "list categories",
			method: http.MethodGet,
			path:   "/api/v1/categories/",
			setup: func(env *testEnv) (interface{}, string) {
				env.cache.On("Get", mock.Anything).Return([]entity.Category{{ID: 1, Name: "Процессоры"}}, true, nil)
				return nil, ""
			},
			status: http.StatusOK,
		},
		{
			name:   "create user",
			method: http.MethodPost,
			path:   "/api/v1/users/",
			setup: func(env *testEnv) (interface{}, string) {
				env.userRepo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, repository.ErrUserNotFound)
				env.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)
				return map[string]string{"email": "new@example.com", "password": "secret"}, ""
			},
			status: http.StatusCreated,
		},
		{
			name:   "create product",
			method: http.MethodPost,
			path:   "/api/v1/products/",
			setup: func(env *testEnv) (interface{}, string) {
				token := env.login(t, admin())
				env.categoryRepo.On("GetByID", mock.Anything, uint(2)).Return(&entity.Category{ID: 2}, nil)
				env.productRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Product")).
					Run(func(args mock.Arguments) { args.Get(1).(*entity.Product).ID = 8 }).
					Return(nil)
				env.productRepo.On("GetByID", mock.Anything, uint(8)).
					Return(&entity.Product{ID: 8, Name: "NVIDIA GeForce RTX 3080", Price: decimal.NewFromInt(80000), Stock: 5}, nil)
				return productPayload(), token
			},
			status: http.StatusCreated,
		},
		{
			name:   "create review",
			method: http.MethodPost,
			path:   "/api/v1/reviews/",
			setup: func(env *testEnv) (interface{}, string) {
				token := env.login(t, buyer())
				env.reviewRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Review")).Return(4.0, nil)
				return map[string]interface{}{"product_id": 5, "rating": 4}, token
			},
			status: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			body, token := tt.setup(env)

			w := env.doFromOrigin(tt.method, tt.path, body, token)

			assert.Equal(t, tt.status, w.Code)
			assert.Empty(t, w.Header().Get("Location"))
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRouter_CollectionRoutesWithoutTrailingSlash(t *testing.T) {
	env := newTestEnv()
	env.productRepo.On("List", mock.Anything, mock.Anything).Return([]entity.Product{}, nil)

	w := env.doFromOrigin(http.MethodGet, "/api/v1/products", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
