package handler

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"partshop/pkg/metrics"
	"partshop/shop-service/internal/app/shop/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type AuthMiddleware struct {
	authService service.AuthServiceInterface
}

func NewAuthMiddleware(authService service.AuthServiceInterface) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Authenticate проверяет Bearer токен и кладет пользователя в контекст запроса
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondError(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			respondError(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		user, claims, err := m.authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrInvalidToken) || errors.Is(err, service.ErrTokenRevoked) {
				respondError(c, http.StatusUnauthorized, "Could not validate credentials")
				return
			}
			handleServiceError(c, err, "validate token")
			return
		}

		c.Set(contextUserKey, user)
		c.Set(contextUserIDKey, user.ID)
		c.Set(contextClaimsKey, claims)

		c.Next()
	}
}

// RequireAdmin пропускает только администраторов; ставится после Authenticate
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		if !user.IsAdmin {
			respondError(c, http.StatusForbidden, "Not enough permissions")
			return
		}

		c.Next()
	}
}

// RateLimiter ограничивает частоту запросов с одного IP (token bucket на клиента)
type RateLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*clientLimiter
	rps         rate.Limit
	burst       int
	ttl         time.Duration
	lastCleanup time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:    make(map[string]*clientLimiter),
		rps:         rate.Limit(rps),
		burst:       burst,
		ttl:         10 * time.Minute,
		lastCleanup: time.Now(),
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	// Давно не появлявшиеся клиенты удаляются раз в ttl
	if now.Sub(rl.lastCleanup) > rl.ttl {
		for k, cl := range rl.limiters {
			if now.Sub(cl.lastSeen) > rl.ttl {
				delete(rl.limiters, k)
			}
		}
		rl.lastCleanup = now
	}

	cl, ok := rl.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			metrics.AuthLogins.WithLabelValues("limited").Inc()
			c.Header("Retry-After", "1")
			respondError(c, http.StatusTooManyRequests, "Too many requests, try again later")
			return
		}
		c.Next()
	}
}
