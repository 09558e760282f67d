package service

import (
	"context"
	"errors"
	"fmt"

	"partshop/pkg/metrics"
	"partshop/shop-service/internal/app/shop/entity"
	"partshop/shop-service/internal/app/shop/repository"
	"partshop/shop-service/internal/app/shop/util"
)

const tokenTypeBearer = "bearer"

// AuthService обрабатывает бизнес-логику аутентификации
type AuthService struct {
	users      *UserService
	userRepo   repository.UserRepository
	tokenRepo  repository.TokenRepository
	jwtManager *util.JWTManager
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(
	users *UserService,
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	jwtManager *util.JWTManager,
) *AuthService {
	return &AuthService{
		users:      users,
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtManager: jwtManager,
	}
}

// Register создает пользователя и сразу выдает ему access токен
func (s *AuthService) Register(ctx context.Context, req *entity.CreateUserRequest) (*entity.TokenResponse, error) {
	user, err := s.users.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.issueToken(user)
}

// Login проверяет email и пароль. Неизвестный email и неверный пароль неразличимы для клиента.
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Login())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.AuthLogins.WithLabelValues("failed").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !util.CheckPassword(req.Password, user.HashedPassword) {
		metrics.AuthLogins.WithLabelValues("failed").Inc()
		return nil, ErrInvalidCredentials
	}

	metrics.AuthLogins.WithLabelValues("success").Inc()
	return s.issueToken(user)
}

// Logout отзывает токен до окончания срока его действия
func (s *AuthService) Logout(ctx context.Context, claims *util.JWTClaims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return ErrInvalidToken
	}

	if err := s.tokenRepo.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	metrics.AuthTokensRevoked.Inc()
	return nil
}

// Authenticate проверяет подпись и срок токена, черный список и существование пользователя
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*entity.User, *util.JWTClaims, error) {
	claims, err := s.jwtManager.ValidateToken(accessToken)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	revoked, err := s.tokenRepo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check token: %w", err)
	}
	if revoked {
		return nil, nil, ErrTokenRevoked
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, claims, nil
}

func (s *AuthService) issueToken(user *entity.User) (*entity.TokenResponse, error) {
	token, _, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	metrics.AuthTokensIssued.WithLabelValues("access").Inc()

	return &entity.TokenResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
	}, nil
}
