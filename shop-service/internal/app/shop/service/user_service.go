package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"partshop/pkg/events"
	"partshop/pkg/logger"
	"partshop/pkg/metrics"
	"partshop/shop-service/internal/app/shop/entity"
	"partshop/shop-service/internal/app/shop/infrastructure"
	"partshop/shop-service/internal/app/shop/repository"
	"partshop/shop-service/internal/app/shop/util"
)

// UserService обрабатывает бизнес-логику работы с пользователями
type UserService struct {
	userRepo  repository.UserRepository
	publisher infrastructure.MessagePublisher
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository, publisher infrastructure.MessagePublisher) *UserService {
	return &UserService{
		userRepo:  userRepo,
		publisher: publisher,
	}
}

// Create регистрирует покупателя. Пароль сохраняется только в виде bcrypt хэша.
func (s *UserService) Create(ctx context.Context, req *entity.CreateUserRequest) (*entity.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	passwordHash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	username := req.Username
	if username == "" {
		username, _, _ = strings.Cut(req.Email, "@")
	}

	user := &entity.User{
		Email:          req.Email,
		Username:       username,
		HashedPassword: passwordHash,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Параллельная регистрация с тем же email
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.AuthRegistrations.Inc()
	logger.Info().Uint("user_id", user.ID).Msg("User registered")

	event := events.New(events.UserRegistered)
	event.UserID = user.ID
	publishEvent(ctx, s.publisher, event)

	return user, nil
}

// GetByID получает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, skip int, limit *int) ([]entity.User, error) {
	offset, l := pagination(skip, limit)

	users, err := s.userRepo.List(ctx, offset, l)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
