package service

import (
	"context"
	"errors"
	"fmt"

	"partshop/pkg/logger"
	"partshop/shop-service/internal/app/shop/entity"
	"partshop/shop-service/internal/app/shop/repository"
	"partshop/shop-service/internal/app/shop/util"

	"github.com/shopspring/decimal"
)

const seedAdminPassword = "admin"

type seedProduct struct {
	name        string
	description string
	price       int64
	stock       int
	category    string
	imageURL    string
}

var (
	seedAdmins = []entity.User{
		{Email: "admin@admin.com", Username: "admin", IsAdmin: true},
		{Email: "admin2@admin.com", Username: "admin2", IsAdmin: true},
	}

	seedCategories = []entity.Category{
		{Name: "Процессоры", Description: "Центральные процессоры для компьютеров"},
		{Name: "Видеокарты", Description: "Графические процессоры для игр и работы"},
		{Name: "Материнские платы", Description: "Основные платы для сборки компьютера"},
		{Name: "Оперативная память", Description: "Модули памяти для компьютера"},
		{Name: "Накопители", Description: "SSD и HDD накопители"},
	}

	seedProducts = []seedProduct{
		{
			name:        "Intel Core i7-12700K",
			description: "12-ядерный процессор Intel Core i7",
			price:       35000,
			stock:       10,
			category:    "Процессоры",
			imageURL:    "https://avatars.mds.yandex.net/get-goods_pic/11398227/hat4b8ccb2d7a3d9309d943b5d728a41086/600x600",
		},
		{
			name:        "AMD Ryzen 9 5950X",
			description: "16-ядерный процессор AMD Ryzen 9",
			price:       45000,
			stock:       8,
			category:    "Процессоры",
			imageURL:    "https://img.4gamers.com.tw/ckfinder-th/files/amd%20ryzen%209%205950x/11.jpg?versionId=LHGs0f_wrOW93Vjq6fMQ5E9wZHwzpbJk",
		},
		{
			name:        "NVIDIA GeForce RTX 3080",
			description: "Видеокарта NVIDIA RTX 3080",
			price:       80000,
			stock:       5,
			category:    "Видеокарты",
			imageURL:    "https://cdn.mos.cms.futurecdn.net/oskwAZyTdiJF9wQCYsV9Uh.jpg",
		},
		{
			name:        "AMD Radeon RX 6800 XT",
			description: "Видеокарта AMD Radeon RX 6800 XT",
			price:       75000,
			stock:       6,
			category:    "Видеокарты",
			imageURL:    "https://avatars.mds.yandex.net/get-mpic/5221251/img_id1665110708982750673.jpeg/orig",
		},
		{
			name:        "ASUS ROG STRIX B550-F",
			description: "Материнская плата ASUS ROG STRIX",
			price:       20000,
			stock:       15,
			category:    "Материнские платы",
			imageURL:    "https://avatars.mds.yandex.net/get-goods_pic/6240941/hat8dae8d9a25a2b7f64cf6527bdce33e66/600x600",
		},
		{
			name:        "G.Skill Trident Z RGB",
			description: "Оперативная память G.Skill 32GB",
			price:       15000,
			stock:       20,
			category:    "Оперативная память",
			imageURL:    "https://avatars.mds.yandex.net/get-mpic/1724439/img_id1689354946857813081.jpeg/optimize",
		},
		{
			name:        "Samsung 970 EVO Plus",
			description: "SSD накопитель Samsung 1TB",
			price:       12000,
			stock:       25,
			category:    "Накопители",
			imageURL:    "https://avatars.mds.yandex.net/i?id=3d4ebd19cf764d69c718098cd42d50c8_l-5452219-images-thumbs&n=13",
		},
	}
)

// Seeder заполняет пустую базу администраторами и стартовым каталогом.
// Записи ищутся по email и имени, поэтому повторный запуск ничего не дублирует.
type Seeder struct {
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

func NewSeeder(
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
) *Seeder {
	return &Seeder{
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

func (s *Seeder) Seed(ctx context.Context) error {
	if err := s.seedAdmins(ctx); err != nil {
		return err
	}

	categoryIDs, err := s.seedCategories(ctx)
	if err != nil {
		return err
	}

	if err := s.seedProducts(ctx, categoryIDs); err != nil {
		return err
	}

	logger.Info().Msg("Initial data seeding completed")
	return nil
}

func (s *Seeder) seedAdmins(ctx context.Context) error {
	for _, admin := range seedAdmins {
		_, err := s.userRepo.GetByEmail(ctx, admin.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("failed to check admin %s: %w", admin.Email, err)
		}

		hash, err := util.HashPassword(seedAdminPassword)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}

		user := admin
		user.HashedPassword = hash
		if err := s.userRepo.Create(ctx, &user); err != nil {
			return fmt.Errorf("failed to create admin %s: %w", admin.Email, err)
		}
		logger.Info().Str("email", user.Email).Msg("Created admin user")
	}
	return nil
}

// seedCategories возвращает ID категорий по имени
func (s *Seeder) seedCategories(ctx context.Context) (map[string]uint, error) {
	ids := make(map[string]uint, len(seedCategories))

	for _, c := range seedCategories {
		existing, err := s.categoryRepo.GetByName(ctx, c.Name)
		if err == nil {
			ids[c.Name] = existing.ID
			continue
		}
		if !errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, fmt.Errorf("failed to check category %s: %w", c.Name, err)
		}

		category := c
		if err := s.categoryRepo.Create(ctx, &category); err != nil {
			return nil, fmt.Errorf("failed to create category %s: %w", c.Name, err)
		}
		ids[c.Name] = category.ID
		logger.Info().Str("category", category.Name).Msg("Created category")
	}

	return ids, nil
}

func (s *Seeder) seedProducts(ctx context.Context, categoryIDs map[string]uint) error {
	for _, p := range seedProducts {
		_, err := s.productRepo.GetByName(ctx, p.name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrProductNotFound) {
			return fmt.Errorf("failed to check product %s: %w", p.name, err)
		}

		imageURL := p.imageURL
		product := &entity.Product{
			Name:        p.name,
			Description: p.description,
			Price:       decimal.NewFromInt(p.price),
			Stock:       p.stock,
			CategoryID:  categoryIDs[p.category],
			ImageURL:    &imageURL,
		}
		if err := s.productRepo.Create(ctx, product); err != nil {
			return fmt.Errorf("failed to create product %s: %w", p.name, err)
		}
		logger.Info().Str("product", product.Name).Msg("Created product")
	}
	return nil
}
