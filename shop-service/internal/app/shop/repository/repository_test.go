package repository

import (
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB создает gorm поверх sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock, sqlDB
}

// q экранирует SQL для регулярного выражения sqlmock
func q(sql string) string {
	return regexp.QuoteMeta(sql)
}

func productRows(id uint, stock int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "description", "price", "stock", "category_id", "rating", "reviews_count"}).
		AddRow(id, "AMD Ryzen 9 5950X", "16 cores", "45000.00", stock, 1, 0.0, 0)
}

func cartItemRows(id, userID, productID uint, quantity int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "product_id", "quantity"}).
		AddRow(id, userID, productID, quantity)
}
