package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"partshop/shop-service/internal/app/shop/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"
)

// ReviewRepositoryTestSuite проверяет, что запись отзыва и пересчет рейтинга идут одной транзакцией
type ReviewRepositoryTestSuite struct {
	suite.Suite
	mock  sqlmock.Sqlmock
	sqlDB *sql.DB
	repo  ReviewRepository
}

func TestReviewRepositorySuite(t *testing.T) {
	suite.Run(t, new(ReviewRepositoryTestSuite))
}

func (s *ReviewRepositoryTestSuite) SetupTest() {
	db, mock, sqlDB := newMockDB(s.T())
	s.mock = mock
	s.sqlDB = sqlDB
	s.repo = NewReviewRepository(db)
}

func (s *ReviewRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

func reviewRows(id, userID, productID uint, rating int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "product_id", "rating", "comment", "created_at"}).
		AddRow(id, userID, productID, rating, "comment", time.Now())
}

func (s *ReviewRepositoryTestSuite) expectRecalculation(ratings []int, wantRating float64) {
	rows := sqlmock.NewRows([]string{"rating"})
	for _, r := range ratings {
		rows.AddRow(r)
	}
	s.mock.ExpectQuery(q(`SELECT "rating" FROM "reviews" WHERE product_id = $1`)).WillReturnRows(rows)
	s.mock.ExpectExec(q(`UPDATE "products" SET "rating"=$1,"reviews_count"=$2 WHERE id = $3`)).
		WithArgs(wantRating, len(ratings), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

// ===================== Create Tests =====================

func (s *ReviewRepositoryTestSuite) TestCreate_RecalculatesRatingInSameTransaction() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(q(lockProductSQL)).WillReturnRows(productRows(3, 10))
	s.mock.ExpectQuery(q(`SELECT count(*) FROM "reviews" WHERE user_id = $1 AND product_id = $2`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	s.mock.ExpectQuery(q(`INSERT INTO "reviews"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	s.expectRecalculation([]int{4, 2}, 3.0)
	s.mock.ExpectCommit()

	review := &entity.Review{UserID: 2, ProductID: 3, Rating: 2, Comment: "so-so"}

	// Act
	productRating, err := s.repo.Create(context.Background(), review)

	// Assert
	s.NoError(err)
	s.Equal(3.0, productRating)
	s.Equal(uint(11), review.ID)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestCreate_Duplicate() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(q(lockProductSQL)).WillReturnRows(productRows(3, 10))
	s.mock.ExpectQuery(q(`SELECT count(*) FROM "reviews"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.mock.ExpectRollback()

	_, err := s.repo.Create(context.Background(), &entity.Review{UserID: 2, ProductID: 3, Rating: 5})

	s.ErrorIs(err, ErrReviewExists)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestCreate_ProductNotFound() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(q(lockProductSQL)).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	s.mock.ExpectRollback()

	_, err := s.repo.Create(context.Background(), &entity.Review{UserID: 2, ProductID: 99, Rating: 5})

	s.ErrorIs(err, ErrProductNotFound)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestCreate_InvalidRatingCheckedAfterDuplicate() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(q(lockProductSQL)).WillReturnRows(productRows(3, 10))
	s.mock.ExpectQuery(q(`SELECT count(*) FROM "reviews"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	s.mock.ExpectRollback()

	_, err := s.repo.Create(context.Background(), &entity.Review{UserID: 2, ProductID: 3, Rating: 6})

	s.ErrorIs(err, ErrInvalidRating)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestCreate_ValidationOrder() {
	// Неизвестный товар важнее неверной оценки
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(q(lockProductSQL)).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	s.mock.ExpectRollback()

	_, err := s.repo.Create(context.Background(), &entity.Review{UserID: 2, ProductID: 99, Rating: 9})
	s.ErrorIs(err, ErrProductNotFound)

	// Повторный отзыв важнее неверной оценки
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(q(lockProductSQL)).WillReturnRows(productRows(3, 10))
	s.mock.ExpectQuery(q(`SELECT count(*) FROM "reviews"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.mock.ExpectRollback()

	_, err = s.repo.Create(context.Background(), &entity.Review{UserID: 2, ProductID: 3, Rating: 0})
	s.ErrorIs(err, ErrReviewExists)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Update Tests =====================

func (s *ReviewRepositoryTestSuite) TestUpdate_Success() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(q(`SELECT * FROM "reviews" WHERE id = $1`)).WillReturnRows(reviewRows(11, 2, 3, 2))
	s.mock.ExpectQuery(q(lockProductSQL)).WillReturnRows(productRows(3, 10))
	s.mock.ExpectQuery(q(`SELECT * FROM "reviews" WHERE id = $1`) + ".*FOR UPDATE").
		WillReturnRows(reviewRows(11, 2, 3, 2))
	s.mock.ExpectExec(q(`UPDATE "reviews" SET`)).WillReturnResult(sqlmock.NewResult(0, 1))
	s.expectRecalculation([]int{4, 5}, 4.5)
	s.mock.ExpectCommit()

	review, productRating, err := s.repo.Update(context.Background(), 2, 11, 5, "better now")

	s.NoError(err)
	s.Equal(4.5, productRating)
	s.Equal(5, review.Rating)
	s.Equal("better now", review.Comment)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestUpdate_NotOwner() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(q(`SELECT * FROM "reviews" WHERE id = $1`)).WillReturnRows(reviewRows(11, 2, 3, 2))
	s.mock.ExpectRollback()

	review, _, err := s.repo.Update(context.Background(), 9, 11, 5, "hijack")

	s.ErrorIs(err, ErrNotOwner)
	s.Nil(review)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestUpdate_NotOwnerBeforeInvalidRating() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(q(`SELECT * FROM "reviews" WHERE id = $1`)).WillReturnRows(reviewRows(11, 2, 3, 2))
	s.mock.ExpectRollback()

	_, _, err := s.repo.Update(context.Background(), 9, 11, 7, "")

	s.ErrorIs(err, ErrNotOwner)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestUpdate_InvalidRating() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(q(`SELECT * FROM "reviews" WHERE id = $1`)).WillReturnRows(reviewRows(11, 2, 3, 2))
	s.mock.ExpectQuery(q(lockProductSQL)).WillReturnRows(productRows(3, 10))
	s.mock.ExpectQuery(q(`SELECT * FROM "reviews" WHERE id = $1`) + ".*FOR UPDATE").
		WillReturnRows(reviewRows(11, 2, 3, 2))
	s.mock.ExpectRollback()

	review, _, err := s.repo.Update(context.Background(), 2, 11, 0, "")

	s.ErrorIs(err, ErrInvalidRating)
	s.Nil(review)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Delete Tests =====================

func (s *ReviewRepositoryTestSuite) TestDelete_LastReviewResetsRating() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(q(`SELECT * FROM "reviews" WHERE id = $1`)).WillReturnRows(reviewRows(11, 2, 3, 4))
	s.mock.ExpectQuery(q(lockProductSQL)).WillReturnRows(productRows(3, 10))
	s.mock.ExpectQuery(q(`SELECT * FROM "reviews" WHERE id = $1`) + ".*FOR UPDATE").
		WillReturnRows(reviewRows(11, 2, 3, 4))
	s.mock.ExpectExec(q(`DELETE FROM "reviews" WHERE "reviews"."id" = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.expectRecalculation(nil, 0.0)
	s.mock.ExpectCommit()

	review, productRating, err := s.repo.Delete(context.Background(), 2, 11)

	s.NoError(err)
	s.Equal(0.0, productRating)
	s.Equal(uint(3), review.ProductID)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestDelete_NotFound() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(q(`SELECT * FROM "reviews" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	s.mock.ExpectRollback()

	review, _, err := s.repo.Delete(context.Background(), 2, 404)

	s.ErrorIs(err, ErrReviewNotFound)
	s.Nil(review)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestDelete_NotOwner() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(q(`SELECT * FROM "reviews" WHERE id = $1`)).WillReturnRows(reviewRows(11, 2, 3, 4))
	s.mock.ExpectRollback()

	review, _, err := s.repo.Delete(context.Background(), 5, 11)

	s.ErrorIs(err, ErrNotOwner)
	s.Nil(review)
	s.NoError(s.mock.ExpectationsWereMet())
}
