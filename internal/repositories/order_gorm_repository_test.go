package repositories_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"storefront/internal/apperrors"
	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestGORMOrderRepository_UpdateStatusIsConditional(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repositories.NewGORMOrderRepository(db)
	tracking, carrier := "TRK-1", "DHL"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`) + `.*"status"=.*WHERE \(?id = \$\d+ AND status = \$\d+\)?`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateStatus(context.Background(), "o-1", models.OrderStatusProcessing, models.OrderStatusShipped, &tracking, &carrier)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGORMOrderRepository_UpdateStatusStale(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repositories.NewGORMOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdateStatus(context.Background(), "o-1", models.OrderStatusPending, models.OrderStatusCancelled, nil, nil)
	assert.ErrorIs(t, err, repositories.ErrStaleWrite)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGORMCartRepository_SaveStale(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repositories.NewGORMCartRepository(db)
	cart := &models.Cart{ID: "c-1", UserID: "u-1", Version: 3}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "carts" SET`) + `.*WHERE \(?id = \$\d+ AND version = \$\d+\)?`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Save(context.Background(), cart)
	assert.ErrorIs(t, err, repositories.ErrStaleWrite)
	assert.Equal(t, 3, cart.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGORMOrderRepository_NewestFirst(t *testing.T) {
	db := database.OpenTest(t)
	repo := repositories.NewGORMOrderRepository(db)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "new", "mid"} {
		offset := map[string]time.Duration{"old": 0, "mid": time.Hour, "new": 2 * time.Hour}[id]
		order := &models.Order{
			ID:        id,
			UserID:    "u-1",
			Status:    models.OrderStatusPending,
			Total:     float64(i + 1),
			CreatedAt: base.Add(offset),
		}
		require.NoError(t, repo.Create(ctx, order))
	}
	require.NoError(t, repo.Create(ctx, &models.Order{ID: "foreign", UserID: "u-2", Status: models.OrderStatusPending, CreatedAt: base}))

	orders, err := repo.GetByUserID(ctx, "u-1")
	require.NoError(t, err)
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGORMRepositories_UniqueIndexes(t *testing.T) {
	db := database.OpenTest(t)
	ctx := context.Background()

	carts := repositories.NewGORMCartRepository(db)
	require.NoError(t, carts.Create(ctx, &models.Cart{UserID: "u-1"}))
	assert.ErrorIs(t, carts.Create(ctx, &models.Cart{UserID: "u-1"}), apperrors.ErrConflict)

	reviews := repositories.NewGORMReviewRepository(db)
	require.NoError(t, reviews.Create(ctx, &models.Review{ProductID: "p-1", UserID: "u-1", Rating: 4}))
	assert.ErrorIs(t, reviews.Create(ctx, &models.Review{ProductID: "p-1", UserID: "u-1", Rating: 2}), apperrors.ErrConflict)
	require.NoError(t, reviews.Create(ctx, &models.Review{ProductID: "p-1", UserID: "u-2", Rating: 2}))

	wishlist := repositories.NewGORMWishlistRepository(db)
	require.NoError(t, wishlist.Create(ctx, &models.WishlistItem{UserID: "u-1", ProductID: "p-1"}))
	assert.ErrorIs(t, wishlist.Create(ctx, &models.WishlistItem{UserID: "u-1", ProductID: "p-1"}), apperrors.ErrConflict)

	users := repositories.NewGORMUserRepository(db)
	require.NoError(t, users.Create(ctx, &models.User{Email: "a@example.com"}))
	assert.ErrorIs(t, users.Create(ctx, &models.User{Email: "a@example.com"}), apperrors.ErrConflict)

	ratings, err := reviews.RatingsForProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{4, 2}, ratings)
}
