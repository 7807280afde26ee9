package repositories

import (
	"context"

	"storefront/internal/models"
)

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	GetByID(ctx context.Context, id string) (*models.Review, error)
	GetByProductAndUser(ctx context.Context, productID, userID string) (*models.Review, error)
	GetByProductID(ctx context.Context, productID string) ([]models.Review, error)
	GetByUserID(ctx context.Context, userID string) ([]models.Review, error)
	GetAll(ctx context.Context) ([]models.Review, error)
	RatingsForProduct(ctx context.Context, productID string) ([]int, error)
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, id string, rating int, comment string) error
	Delete(ctx context.Context, id string) error
}
