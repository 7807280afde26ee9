package repositories

import (
	"context"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	Save(ctx context.Context, cart *models.Cart) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// GetByUserID returns the cart of userID.
func (r *GORMCartRepository) GetByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).First(&cart, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err, "cart for user", userID)
	}
	return &cart, nil
}

// Create inserts the first cart of a user. A second cart for the same user fails
// on the unique user_id index with a conflict.
func (r *GORMCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	cart.Version = 0
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return fmt.Errorf("failed to create cart: %w", translate(err, "cart for user", cart.UserID))
	}
	return nil
}

// Save replaces the items of cart if nobody wrote it since it was read.
// It returns ErrStaleWrite when the stored version moved on.
func (r *GORMCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	res := r.db.WithContext(ctx).Model(&models.Cart{}).
		Where("id = ? AND version = ?", cart.ID, cart.Version).
		Updates(map[string]any{"items": cart.Items, "version": cart.Version + 1})
	if res.Error != nil {
		return fmt.Errorf("failed to save cart %s: %w", cart.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleWrite
	}
	cart.Version++
	return nil
}

// DeleteByUserID removes the cart of userID. Deleting an absent cart is not an error.
func (r *GORMCartRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Cart{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to delete cart of user %s: %w", userID, err)
	}
	return nil
}
