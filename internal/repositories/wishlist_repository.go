package repositories

import (
	"context"
	"fmt"

	"storefront/internal/apperrors"
	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WishlistRepository defines the interface for wishlist data access.
type WishlistRepository interface {
	Get(ctx context.Context, userID, productID string) (*models.WishlistItem, error)
	GetByUserID(ctx context.Context, userID string) ([]models.WishlistItem, error)
	GetByProductID(ctx context.Context, productID string) ([]models.WishlistItem, error)
	Create(ctx context.Context, item *models.WishlistItem) error
	Delete(ctx context.Context, userID, productID string) error
}

// GORMWishlistRepository is a GORM implementation of WishlistRepository.
type GORMWishlistRepository struct {
	db *gorm.DB
}

// NewGORMWishlistRepository creates a new instance of GORMWishlistRepository.
func NewGORMWishlistRepository(db *gorm.DB) *GORMWishlistRepository {
	return &GORMWishlistRepository{db: db}
}

func (r *GORMWishlistRepository) Get(ctx context.Context, userID, productID string) (*models.WishlistItem, error) {
	var item models.WishlistItem
	err := r.db.WithContext(ctx).First(&item, "user_id = ? AND product_id = ?", userID, productID).Error
	if err != nil {
		return nil, translate(err, "wishlist item", productID)
	}
	return &item, nil
}

// GetByUserID returns the wishlist of userID, newest first.
func (r *GORMWishlistRepository) GetByUserID(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get wishlist of user %s: %w", userID, err)
	}
	return items, nil
}

// GetByProductID returns every wishlist entry referencing productID.
func (r *GORMWishlistRepository) GetByProductID(ctx context.Context, productID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get wishlist entries of product %s: %w", productID, err)
	}
	return items, nil
}

func (r *GORMWishlistRepository) Create(ctx context.Context, item *models.WishlistItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to add to wishlist: %w", translate(err, "wishlist item", item.ProductID))
	}
	return nil
}

func (r *GORMWishlistRepository) Delete(ctx context.Context, userID, productID string) error {
	res := r.db.WithContext(ctx).Delete(&models.WishlistItem{}, "user_id = ? AND product_id = ?", userID, productID)
	if res.Error != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("wishlist item", productID)
	}
	return nil
}
