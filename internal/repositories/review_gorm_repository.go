package repositories

import (
	"context"
	"fmt"

	"storefront/internal/apperrors"
	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

func (r *GORMReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, translate(err, "review", id)
	}
	return &review, nil
}

func (r *GORMReviewRepository) GetByProductAndUser(ctx context.Context, productID, userID string) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).First(&review, "product_id = ? AND user_id = ?", productID, userID).Error
	if err != nil {
		return nil, translate(err, "review", productID+"/"+userID)
	}
	return &review, nil
}

func (r *GORMReviewRepository) GetByProductID(ctx context.Context, productID string) ([]models.Review, error) {
	return r.find(ctx, "product_id = ?", productID)
}

func (r *GORMReviewRepository) GetByUserID(ctx context.Context, userID string) ([]models.Review, error) {
	return r.find(ctx, "user_id = ?", userID)
}

func (r *GORMReviewRepository) GetAll(ctx context.Context) ([]models.Review, error) {
	return r.find(ctx, nil)
}

// find returns the reviews matching query, newest first. A nil query matches all.
func (r *GORMReviewRepository) find(ctx context.Context, query any, args ...any) ([]models.Review, error) {
	var reviews []models.Review
	tx := r.db.WithContext(ctx)
	if query != nil {
		tx = tx.Where(query, args...)
	}
	if err := tx.Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	return reviews, nil
}

// RatingsForProduct returns every rating currently stored for productID.
func (r *GORMReviewRepository) RatingsForProduct(ctx context.Context, productID string) ([]int, error) {
	var ratings []int
	err := r.db.WithContext(ctx).Model(&models.Review{}).Where("product_id = ?", productID).Pluck("rating", &ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan ratings of product %s: %w", productID, err)
	}
	return ratings, nil
}

// Create inserts a review. The unique (product_id, user_id) index turns a
// concurrent duplicate into a conflict.
func (r *GORMReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", translate(err, "review for product", review.ProductID))
	}
	return nil
}

func (r *GORMReviewRepository) Update(ctx context.Context, id string, rating int, comment string) error {
	res := r.db.WithContext(ctx).Model(&models.Review{}).Where("id = ?", id).
		Updates(map[string]any{"rating": rating, "comment": comment})
	if res.Error != nil {
		return fmt.Errorf("failed to update review %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("review", id)
	}
	return nil
}

func (r *GORMReviewRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Review{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete review %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("review", id)
	}
	return nil
}
