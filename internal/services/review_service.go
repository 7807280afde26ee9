package services

import (
	"context"
	"errors"
	"time"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/lock"
)

// AddReviewInput is the payload of a new review.
type AddReviewInput struct {
	ProductID string `json:"product_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
	UserName  string `json:"user_name"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

// ReviewService handles reviews and keeps the rating aggregate of each product
// in step with them.
type ReviewService struct {
	reviews       repositories.ReviewRepository
	products      repositories.ProductRepository
	orders        repositories.OrderRepository
	users         repositories.UserRepository
	notifications *NotificationService
	locker        lock.Locker
	publisher     EventPublisher
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	reviews repositories.ReviewRepository,
	products repositories.ProductRepository,
	orders repositories.OrderRepository,
	users repositories.UserRepository,
	notifications *NotificationService,
	locker lock.Locker,
	publisher EventPublisher,
) *ReviewService {
	return &ReviewService{
		reviews:       reviews,
		products:      products,
		orders:        orders,
		users:         users,
		notifications: notifications,
		locker:        locker,
		publisher:     publisher,
	}
}

type reviewEvent struct {
	ReviewID  string    `json:"review_id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

// AddReview records a review for a product the user has ordered before.
//
// The duplicate check, purchase check and insert run inside one exclusive section
// per (product, user); the unique index on the same pair catches anything that
// slips past a lease expiry.
func (s *ReviewService) AddReview(ctx context.Context, input AddReviewInput) (*models.Review, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	review, err := s.insertReview(ctx, input)
	if err != nil {
		return nil, err
	}

	s.recompute(ctx, review.ProductID)
	s.notifications.NotifyReviewCreated(ctx, review, product.Name)
	publishEvent(ctx, s.publisher, "review.created", reviewEvent{
		ReviewID:  review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Timestamp: time.Now().UTC(),
	})
	return review, nil
}

func (s *ReviewService) insertReview(ctx context.Context, input AddReviewInput) (*models.Review, error) {
	unlock, err := s.locker.Lock(ctx, "review:"+input.ProductID+":"+input.UserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	_, err = s.reviews.GetByProductAndUser(ctx, input.ProductID, input.UserID)
	if err == nil {
		return nil, apperrors.Conflict("user %s already reviewed product %s", input.UserID, input.ProductID)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	purchased, err := s.HasPurchased(ctx, input.UserID, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, apperrors.ErrNotPurchased
	}

	review := &models.Review{
		ProductID: input.ProductID,
		UserID:    input.UserID,
		UserName:  input.UserName,
		Rating:    input.Rating,
		Comment:   input.Comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// HasPurchased reports whether any order of userID contains productID.
func (s *ReviewService) HasPurchased(ctx context.Context, userID, productID string) (bool, error) {
	orders, err := s.orders.GetByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	for i := range orders {
		if orders[i].Contains(productID) {
			return true, nil
		}
	}
	return false, nil
}

// UpdateReview changes the rating and comment of a review. Only its author or an
// admin may do so.
func (s *ReviewService) UpdateReview(ctx context.Context, actor *models.User, reviewID string, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.Validation("rating must be between 1 and 5, got %d", rating)
	}
	review, err := s.authorize(ctx, actor, reviewID)
	if err != nil {
		return nil, err
	}
	if err := s.reviews.Update(ctx, reviewID, rating, comment); err != nil {
		return nil, err
	}
	review.Rating = rating
	review.Comment = comment

	s.recompute(ctx, review.ProductID)
	return review, nil
}

// DeleteReview removes a review. Only its author or an admin may do so.
func (s *ReviewService) DeleteReview(ctx context.Context, actor *models.User, reviewID string) error {
	review, err := s.authorize(ctx, actor, reviewID)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		return err
	}
	s.recompute(ctx, review.ProductID)
	return nil
}

func (s *ReviewService) authorize(ctx context.Context, actor *models.User, reviewID string) (*models.Review, error) {
	if actor == nil {
		return nil, apperrors.Authorization("sign in to manage reviews")
	}
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.Authorization("review %s belongs to another user", reviewID)
	}
	return review, nil
}

// RecomputeRating rescans the reviews of productID and stores their mean and
// count on the product. No reviews means a rating of 0.
func (s *ReviewService) RecomputeRating(ctx context.Context, productID string) error {
	unlock, err := s.locker.Lock(ctx, "rating:"+productID)
	if err != nil {
		return err
	}
	defer unlock()

	ratings, err := s.reviews.RatingsForProduct(ctx, productID)
	if err != nil {
		return err
	}
	mean := 0.0
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r
		}
		mean = float64(sum) / float64(len(ratings))
	}
	return s.products.UpdateRating(ctx, productID, mean, len(ratings))
}

// recompute runs RecomputeRating after a review write. A failure leaves the
// aggregate stale until the next review write of the product.
func (s *ReviewService) recompute(ctx context.Context, productID string) {
	if err := s.RecomputeRating(ctx, productID); err != nil {
		logger.Error().Err(err).Str("product_id", productID).Msg("Failed to recompute product rating")
	}
}

// GetProductReviews returns the reviews of a product, newest first.
func (s *ReviewService) GetProductReviews(ctx context.Context, productID string) ([]models.Review, error) {
	return s.reviews.GetByProductID(ctx, productID)
}

// GetUserReviews returns the reviews written by userID, newest first.
func (s *ReviewService) GetUserReviews(ctx context.Context, userID string) ([]models.Review, error) {
	return s.reviews.GetByUserID(ctx, userID)
}

// GetAllReviews returns every review, newest first, with the product name and
// reviewer email looked up at read time. Dangling references leave those fields empty.
func (s *ReviewService) GetAllReviews(ctx context.Context) ([]models.ReviewDetails, error) {
	reviews, err := s.reviews.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	productIDs := make([]string, 0, len(reviews))
	userIDs := make([]string, 0, len(reviews))
	for _, r := range reviews {
		productIDs = append(productIDs, r.ProductID)
		userIDs = append(userIDs, r.UserID)
	}

	products, err := s.products.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	users, err := s.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	emails := make(map[string]string, len(users))
	for _, u := range users {
		emails[u.ID] = u.Email
	}

	details := make([]models.ReviewDetails, 0, len(reviews))
	for _, r := range reviews {
		details = append(details, models.ReviewDetails{
			Review:      r,
			ProductName: names[r.ProductID],
			UserEmail:   emails[r.UserID],
		})
	}
	return details, nil
}
