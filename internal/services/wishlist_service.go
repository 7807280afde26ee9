package services

import (
	"context"
	"errors"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/lock"
)

// WishlistService handles saved products.
type WishlistService struct {
	wishlist repositories.WishlistRepository
	products repositories.ProductRepository
	locker   lock.Locker
}

// NewWishlistService creates a new WishlistService.
func NewWishlistService(wishlist repositories.WishlistRepository, products repositories.ProductRepository, locker lock.Locker) *WishlistService {
	return &WishlistService{
		wishlist: wishlist,
		products: products,
		locker:   locker,
	}
}

func wishlistKey(userID, productID string) string {
	return "wishlist:" + userID + ":" + productID
}

// AddToWishlist saves productID for userID.
func (s *WishlistService) AddToWishlist(ctx context.Context, userID, productID string) (*models.WishlistItem, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	unlock, err := s.locker.Lock(ctx, wishlistKey(userID, productID))
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.add(ctx, userID, productID)
}

// RemoveFromWishlist deletes the saved productID of userID.
func (s *WishlistService) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	unlock, err := s.locker.Lock(ctx, wishlistKey(userID, productID))
	if err != nil {
		return err
	}
	defer unlock()
	return s.wishlist.Delete(ctx, userID, productID)
}

// IsInWishlist reports whether userID saved productID.
func (s *WishlistService) IsInWishlist(ctx context.Context, userID, productID string) (bool, error) {
	return s.exists(ctx, userID, productID)
}

// ToggleWishlist adds productID when it is not saved and removes it otherwise.
// It returns whether the product is saved afterwards.
func (s *WishlistService) ToggleWishlist(ctx context.Context, userID, productID string) (bool, error) {
	unlock, err := s.locker.Lock(ctx, wishlistKey(userID, productID))
	if err != nil {
		return false, err
	}
	defer unlock()

	saved, err := s.exists(ctx, userID, productID)
	if err != nil {
		return false, err
	}
	if saved {
		return false, s.wishlist.Delete(ctx, userID, productID)
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return false, err
	}
	if _, err := s.add(ctx, userID, productID); err != nil {
		return false, err
	}
	return true, nil
}

// GetUserWishlist returns the saved products of userID, newest first. Entries
// whose product no longer exists are skipped.
func (s *WishlistService) GetUserWishlist(ctx context.Context, userID string) ([]models.WishlistEntry, error) {
	items, err := s.wishlist.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	entries := make([]models.WishlistEntry, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		entries = append(entries, models.WishlistEntry{WishlistItem: item, Product: product})
	}
	return entries, nil
}

// add and exists expect the caller to hold the (user, product) section.
func (s *WishlistService) add(ctx context.Context, userID, productID string) (*models.WishlistItem, error) {
	saved, err := s.exists(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if saved {
		return nil, apperrors.Conflict("product %s is already in the wishlist", productID)
	}
	item := &models.WishlistItem{UserID: userID, ProductID: productID}
	if err := s.wishlist.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *WishlistService) exists(ctx context.Context, userID, productID string) (bool, error) {
	_, err := s.wishlist.Get(ctx, userID, productID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
