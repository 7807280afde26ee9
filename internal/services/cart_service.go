package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"gorm.io/datatypes"
)

// maxCartAttempts bounds the compare-and-swap retries of one cart mutation.
const maxCartAttempts = 3

// CartService handles the per-user cart document.
//
// Every mutation reads the cart, changes it in memory and writes it back guarded
// by the version it read. A concurrent writer makes the guard fail and the
// mutation is replayed on the fresh cart, so two simultaneous adds both count.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
	}
}

// GetCart returns the cart of userID, or nil when the user has none.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// GetCartCount returns the total quantity in the cart of userID, 0 without a cart.
func (s *CartService) GetCartCount(ctx context.Context, userID string) (int, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return 0, err
	}
	return cart.Count(), nil
}

// AddItem adds qty of productID to the cart of userID, creating the cart on first
// use and merging with an existing line for the same product.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, qty int) (*models.Cart, error) {
	if qty < 1 {
		return nil, apperrors.Validation("quantity must be at least 1, got %d", qty)
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	item := models.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  qty,
		ImageURL:  product.ImageURL,
	}

	for attempt := 0; attempt < maxCartAttempts; attempt++ {
		cart, err := s.carts.GetByUserID(ctx, userID)
		if errors.Is(err, apperrors.ErrNotFound) {
			cart = &models.Cart{
				UserID: userID,
				Items:  datatypes.JSONSlice[models.CartItem]{item},
			}
			err = s.carts.Create(ctx, cart)
			if errors.Is(err, apperrors.ErrConflict) {
				// Another request created the cart first; merge into it.
				continue
			}
			if err != nil {
				return nil, err
			}
			return cart, nil
		}
		if err != nil {
			return nil, err
		}

		if i := cart.IndexOf(productID); i >= 0 {
			cart.Items[i].Quantity += qty
		} else {
			cart.Items = append(cart.Items, item)
		}

		err = s.carts.Save(ctx, cart)
		if errors.Is(err, repositories.ErrStaleWrite) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return cart, nil
	}
	return nil, fmt.Errorf("cart of user %s kept changing: %w", userID, repositories.ErrStaleWrite)
}

// UpdateItemQuantity sets the quantity of productID. A quantity below 1 is rejected
// and leaves the cart unchanged; use RemoveItem to drop a line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, productID string, qty int) (*models.Cart, error) {
	if qty < 1 {
		return nil, apperrors.Validation("quantity must be at least 1, got %d", qty)
	}
	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		i := cart.IndexOf(productID)
		if i < 0 {
			return apperrors.NotFound("cart item", productID)
		}
		cart.Items[i].Quantity = qty
		return nil
	})
}

// RemoveItem drops the line for productID from the cart of userID.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		i := cart.IndexOf(productID)
		if i < 0 {
			return apperrors.NotFound("cart item", productID)
		}
		cart.Items = append(cart.Items[:i:i], cart.Items[i+1:]...)
		return nil
	})
}

// ClearCart deletes the cart of userID.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	return s.carts.DeleteByUserID(ctx, userID)
}

// mutate applies change to the current cart and saves it, replaying change when
// the save loses a race.
func (s *CartService) mutate(ctx context.Context, userID string, change func(*models.Cart) error) (*models.Cart, error) {
	for attempt := 0; attempt < maxCartAttempts; attempt++ {
		cart, err := s.carts.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := change(cart); err != nil {
			return nil, err
		}
		err = s.carts.Save(ctx, cart)
		if errors.Is(err, repositories.ErrStaleWrite) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return cart, nil
	}
	return nil, fmt.Errorf("cart of user %s kept changing: %w", userID, repositories.ErrStaleWrite)
}
