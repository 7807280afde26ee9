package models

import "time"

// WishlistItem is a saved product reference, unique per (user, product).
type WishlistItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_wishlist_user_product,priority:1;type:varchar(36);not null"`
	ProductID string    `json:"product_id" gorm:"uniqueIndex:idx_wishlist_user_product,priority:2;index;type:varchar(36);not null"`
	CreatedAt time.Time `json:"created_at"`
}

// WishlistEntry pairs a wishlist item with the product it references.
type WishlistEntry struct {
	WishlistItem
	Product Product `json:"product"`
}
