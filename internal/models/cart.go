package models

import (
	"time"

	"gorm.io/datatypes"
)

// CartItem is one line of a cart, holding the product data captured when it was added.
type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"image_url,omitempty"`
}

// Cart is the single per-user cart document. Items live inside the row so every
// cart mutation is one single-row write; Version guards those writes.
type Cart struct {
	ID        string                        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string                        `json:"user_id" gorm:"uniqueIndex;type:varchar(36);not null"`
	Items     datatypes.JSONSlice[CartItem] `json:"items"`
	Version   int                           `json:"-" gorm:"not null;default:0"`
	CreatedAt time.Time                     `json:"created_at"`
	UpdatedAt time.Time                     `json:"updated_at"`
}

// Count returns the total quantity across all items.
func (c *Cart) Count() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// IndexOf returns the position of productID in the cart, or -1.
func (c *Cart) IndexOf(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
