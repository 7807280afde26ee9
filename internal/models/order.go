package models

import (
	"time"

	"gorm.io/datatypes"
)

// OrderStatus is a step of the fulfillment state machine.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  nil,
	OrderStatusCancelled:  nil,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether the state machine allows s -> next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem represents a single item within an order.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"` // Price at the time of order
	ImageURL  string  `json:"image_url,omitempty"`
}

// ShippingInfo is where an order is delivered.
type ShippingInfo struct {
	FullName   string `json:"full_name" validate:"required,max=100"`
	Address    string `json:"address" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"omitempty,max=100"`
	Phone      string `json:"phone" validate:"required,max=32"`
}

// Order represents a customer order. Items are a snapshot taken at checkout and
// are never rewritten afterwards.
type Order struct {
	ID             string                         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID         string                         `json:"user_id" gorm:"index;type:varchar(36);not null"`
	Items          datatypes.JSONSlice[OrderItem] `json:"items"`
	Total          float64                        `json:"total"`
	Status         OrderStatus                    `json:"status" gorm:"index;type:varchar(20);not null"`
	Shipping       ShippingInfo                   `json:"shipping" gorm:"embedded;embeddedPrefix:shipping_"`
	TrackingNumber *string                        `json:"tracking_number,omitempty"`
	Carrier        *string                        `json:"carrier,omitempty"`
	CreatedAt      time.Time                      `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time                      `json:"updated_at"`
}

// Contains reports whether the order has an item for productID.
func (o *Order) Contains(productID string) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}
