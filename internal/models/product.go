package models

import "time"

// Product represents a product in the store.
// Rating and ReviewCount are derived from the reviews collection and are only
// written by the rating recompute.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null" validate:"required,min=3,max=100"`
	Description string    `json:"description" validate:"omitempty,max=500"`
	Price       float64   `json:"price" validate:"required,gt=0"`
	Stock       int       `json:"stock" validate:"gte=0"`
	CategoryID  string    `json:"category_id" gorm:"index;type:varchar(36)"`
	ImageURL    string    `json:"image_url" validate:"omitempty,url"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Category groups products.
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null" validate:"required,min=2,max=100"`
	Description string    `json:"description" validate:"omitempty,max=500"`
	ImageURL    string    `json:"image_url" validate:"omitempty,url"`
	CreatedAt   time.Time `json:"created_at"`
}
