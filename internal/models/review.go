package models

import "time"

// Review is a user's rating of a product. One per (product, user).
type Review struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string    `json:"product_id" gorm:"uniqueIndex:idx_reviews_product_user,priority:1;type:varchar(36);not null"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_reviews_product_user,priority:2;index;type:varchar(36);not null"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewDetails is the admin view of a review, denormalized at read time.
type ReviewDetails struct {
	Review
	ProductName string `json:"product_name"`
	UserEmail   string `json:"user_email"`
}
