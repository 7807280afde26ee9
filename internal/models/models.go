package models

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&User{},
		&Session{},
		&Category{},
		&Product{},
		&Cart{},
		&Order{},
		&Review{},
		&WishlistItem{},
		&Notification{},
	}
}
