package models

import "time"

// NotificationType is the closed set of notification kinds.
type NotificationType string

const (
	NotificationOrder       NotificationType = "order"
	NotificationOrderStatus NotificationType = "order-status"
	NotificationReview      NotificationType = "review"
	NotificationSignup      NotificationType = "signup"
	NotificationWelcome     NotificationType = "welcome"
	NotificationMessage     NotificationType = "message"
	NotificationStock       NotificationType = "stock"
	NotificationOther       NotificationType = "other"
)

// ParseNotificationType maps s onto a known type, falling back to NotificationOther.
func ParseNotificationType(s string) NotificationType {
	switch t := NotificationType(s); t {
	case NotificationOrder, NotificationOrderStatus, NotificationReview, NotificationSignup,
		NotificationWelcome, NotificationMessage, NotificationStock:
		return t
	default:
		return NotificationOther
	}
}

// Notification is one message for one recipient.
type Notification struct {
	ID        string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string           `json:"user_id" gorm:"index;type:varchar(36);not null"`
	Type      NotificationType `json:"type" gorm:"type:varchar(20);not null"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Link      *string          `json:"link,omitempty"`
	Read      bool             `json:"read" gorm:"column:is_read;not null;default:false"`
	CreatedAt time.Time        `json:"created_at" gorm:"index"`
}
