package models

import "time"

// Role is the access level of a user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// User represents a registered user of the store. Users are created by the external
// auth service; this layer only reads them and applies profile edits.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" validate:"required,email"`
	Name      string    `json:"name" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	Phone     string    `json:"phone" gorm:"type:varchar(32)" validate:"omitempty,max=32"`
	Role      Role      `json:"role" gorm:"index;type:varchar(20);not null;default:customer"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Session maps an opaque token issued by the auth service to a user.
type Session struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Token     string    `json:"-" gorm:"uniqueIndex;type:varchar(255);not null"`
	UserID    string    `json:"user_id" gorm:"index;type:varchar(36);not null"`
	CreatedAt time.Time `json:"created_at"`
}
