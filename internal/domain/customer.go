package domain

import "time"

const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

// Customer is an account holder. PasswordHash carries a bcrypt digest,
// never the raw password.
type Customer struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null;default:CUSTOMER" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the customer holds the admin role.
func (c *Customer) IsAdmin() bool {
	return c.Role == RoleAdmin
}
