package domain

import "time"

// Role identifiers stored in User.RoleID
const (
	RoleAdmin    uint = 1 // Administrator
	RoleStandard uint = 2 // Regular account
)

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                       // Primary key
	FirstName string    `gorm:"size:100;not null" json:"firstName"`         // First name
	LastName  string    `gorm:"size:100;not null" json:"lastName"`          // Last name
	Email     string    `gorm:"size:191;uniqueIndex;not null" json:"email"` // Unique email
	Password  string    `gorm:"not null" json:"-"`                          // Hashed password, never serialized
	Avatar    string    `gorm:"size:255" json:"avatar,omitempty"`           // Public path of the uploaded avatar
	RoleID    uint      `gorm:"not null;default:2" json:"roleId,omitempty"` // Role: 1 admin, 2 standard
	CreatedAt time.Time `json:"createdAt,omitzero"`                         // Creation timestamp
	UpdatedAt time.Time `json:"updatedAt,omitzero"`                         // Last update timestamp, absent from partial reads
}
