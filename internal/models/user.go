package models

import "time"

// UserID identifies a registered user. It is a distinct type from ThoughtID so
// the two id spaces can never be compared by accident.
type UserID string

// User represents a registered account.
type User struct {
	ID        UserID    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string    `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
