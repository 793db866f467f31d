package models

import "time"

// ThoughtID identifies a single thought.
type ThoughtID string

// Thought is a short user-authored post with a like counter.
// Hearts only ever grows, and only through the like operation.
type Thought struct {
	ID        ThoughtID `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Message   string    `json:"message" validate:"required,min=5,max=140"`
	Hearts    int       `json:"hearts" validate:"gte=0"`
	CreatedBy UserID    `json:"createdBy" gorm:"index;type:varchar(36)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
