package domain

import (
	"time"

	"github.com/google/uuid"
)

// Article is the demo entity the example API serves.
type Article struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title" validate:"required,min=1,max=200"`
	Body      string    `json:"body" validate:"required"`
	Author    string    `json:"author" validate:"required"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
