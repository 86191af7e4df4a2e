package domain

import "github.com/google/uuid"

// NewResultID generates a short, stable identifier for one optimization
// response.
func NewResultID() string {
	return uuid.New().String()[:8]
}
