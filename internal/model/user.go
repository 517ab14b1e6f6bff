// Package model defines domain entities for the application.
package model

import "time"

// User is a person identified by email alone. The email is stored exactly as
// submitted; no case folding or other normalization is applied.
type User struct {
	ID        string     `json:"_id,omitempty"`
	Email     string     `json:"email"`
	Name      *string    `json:"name"`
	AvatarURL *string    `json:"avatar_url"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
