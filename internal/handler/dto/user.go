package dto

import "github.com/dropline/dropline/internal/model"

// SignupRequest represents the request body for POST /auth/signup.
type SignupRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

// LoginRequest represents the request body for POST /auth/login.
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ProfileUpdateRequest represents the request body for PUT /profile.
// Omitted name or avatar_url clears the stored value.
type ProfileUpdateRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	Email     string  `json:"email"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

// AuthResponse is returned by signup, login and profile update.
// ID is present only when signup created the user.
type AuthResponse struct {
	Status string       `json:"status"`
	User   UserResponse `json:"user"`
	ID     string       `json:"id,omitempty"`
}

// ToUserResponse converts a User to its public view.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
	}
}

// ProfileQuery holds the query parameters of GET /profile.
type ProfileQuery struct {
	Email string `json:"email" validate:"required,email"`
}
