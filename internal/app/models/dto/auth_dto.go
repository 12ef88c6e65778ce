package dto

import "github.com/admitflow/admitflow/internal/app/models"

// LoginRequest authenticates a user with email and password
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"agent@admitflow.io"`
	Password string `json:"password" binding:"required,min=8"`
}

// RefreshTokenRequest exchanges a refresh token for a new token pair
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse carries an issued token pair
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	ExpiresIn        int    `json:"expiresIn" example:"3600"`
	RefreshExpiresIn int    `json:"refreshExpiresIn" example:"2592000"`
}

// LoginResponse combines the token pair with the authenticated user
type LoginResponse struct {
	Tokens TokenResponse `json:"tokens"`
	User   UserResponse  `json:"user"`
}

// UserResponse is the public view of a user account
type UserResponse struct {
	ID        int64           `json:"id"`
	Email     string          `json:"email"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Role      models.RoleType `json:"role" example:"agent"`
	Active    bool            `json:"active"`
}

// ToUserResponse converts a user model into its public view.
func ToUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		Active:    user.Active,
	}
}
