package user

import (
	"time"

	"github.com/MikeMC777/shop-service/internal/auth"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest payload of registration.
// swagger:model RegisterRequest
type RegisterRequest struct {
	Name     string `json:"name"     binding:"required" example:"Ada Lovelace"`
	Email    string `json:"email"    binding:"required,email" example:"ada@example.com"`
	Password string `json:"password" binding:"required,min=8,max=72" example:"s3cret-pass"`
}

// LoginRequest payload of login.
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email"    binding:"required" example:"ada@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
}

// LoginResponse carries the signed session token.
// swagger:model LoginResponse
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}
