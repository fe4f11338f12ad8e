// internal/auth/models.go

package auth

import "time"

// User is the credential view of a users row
type User struct {
	ID            string    `db:"id"`
	Email         string    `db:"email"`
	Name          string    `db:"name"`
	PasswordHash  string    `db:"password_hash"`
	UserType      string    `db:"user_type"`
	IsActive      bool      `db:"is_active"`
	AccountStatus string    `db:"account_status"`
	CreatedAt     time.Time `db:"created_at"`
}

// RegisterRequest creates a new account
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	UserType string `json:"userType" validate:"omitempty,oneof=user instructor"`
}

// LoginRequest exchanges credentials for a token
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned on register and login
type AuthResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
}

// Config holds auth settings
type Config struct {
	JWTSecret         string
	Issuer            string
	AccessTokenExpiry time.Duration
	BCryptCost        int
}
