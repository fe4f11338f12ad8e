// internal/auth/service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/imadgeboyega/fitbuddy-backend/internal/common/utils"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// Service defines the auth service interface
type Service interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
}

type service struct {
	repo   Repository
	config *Config
	now    func() time.Time
}

// NewService creates a new auth service
func NewService(repo Repository, config *Config) Service {
	return &service{
		repo:   repo,
		config: config,
		now:    time.Now,
	}
}

// HashPassword hashes a password with the given bcrypt cost
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Register creates an account. Email verification is handled outside this
// service, so new accounts start active.
func (s *service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	hash, err := HashPassword(req.Password, s.config.BCryptCost)
	if err != nil {
		return nil, err
	}

	userType := req.UserType
	if userType == "" {
		userType = "user"
	}

	user := &User{
		ID:            uuid.NewString(),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Name:          strings.TrimSpace(req.Name),
		PasswordHash:  hash,
		UserType:      userType,
		IsActive:      true,
		AccountStatus: "active",
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

// Login verifies credentials and issues an access token
func (s *service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Deactivated users may still log in to reactivate; suspended and deleted may not
	if user.AccountStatus == "suspended" || user.AccountStatus == "deleted" {
		return nil, ErrAccountDisabled
	}

	return s.issueToken(user)
}

// ValidateToken checks the signature, expiry and token type
func (s *service) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	claims, err := utils.ValidateJWT(token, s.config.JWTSecret)
	if err != nil {
		return nil, err
	}
	if claims.Type != "access" {
		return nil, fmt.Errorf("%w: unexpected token type %q", utils.ErrInvalidToken, claims.Type)
	}
	return claims, nil
}

func (s *service) issueToken(user *User) (*AuthResponse, error) {
	now := s.now()
	expiresAt := now.Add(s.config.AccessTokenExpiry)

	token, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Type:      "access",
		Issuer:    s.config.Issuer,
		ExpiresAt: expiresAt,
		IssuedAt:  now,
	}, s.config.JWTSecret)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		UserID:      user.ID,
		Name:        user.Name,
	}, nil
}
