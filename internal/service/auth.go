package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aman-churiwal/shortlink/internal/errs"
	"github.com/aman-churiwal/shortlink/internal/models"
	"github.com/aman-churiwal/shortlink/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService authenticates administrative users with JWT. Admins manage
// API keys; regular callers authenticate with keys, not tokens.
type AuthService struct {
	repo      *repository.UserRepository
	jwtSecret []byte // Stored in env (JWT_SECRET)
	jwtExpiry time.Duration
}

func NewAuthService(repo *repository.UserRepository, secret string, expiryHours int) *AuthService {
	return &AuthService{
		repo:      repo,
		jwtSecret: []byte(secret),
		jwtExpiry: time.Duration(expiryHours) * time.Hour,
	}
}

// Creates a new admin user
func (s *AuthService) Register(ctx context.Context, email, password, name string) error {
	const op = "auth.Register"

	existingUser, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return errs.E(op, errs.Internal, err)
	}
	if existingUser != nil {
		return errs.E(op, errs.Conflict, errors.New("user with this email already exists"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errs.E(op, errs.Internal, fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		Role:         "admin",
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return errs.E(op, errs.Internal, err)
	}
	return nil
}

// Authenticates a user and returns a JWT token
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.Login"

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", errs.E(op, errs.Internal, err)
	}
	if user == nil {
		return "", errs.E(op, errs.Unauthorized, errors.New("invalid credentials"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", errs.E(op, errs.Unauthorized, errors.New("invalid credentials"))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(s.jwtExpiry).Unix(),
		"iat":     time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", errs.E(op, errs.Internal, fmt.Errorf("failed to generate token: %w", err))
	}

	return tokenString, nil
}

// Validates a JWT token and return the claims
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	const op = "auth.ValidateToken"

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, errs.E(op, errs.Unauthorized, err)
	}

	if !token.Valid {
		return nil, errs.E(op, errs.Unauthorized, errors.New("invalid token"))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errs.E(op, errs.Unauthorized, errors.New("invalid token claims"))
	}

	return claims, nil
}
