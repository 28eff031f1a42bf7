package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/fundadaburda/BrokerageApi/internal/domain"
	"github.com/fundadaburda/BrokerageApi/internal/infra/storage"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the JWT payload issued at login.
type Claims struct {
	CustomerID uint   `json:"cid"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService handles credential checks and JWT issuance.
type AuthService struct {
	store  *storage.Storage
	secret []byte
	ttl    time.Duration
}

// NewAuthService creates an AuthService signing tokens with the given
// HS256 secret.
func NewAuthService(store *storage.Storage, secret string, ttl time.Duration) *AuthService {
	return &AuthService{store: store, secret: []byte(secret), ttl: ttl}
}

// Login verifies the credentials and returns a signed token plus the
// authenticated customer. Unknown user and wrong password are both
// reported as ErrInvalidCredentials.
func (s *AuthService) Login(username, password string) (string, *domain.Customer, error) {
	customer, err := s.store.GetCustomerByUsername(username)
	if err != nil {
		if errors.Is(err, domain.ErrResourceNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	claims := Claims{
		CustomerID: customer.ID,
		Role:       customer.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customer.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, customer, nil
}

// Register creates a customer with a bcrypt-hashed password.
func (s *AuthService) Register(username, password, role string) (*domain.Customer, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}
	if role != domain.RoleAdmin && role != domain.RoleCustomer {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	if _, err := s.store.GetCustomerByUsername(username); err == nil {
		return nil, fmt.Errorf("%w: username %q already exists", domain.ErrValidation, username)
	} else if !errors.Is(err, domain.ErrResourceNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	customer := &domain.Customer{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.store.CreateCustomer(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// ParseToken validates a signed token and returns its claims.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: bad token", domain.ErrInvalidCredentials)
	}
	return claims, nil
}
