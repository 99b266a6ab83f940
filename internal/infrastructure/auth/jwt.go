package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mentora/internal/shared/config"
)

const (
	// RoleAdvisor may manage its own credits and assignments
	RoleAdvisor = "advisor"
	// RoleAdmin may additionally trigger sweeps and manage the plan catalog
	RoleAdmin = "admin"
	// RoleGateway is used by payment webhook callers
	RoleGateway = "gateway"
)

// Claims are the token claims carried by API callers
type Claims struct {
	AdvisorID uint   `json:"advisor_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies API tokens
type JWTService struct {
	secret []byte
	expiry time.Duration
}

// NewJWTService creates the JWT service from configuration
func NewJWTService(cfg *config.AuthConfig) *JWTService {
	return &JWTService{
		secret: []byte(cfg.JWTSecret),
		expiry: time.Duration(cfg.AccessExpMinutes) * time.Minute,
	}
}

// Generate issues a signed token for a caller
func (s *JWTService) Generate(advisorID uint, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		AdvisorID: advisorID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
