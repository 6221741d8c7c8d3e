// internal/utils/jwt.go
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DevelopmentJWTSecret signs tokens when no secret is configured. Config
// validation refuses it in production.
const DevelopmentJWTSecret = "dev-only-secret-change-me"

const DefaultTokenTTL = 30 * 24 * time.Hour

type TokenClaims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if secret == "" {
		logrus.Warn("JWT secret is not set, falling back to the development secret")
		secret = DevelopmentJWTSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "fashion-storefront",
		now:    time.Now,
	}
}

func (m *TokenManager) WithIssuer(issuer string) *TokenManager {
	if issuer != "" {
		m.issuer = issuer
	}
	return m
}

// WithClock replaces the time source used for issuing and verifying tokens.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

func (m *TokenManager) IssueToken(userID uint, email string) (string, error) {
	now := m.now()
	claims := TokenClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// VerifyToken reports false for malformed, tampered or expired tokens.
func (m *TokenManager) VerifyToken(tokenString string) (*TokenClaims, bool) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func (m *TokenManager) parse(tokenString string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &TokenClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	now := m.now()
	if !claims.VerifyExpiresAt(now, true) {
		return nil, errors.New("token expired")
	}
	if !claims.VerifyNotBefore(now, false) {
		return nil, errors.New("token not valid yet")
	}
	if claims.UserID == 0 || claims.ID == "" {
		return nil, errors.New("token is missing required claims")
	}

	return claims, nil
}
