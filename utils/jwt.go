package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	tokenIssuer = "StartupPlatform"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type CustomClaims struct {
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID is the token subject.
func (c *CustomClaims) UserID() string { return c.Subject }

// TokenManager issues and validates HS256 access and refresh tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (tm *TokenManager) GenerateAccessToken(userID, email, role string) (string, error) {
	return tm.sign(&CustomClaims{Email: email, Role: role, TokenType: TokenTypeAccess}, userID, tm.accessTTL)
}

func (tm *TokenManager) GenerateRefreshToken(userID string) (string, error) {
	return tm.sign(&CustomClaims{TokenType: TokenTypeRefresh}, userID, tm.refreshTTL)
}

func (tm *TokenManager) sign(claims *CustomClaims, userID string, ttl time.Duration) (string, error) {
	now := tm.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
}

// ParseAccessToken rejects refresh tokens.
func (tm *TokenManager) ParseAccessToken(tokenString string) (*CustomClaims, error) {
	return tm.parse(tokenString, TokenTypeAccess)
}

// ParseRefreshToken rejects access tokens.
func (tm *TokenManager) ParseRefreshToken(tokenString string) (*CustomClaims, error) {
	return tm.parse(tokenString, TokenTypeRefresh)
}

func (tm *TokenManager) parse(tokenString, tokenType string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(tm.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || claims.Subject == "" || claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
