package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// APIClaims identifies the calling collaborator. User and session management
// live outside this service; the token only proves the caller is a trusted
// platform component and names it for audit logs.
type APIClaims struct {
	Caller string   `json:"caller"`
	Scope  []string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

type TokenManager interface {
	GenerateAPIToken(caller string, scope []string, ttl time.Duration) (string, error)
	ValidateToken(tokenString string) (*APIClaims, error)
}

type tokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
	}
}

func (m *tokenManager) GenerateAPIToken(caller string, scope []string, ttl time.Duration) (string, error) {
	claims := APIClaims{
		Caller: caller,
		Scope:  scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "payment-service",
			Audience:  jwt.ClaimStrings{"payment-api"},
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*APIClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &APIClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*APIClaims); ok && token.Valid {
		if claims.Caller == "" && claims.Subject != "" {
			claims.Caller = claims.Subject
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}
