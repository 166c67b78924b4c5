package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/tasklist-go/config"
)

// ScopeAuth is the scope tag carried by session tokens. It is the only
// scope currently issued.
const ScopeAuth = "auth"

// ErrInvalidToken is returned by Verify for every failure mode: bad
// signature, malformed structure, unexpected algorithm, missing claims.
// Callers cannot tell which check failed.
var ErrInvalidToken = errors.New("invalid token")

// TokenClaims is the payload of a session token.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Access string `json:"access"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies session tokens with a server-held secret.
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer creates a TokenIssuer from the auth configuration.
func NewTokenIssuer(cfg *config.AuthConfig) *TokenIssuer {
	return &TokenIssuer{secret: []byte(cfg.TokenSecret)}
}

// Issue signs a token binding userID to the auth scope. Tokens carry no
// expiry; they stay valid until removed from the user's token list.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	claims := &TokenClaims{
		UserID: userID,
		Access: ScopeAuth,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature of tokenString and returns its claims. Any
// failure reports ErrInvalidToken.
func (t *TokenIssuer) Verify(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
