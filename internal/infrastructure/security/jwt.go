// Package security provides JWT token utilities
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const sessionTokenType = "session"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// SessionClaims are the fields carried by a session token.
type SessionClaims struct {
	Subject   string
	SessionID string
	ExpiresAt time.Time
}

// GenerateSessionToken signs an HS256 token for a stored session row.
func GenerateSessionToken(claims SessionClaims, jwtSecret string) (string, error) {
	if jwtSecret == "" {
		return "", errors.New("empty jwt secret")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  claims.Subject,
		"sid":  claims.SessionID,
		"type": sessionTokenType,
		"iat":  time.Now().UTC().Unix(),
		"exp":  claims.ExpiresAt.UTC().Unix(),
	})
	signed, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ValidateSessionToken checks signature, algorithm, expiry and token type.
func ValidateSessionToken(tokenString, jwtSecret string) (*SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		var vErr *jwt.ValidationError
		if errors.As(err, &vErr) && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims["type"] != sessionTokenType {
		return nil, fmt.Errorf("%w: wrong token type", ErrInvalidToken)
	}

	sub, _ := claims["sub"].(string)
	sid, _ := claims["sid"].(string)
	exp, ok := claims["exp"].(float64)
	if sub == "" || sid == "" || !ok {
		return nil, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}

	return &SessionClaims{
		Subject:   sub,
		SessionID: sid,
		ExpiresAt: time.Unix(int64(exp), 0).UTC(),
	}, nil
}
