package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const audience = "wedding-portal"

// SessionClaims carries the guest identity persisted in the session cookie.
// The password never leaves the database.
type SessionClaims struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Side string `json:"side"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

func NewSessionToken(id, name, side, guestType, secret string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(ttl)
	claims := SessionClaims{
		ID:   id,
		Name: name,
		Side: side,
		Type: guestType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			Audience:  []string{audience},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func ParseSession(tokenString, secret string) (*SessionClaims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithAudience(audience), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims, ok := tok.Claims.(*SessionClaims); ok && tok.Valid {
		if claims.ID == "" {
			return nil, errors.New("session token has no guest id")
		}
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
