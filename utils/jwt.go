package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims identifies the service calling the RPC surface.
type Claims struct {
	Service string `json:"service"`
	jwt.RegisteredClaims
}

// GenerateToken issues an HS256 service token for the named caller.
func GenerateToken(secret, service string, duration time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is not configured")
	}
	now := time.Now()
	claims := Claims{
		Service: service,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  service,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if duration > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(duration))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a service token and returns its claims.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Service == "" {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
