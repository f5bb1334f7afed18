package services

import (
	"errors"
	"fmt"
	"time"

	"nganya/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer signs and checks HS256 login tokens.
type TokenIssuer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (t TokenIssuer) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t TokenIssuer) Issue(role domain.Role, subject string) (string, error) {
	if len(t.Secret) == 0 {
		return "", errors.New("token secret not configured")
	}
	ttl := t.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := t.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
}

func (t TokenIssuer) Parse(raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.Secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return Claims{}, err
	}
	if !token.Valid || !claims.Role.Valid() || claims.Subject == "" {
		return Claims{}, errors.New("invalid token")
	}
	return claims, nil
}
