// Package auth issues and checks the bearer tokens that guard catalog writes.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleEditor = "editor"
	RoleViewer = "viewer"

	issuer = "herocatalog"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWeakSecret   = errors.New("jwt secret must be at least 32 bytes")
)

const minSecretLen = 32

type TokenMaker struct {
	secret []byte
	issuer string
}

func NewTokenMaker(secret string) (*TokenMaker, error) {
	if len(secret) < minSecretLen {
		return nil, ErrWeakSecret
	}
	return &TokenMaker{
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (t *TokenMaker) New(subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenMaker) Parse(tokenStr string) (Claims, error) {
	var c Claims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer))
	if err != nil || token == nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	return c, nil
}
