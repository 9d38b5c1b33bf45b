package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/habib-web-dev1/local-chef-client-sub000/internal/domain"
)

// TokenClaims are the identity claims carried by a provider ID token.
type TokenClaims struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec mints and verifies HS256 ID tokens for the local provider.
type TokenCodec struct {
	secret []byte
	issuer string
	expiry time.Duration
}

// NewTokenCodec creates a codec with the given secret, issuer, and token TTL.
func NewTokenCodec(secret, issuer string, expiry time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
	}
}

// Mint creates a signed ID token for the given identity.
func (c *TokenCodec) Mint(ident *domain.Identity) (string, error) {
	now := time.Now().UTC()
	claims := &TokenClaims{
		UID:         ident.UID,
		Email:       ident.Email,
		DisplayName: ident.DisplayName,
		PhotoURL:    ident.PhotoURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.expiry)),
			Issuer:    c.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign id token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates an ID token, returning its identity claims.
func (c *TokenCodec) Verify(raw string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
