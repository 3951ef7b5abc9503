package paywalljwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "card-scorekeeper"

type entitlementClaims struct {
	jwt.RegisteredClaims
	Source        string `json:"src"`
	ProductID     string `json:"product_id,omitempty"`
	Platform      string `json:"platform,omitempty"`
	TransactionID string `json:"txn,omitempty"`
}

type provider struct {
	secret []byte
}

// NewProvider creates an HS256 provider.
func NewProvider(secret string) Provider {
	return &provider{secret: []byte(secret)}
}

func (p *provider) GenerateToken(c Claims, ttl time.Duration) (string, error) {
	if len(p.secret) == 0 {
		return "", ErrMissingSecret
	}

	now := time.Now()
	claims := &entitlementClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    issuer,
			Subject:   "premium",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Source:        c.Source,
		ProductID:     c.ProductID,
		Platform:      c.Platform,
		TransactionID: c.TransactionID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (p *provider) ValidateToken(tokenString string) (*Claims, error) {
	if len(p.secret) == 0 {
		return nil, ErrMissingSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &entitlementClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return p.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*entitlementClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	out := &Claims{
		Source:        claims.Source,
		ProductID:     claims.ProductID,
		Platform:      claims.Platform,
		TransactionID: claims.TransactionID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
