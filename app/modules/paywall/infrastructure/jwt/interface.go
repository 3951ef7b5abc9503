package paywalljwt

import "time"

// Claims describe an unlocked entitlement.
type Claims struct {
	// Source is how premium was unlocked: redeem, purchase or restore.
	Source        string
	ProductID     string
	Platform      string
	TransactionID string
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

// Provider signs and validates entitlement tokens.
type Provider interface {
	GenerateToken(claims Claims, ttl time.Duration) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}
