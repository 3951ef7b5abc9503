package paywalldb

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// ErrNotFound is returned when no entitlement has been stored.
var ErrNotFound = errors.New("entitlement not found")

// Entitlement records how premium was unlocked.
type Entitlement struct {
	Source        string    `json:"source"`
	ProductID     string    `json:"productId,omitempty"`
	Platform      string    `json:"platform,omitempty"`
	TransactionID string    `json:"transactionId,omitempty"`
	Token         string    `json:"token,omitempty"`
	GrantedAt     time.Time `json:"grantedAt"`
}

// Repository persists the paid flag and the entitlement record.
type Repository interface {
	HasPaid(ctx context.Context, db bun.IDB) (bool, error)
	SetHasPaid(ctx context.Context, db bun.IDB, paid bool) error
	GetEntitlement(ctx context.Context, db bun.IDB) (*Entitlement, error)
	SaveEntitlement(ctx context.Context, db bun.IDB, e *Entitlement) error
}
