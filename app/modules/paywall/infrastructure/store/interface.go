// Package paywallstore is the boundary to the platform in-app-purchase store.
package paywallstore

import (
	"context"
	"errors"
	"time"
)

// Platform is the mobile platform a product is sold on.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// Product SKUs sold by the app.
const (
	SKUPremiumIOS     = "gin_premium_ios"
	SKUPremiumAndroid = "gin_premium_android"
)

var (
	// ErrUnknownPlatform is returned for a platform without a premium SKU.
	ErrUnknownPlatform = errors.New("unknown platform")
	// ErrPurchaseCancelled is returned when the buyer backs out of the purchase sheet.
	ErrPurchaseCancelled = errors.New("purchase cancelled")
	// ErrUnknownProduct is returned when the store does not sell the requested SKU.
	ErrUnknownProduct = errors.New("unknown product")
)

// SKUFor returns the premium SKU of platform.
func SKUFor(p Platform) (string, error) {
	switch p {
	case PlatformIOS:
		return SKUPremiumIOS, nil
	case PlatformAndroid:
		return SKUPremiumAndroid, nil
	default:
		return "", ErrUnknownPlatform
	}
}

// Product is a store listing.
type Product struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

// Purchase is a completed store transaction. An empty Receipt means the
// store has not confirmed payment yet.
type Purchase struct {
	ProductID     string    `json:"productId"`
	TransactionID string    `json:"transactionId"`
	Receipt       string    `json:"receipt,omitempty"`
	PurchasedAt   time.Time `json:"purchasedAt"`
}

// Provider is implemented by each platform store.
type Provider interface {
	Products(ctx context.Context, skus []string) ([]Product, error)
	RequestPurchase(ctx context.Context, sku string) (*Purchase, error)
	// FinishTransaction acknowledges a purchase so the store does not refund it.
	FinishTransaction(ctx context.Context, purchase Purchase) error
	// Restore lists the purchases the current account already owns.
	Restore(ctx context.Context) ([]Purchase, error)
}
