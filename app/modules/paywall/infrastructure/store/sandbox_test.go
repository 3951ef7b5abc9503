package paywallstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSKUFor(t *testing.T) {
	sku, err := SKUFor(PlatformIOS)
	require.NoError(t, err)
	assert.Equal(t, "gin_premium_ios", sku)

	sku, err = SKUFor(PlatformAndroid)
	require.NoError(t, err)
	assert.Equal(t, "gin_premium_android", sku)

	_, err = SKUFor("windows")
	assert.ErrorIs(t, err, ErrUnknownPlatform)
}

func TestSandbox_PurchaseFinishRestore(t *testing.T) {
	ctx := context.Background()
	s := NewSandbox()

	products, err := s.Products(ctx, []string{SKUPremiumIOS, "nope"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, SKUPremiumIOS, products[0].ID)

	p, err := s.RequestPurchase(ctx, SKUPremiumIOS)
	require.NoError(t, err)
	assert.NotEmpty(t, p.Receipt)
	assert.False(t, s.Finished(p.TransactionID))

	require.NoError(t, s.FinishTransaction(ctx, *p))
	assert.True(t, s.Finished(p.TransactionID))

	restored, err := s.Restore(ctx)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Equal(t, p.TransactionID, restored[0].TransactionID)

	_, err = s.RequestPurchase(ctx, "gin_premium_desktop")
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestSandbox_FailNextAppliesOnce(t *testing.T) {
	ctx := context.Background()
	s := NewSandbox()
	boom := errors.New("store unavailable")

	s.FailNext = boom
	_, err := s.RequestPurchase(ctx, SKUPremiumAndroid)
	assert.ErrorIs(t, err, boom)

	_, err = s.RequestPurchase(ctx, SKUPremiumAndroid)
	assert.NoError(t, err)
}
