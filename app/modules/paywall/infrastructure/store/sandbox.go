package paywallstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sandbox is an in-memory store that sells the premium SKUs. It stands in
// for the platform stores in development and tests.
type Sandbox struct {
	mu       sync.Mutex
	products map[string]Product
	owned    map[string]Purchase
	finished map[string]bool
	clock    func() time.Time

	// FailNext, when set, is returned by the next store call.
	FailNext error
}

// NewSandbox returns a sandbox selling both premium SKUs.
func NewSandbox() *Sandbox {
	products := map[string]Product{}
	for _, sku := range []string{SKUPremiumIOS, SKUPremiumAndroid} {
		products[sku] = Product{
			ID:          sku,
			Title:       "Premium",
			Description: "Unlimited opponents, games and scores",
			Price:       "$4.99",
		}
	}
	return &Sandbox{
		products: products,
		owned:    map[string]Purchase{},
		finished: map[string]bool{},
		clock:    time.Now,
	}
}

func (s *Sandbox) Products(_ context.Context, skus []string) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Product, 0, len(skus))
	for _, sku := range skus {
		if p, ok := s.products[sku]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Sandbox) RequestPurchase(_ context.Context, sku string) (*Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	if _, ok := s.products[sku]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, sku)
	}

	txn := uuid.NewString()
	p := Purchase{
		ProductID:     sku,
		TransactionID: txn,
		Receipt:       "sandbox-" + txn,
		PurchasedAt:   s.clock(),
	}
	s.owned[sku] = p
	return &p, nil
}

func (s *Sandbox) FinishTransaction(_ context.Context, p Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}
	s.finished[p.TransactionID] = true
	return nil
}

func (s *Sandbox) Restore(_ context.Context) ([]Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	out := make([]Purchase, 0, len(s.owned))
	for _, p := range s.owned {
		out = append(out, p)
	}
	return out, nil
}

// Finished reports whether the transaction was acknowledged.
func (s *Sandbox) Finished(transactionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished[transactionID]
}

// Grant records an owned purchase without going through RequestPurchase,
// as if it was bought on another device.
func (s *Sandbox) Grant(sku string) Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn := uuid.NewString()
	p := Purchase{ProductID: sku, TransactionID: txn, Receipt: "sandbox-" + txn, PurchasedAt: s.clock()}
	s.owned[sku] = p
	return p
}

func (s *Sandbox) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

var _ Provider = (*Sandbox)(nil)
