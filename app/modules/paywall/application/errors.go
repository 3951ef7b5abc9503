package paywallservice

import "errors"

var (
	// ErrPaywallRequired is returned when a free user hits a free-tier limit.
	ErrPaywallRequired = errors.New("upgrade required")
	// ErrInvalidCode is returned for a wrong redeem code.
	ErrInvalidCode = errors.New("invalid code, please try again")
	// ErrPurchaseFailed is returned when the store rejects or aborts a purchase.
	ErrPurchaseFailed = errors.New("purchase failed")
	// ErrRestoreFailed is returned when the store cannot list previous purchases.
	ErrRestoreFailed = errors.New("failed to restore purchases, please try again later")
	// ErrNothingToRestore is returned when the account owns no premium purchase.
	ErrNothingToRestore = errors.New("no previous purchases were found")
	// ErrInvalidEntitlement is returned for a token that does not verify.
	ErrInvalidEntitlement = errors.New("invalid entitlement")
)
