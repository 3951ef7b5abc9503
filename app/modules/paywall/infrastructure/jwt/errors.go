package paywalljwt

import "errors"

var (
	// ErrInvalidToken is returned when the token is malformed or invalid.
	ErrInvalidToken = errors.New("invalid entitlement token")

	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("entitlement token has expired")

	// ErrInvalidSignature is returned when the token signature is invalid.
	ErrInvalidSignature = errors.New("invalid entitlement token signature")

	// ErrMissingSecret is returned when tokens are requested without a signing secret.
	ErrMissingSecret = errors.New("entitlement signing secret is not configured")
)
