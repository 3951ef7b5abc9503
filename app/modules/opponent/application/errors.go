package opponentservice

import "errors"

var (
	// ErrOpponentNotFound is returned when no opponent has the requested ID.
	ErrOpponentNotFound = errors.New("opponent not found")
	// ErrGameNotFound is returned when the opponent has no game with the requested ID.
	ErrGameNotFound = errors.New("game not found")
	// ErrNameRequired is returned when an opponent name is blank.
	ErrNameRequired = errors.New("opponent name is required")
	// ErrInvalidTarget is returned for a target score that is not positive.
	ErrInvalidTarget = errors.New("target score must be a positive number")
	// ErrInvalidBonusValue is returned for a negative per-game bonus override.
	ErrInvalidBonusValue = errors.New("bonus values cannot be negative")
	// ErrInvalidKnockValue is returned for a negative knock value.
	ErrInvalidKnockValue = errors.New("knock value cannot be negative")
)
