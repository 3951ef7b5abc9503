package gameservice

import "errors"

var (
	// ErrGameNotFound is returned when no game has the requested ID.
	ErrGameNotFound = errors.New("game not found")
	// ErrInvalidPlayers is returned for fewer than MinPlayers or more than MaxPlayers.
	ErrInvalidPlayers = errors.New("a game needs 3 to 5 players")
	// ErrPlayerNameRequired is returned when a player other than the user has no name.
	ErrPlayerNameRequired = errors.New("all players must have names")
	// ErrDuplicatePlayer is returned when two players share a name.
	ErrDuplicatePlayer = errors.New("player names must be unique")
	// ErrInvalidTarget is returned for a target score that is not positive.
	ErrInvalidTarget = errors.New("please enter a valid target score")
	// ErrInvalidSince is returned when a since filter cannot be read as a date.
	ErrInvalidSince = errors.New("unrecognized since filter")
	// ErrInvalidImport wraps every reason a scoresheet is rejected.
	ErrInvalidImport = errors.New("invalid scoresheet")
)
