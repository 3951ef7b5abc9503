package leaderboardservice

import "errors"

var (
	ErrInvalidResult       = errors.New("game result has no game id or participants")
	ErrInvalidKind         = errors.New("kind must be gin or hearts")
	ErrParticipantRequired = errors.New("participant is required")
	ErrInvalidSince        = errors.New("could not understand the since filter")
	ErrNoGamesToRevoke     = errors.New("revocation lists no games")
)
