package scoring

import "errors"

var (
	// ErrInvalidScore is returned for non-numeric, negative or missing scores.
	ErrInvalidScore = errors.New("please enter valid scores for all players")
	// ErrUnknownPlayer is returned when a bonus or score names a player outside the round.
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrBonusPlayerRequired is returned when a player bonus has no player selected.
	ErrBonusPlayerRequired = errors.New("select the player the bonus applies to")
	// ErrUnknownBonus is returned for a bonus type that does not apply to the game.
	ErrUnknownBonus = errors.New("unknown bonus type")
	// ErrWinnerRequired is returned when a head-to-head round has no winning side.
	ErrWinnerRequired = errors.New("select who won the round")
	// ErrRoundIndex is returned when an edit targets a round that does not exist.
	ErrRoundIndex = errors.New("round index out of range")
	// ErrUnknownTieBreak is returned by ParseTieBreak.
	ErrUnknownTieBreak = errors.New("unknown tie-break policy")
)
