package parsers

import (
	"errors"

	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
)

var (
	// ErrUnsupportedFile is returned by the factory for unknown extensions.
	ErrUnsupportedFile = errors.New("unsupported file type (must be .csv or .xlsx)")
	// ErrEmptySheet is returned when a sheet has no header or no rounds.
	ErrEmptySheet = errors.New("scoresheet must contain a header row and at least one round")
	// ErrNoPlayerColumns is returned when the header names no players.
	ErrNoPlayerColumns = errors.New("scoresheet header names no players")
	// ErrUnknownBonus is returned for a bonus cell that names no known bonus.
	ErrUnknownBonus = errors.New("unknown bonus")
)

// Parser defines the interface for scoresheet parsers.
type Parser interface {
	// Parse reads raw file bytes. fileName is used in error messages only.
	Parse(fileData []byte, fileName string) (*Scoresheet, error)
}

// Scoresheet is a parsed import: one column per player, one row per round.
type Scoresheet struct {
	// Players are the player column headers in sheet order.
	Players []string
	Rounds  []RoundRow
}

// RoundRow is one round as written on the sheet. Scores are keyed by the
// player header and left as text for the caller to validate.
type RoundRow struct {
	Line        int
	Scores      map[string]string
	Bonus       sharedtypes.BonusType
	BonusPlayer string
}
