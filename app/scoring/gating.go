package scoring

import sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"

// DefaultFreeScoreCeiling is the highest cumulative score a free user may record.
const DefaultFreeScoreCeiling = 100

// CanAddScore reports whether pending may be appended. Paid users always
// may; free users may only while neither side's projected total exceeds
// ceiling. A ceiling of zero or less disables the check.
func CanAddScore(rounds []sharedtypes.Round, pending sharedtypes.Round, hasPaid bool, ceiling int) bool {
	if hasPaid || ceiling <= 0 {
		return true
	}
	user, opponent := Totals(rounds)
	return user+pending.User <= ceiling && opponent+pending.Opponent <= ceiling
}

// CanReplaceRound applies CanAddScore to an edit, leaving the replaced
// round out of the projection.
func CanReplaceRound(rounds []sharedtypes.Round, index int, pending sharedtypes.Round, hasPaid bool, ceiling int) (bool, error) {
	rest, err := withoutIndex(rounds, index)
	if err != nil {
		return false, err
	}
	return CanAddScore(rest, pending, hasPaid, ceiling), nil
}
