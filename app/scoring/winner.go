package scoring

import (
	"fmt"
	"strings"

	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
)

// TieBreak decides a head-to-head game when both sides are at or past the
// target in the same evaluation.
type TieBreak string

const (
	// TieBreakEvaluationOrder checks the user before the opponent.
	TieBreakEvaluationOrder TieBreak = "evaluation_order"
	// TieBreakHigherTotal awards the game to the higher total; equal totals
	// fall back to evaluation order.
	TieBreakHigherTotal TieBreak = "higher_total"
)

// ParseTieBreak parses a policy name. Empty means TieBreakEvaluationOrder.
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(strings.ToLower(strings.TrimSpace(s))) {
	case "", TieBreakEvaluationOrder:
		return TieBreakEvaluationOrder, nil
	case TieBreakHigherTotal:
		return TieBreakHigherTotal, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTieBreak, s)
	}
}

// CalculateWinner returns the side whose total reached target, or SideNone.
// A target of zero or less never produces a winner.
func CalculateWinner(rounds []sharedtypes.Round, target int, policy TieBreak) sharedtypes.Side {
	if target <= 0 {
		return sharedtypes.SideNone
	}

	user, opponent := Totals(rounds)
	userReached := user >= target
	opponentReached := opponent >= target

	if userReached && opponentReached && policy == TieBreakHigherTotal && opponent > user {
		return sharedtypes.SideOpponent
	}
	if userReached {
		return sharedtypes.SideUser
	}
	if opponentReached {
		return sharedtypes.SideOpponent
	}
	return sharedtypes.SideNone
}

// MultiplayerWinner ends the game once any player reaches target; the
// player with the lowest total wins, ties going to the earlier seat.
// Returns "" while the game is still open or when target is not positive.
func MultiplayerWinner(players []sharedtypes.Player, rounds []sharedtypes.PlayerRound, target int) string {
	if target <= 0 || len(players) == 0 {
		return ""
	}

	totals := PlayerTotals(players, rounds)
	reached := false
	for _, p := range players {
		if totals[p.ID] >= target {
			reached = true
			break
		}
	}
	if !reached {
		return ""
	}
	return lowest(players, totals)
}

// Leader returns the player currently in front (lowest total), or "" when
// there are no players.
func Leader(players []sharedtypes.Player, rounds []sharedtypes.PlayerRound) string {
	if len(players) == 0 {
		return ""
	}
	return lowest(players, PlayerTotals(players, rounds))
}

func lowest(players []sharedtypes.Player, totals map[string]int) string {
	best := players[0].ID
	for _, p := range players[1:] {
		if totals[p.ID] < totals[best] {
			best = p.ID
		}
	}
	return best
}
