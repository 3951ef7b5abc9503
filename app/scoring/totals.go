// Package scoring implements the card-game rules: totals, winners, bonuses
// and free-tier gating. Every function is pure.
package scoring

import (
	"fmt"
	"strconv"
	"strings"

	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
)

// Totals returns each side's cumulative score.
func Totals(rounds []sharedtypes.Round) (user, opponent int) {
	for _, r := range rounds {
		user += r.User
		opponent += r.Opponent
	}
	return user, opponent
}

// PlayerTotals returns every player's cumulative score. Players missing from
// a round contribute zero for it.
func PlayerTotals(players []sharedtypes.Player, rounds []sharedtypes.PlayerRound) map[string]int {
	totals := make(map[string]int, len(players))
	for _, p := range players {
		totals[p.ID] = 0
	}
	for _, r := range rounds {
		for _, p := range players {
			totals[p.ID] += r.Scores[p.ID]
		}
	}
	return totals
}

// ParseScore parses user-entered score text: surrounding whitespace is
// ignored, the rest must be a non-negative integer.
func ParseScore(text string) (int, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, ErrInvalidScore
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScore, text)
	}
	return n, nil
}

// ParseScores parses one score per player ID.
func ParseScores(texts map[string]string) (map[string]int, error) {
	scores := make(map[string]int, len(texts))
	for id, text := range texts {
		n, err := ParseScore(text)
		if err != nil {
			return nil, err
		}
		scores[id] = n
	}
	return scores, nil
}

// ReplaceAt returns a copy of items with index replaced by item.
func ReplaceAt[T any](items []T, index int, item T) ([]T, error) {
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("%w: %d", ErrRoundIndex, index)
	}
	out := make([]T, len(items))
	copy(out, items)
	out[index] = item
	return out, nil
}

// withoutIndex returns a copy of items minus index.
func withoutIndex[T any](items []T, index int) ([]T, error) {
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("%w: %d", ErrRoundIndex, index)
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...), nil
}
