package scoring

import (
	"fmt"
	"time"

	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
)

const (
	// ShootMoonPoints go to every other player when someone shoots the moon.
	ShootMoonPoints = 26
	// QueenOfSpadesPoints are added to the player who took the queen.
	QueenOfSpadesPoints = 13
)

// EffectiveBonusValues returns the game's bonus overrides, falling back to
// the settings values for any the game does not set.
func EffectiveBonusValues(game sharedtypes.Game, settings sharedtypes.Settings) sharedtypes.BonusValues {
	values := settings.BonusValues()
	if game.GinBonus != nil {
		values.Gin = *game.GinBonus
	}
	if game.BigGinBonus != nil {
		values.BigGin = *game.BigGinBonus
	}
	if game.UndercutBonus != nil {
		values.Undercut = *game.UndercutBonus
	}
	return values
}

// GinRoundScore adds the bonus for the round's bonus type to the base score.
func GinRoundScore(base int, bonus sharedtypes.BonusType, values sharedtypes.BonusValues) (int, error) {
	if base < 0 {
		return 0, ErrInvalidScore
	}
	switch bonus {
	case sharedtypes.BonusNone:
		return base, nil
	case sharedtypes.BonusGin:
		return base + values.Gin, nil
	case sharedtypes.BonusBigGin:
		return base + values.BigGin, nil
	case sharedtypes.BonusUndercut:
		return base + values.Undercut, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownBonus, bonus)
	}
}

// NewGinRound builds a head-to-head round: the winning side is credited with
// base plus bonus, the other side scores zero.
func NewGinRound(winner sharedtypes.Side, base int, bonus sharedtypes.BonusType, values sharedtypes.BonusValues, at time.Time) (sharedtypes.Round, error) {
	if !winner.Valid() {
		return sharedtypes.Round{}, ErrWinnerRequired
	}
	total, err := GinRoundScore(base, bonus, values)
	if err != nil {
		return sharedtypes.Round{}, err
	}

	round := sharedtypes.Round{Date: at, BonusType: bonus}
	if winner == sharedtypes.SideUser {
		round.User = total
	} else {
		round.Opponent = total
	}
	return round, nil
}

// ApplyShootMoon returns a copy of scores where shooter scores zero and every
// other player in scores receives ShootMoonPoints.
func ApplyShootMoon(scores map[string]int, shooter string) (map[string]int, error) {
	if shooter == "" {
		return nil, ErrBonusPlayerRequired
	}
	if _, ok := scores[shooter]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, shooter)
	}

	out := make(map[string]int, len(scores))
	for id := range scores {
		if id == shooter {
			out[id] = 0
			continue
		}
		out[id] = ShootMoonPoints
	}
	return out, nil
}

// ApplyQueenOfSpades returns a copy of scores with QueenOfSpadesPoints added
// to player's entered score.
func ApplyQueenOfSpades(scores map[string]int, player string) (map[string]int, error) {
	if player == "" {
		return nil, ErrBonusPlayerRequired
	}
	if _, ok := scores[player]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, player)
	}

	out := make(map[string]int, len(scores))
	for id, s := range scores {
		out[id] = s
	}
	out[player] += QueenOfSpadesPoints
	return out, nil
}

// ApplyMultiplayerBonus applies a round's single bonus. A round with no bonus
// returns an unchanged copy.
func ApplyMultiplayerBonus(scores map[string]int, bonus sharedtypes.BonusType, player string) (map[string]int, error) {
	switch bonus {
	case sharedtypes.BonusNone:
		out := make(map[string]int, len(scores))
		for id, s := range scores {
			out[id] = s
		}
		return out, nil
	case sharedtypes.BonusShootMoon:
		return ApplyShootMoon(scores, player)
	case sharedtypes.BonusQueenOfSpades:
		return ApplyQueenOfSpades(scores, player)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBonus, bonus)
	}
}

// ValidateRoundScores checks that scores holds exactly one non-negative
// entry per player.
func ValidateRoundScores(players []sharedtypes.Player, scores map[string]int) error {
	known := make(map[string]struct{}, len(players))
	for _, p := range players {
		known[p.ID] = struct{}{}
		s, ok := scores[p.ID]
		if !ok || s < 0 {
			return ErrInvalidScore
		}
	}
	for id := range scores {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
		}
	}
	return nil
}
