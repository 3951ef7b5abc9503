package main

import (
	"fmt"
	"strings"

	"github.com/Black-And-White-Club/card-scorekeeper/app/scoring"
	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
	"github.com/urfave/cli/v2"
)

func winnerCommand() *cli.Command {
	return &cli.Command{
		Name:      "winner",
		Usage:     "total head-to-head rounds and report the winner",
		ArgsUsage: "<user,opponent>...",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "target", Value: 100, Usage: "score that ends the game"},
			&cli.StringFlag{Name: "tie-break", Value: string(scoring.TieBreakEvaluationOrder), Usage: "policy when both sides cross the target in one round"},
		},
		Action: func(c *cli.Context) error {
			policy, err := scoring.ParseTieBreak(c.String("tie-break"))
			if err != nil {
				return err
			}
			rounds, err := parseRounds(c.Args().Slice())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, describeWinner(rounds, c.Int("target"), policy))
			return err
		},
	}
}

// parseRounds reads "user,opponent" pairs using the same score rules as
// round entry.
func parseRounds(args []string) ([]sharedtypes.Round, error) {
	rounds := make([]sharedtypes.Round, 0, len(args))
	for i, arg := range args {
		user, opponent, ok := strings.Cut(arg, ",")
		if !ok {
			return nil, fmt.Errorf("round %d: want user,opponent, got %q", i+1, arg)
		}
		u, err := scoring.ParseScore(user)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i+1, err)
		}
		o, err := scoring.ParseScore(opponent)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i+1, err)
		}
		rounds = append(rounds, sharedtypes.Round{User: u, Opponent: o})
	}
	return rounds, nil
}

func describeWinner(rounds []sharedtypes.Round, target int, policy scoring.TieBreak) string {
	user, opponent := scoring.Totals(rounds)
	winner := scoring.CalculateWinner(rounds, target, policy)
	if winner == sharedtypes.SideNone {
		return fmt.Sprintf("user %d, opponent %d: no winner yet (target %d)", user, opponent, target)
	}
	return fmt.Sprintf("user %d, opponent %d: %s wins", user, opponent, winner)
}
