package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	gameservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/game/application"
	leaderboardservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard/application"
	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
	"github.com/urfave/cli/v2"
)

func gamesCommand() *cli.Command {
	return &cli.Command{
		Name:  "games",
		Usage: "list multiplayer games, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "since", Usage: `only games started since, e.g. "2026-05-01" or "last week"`},
		},
		Action: func(c *cli.Context) error {
			return withServices(c, func(ctx context.Context, svc services) error {
				games, err := svc.games.ListGames(ctx, c.String("since"))
				if err != nil {
					return err
				}
				return writeGames(c.App.Writer, games)
			})
		},
	}
}

func standingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "standings",
		Usage: "print the leaderboard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Usage: "gin or hearts; empty for both"},
		},
		Action: func(c *cli.Context) error {
			return withServices(c, func(ctx context.Context, svc services) error {
				standings, err := svc.leaderboard.Standings(ctx, sharedtypes.GameKind(c.String("kind")))
				if err != nil {
					return err
				}
				return writeStandings(c.App.Writer, standings)
			})
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write standings and results to an XLSX workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Value: "leaderboard.xlsx", Usage: "output file"},
		},
		Action: func(c *cli.Context) error {
			return withServices(c, func(ctx context.Context, svc services) error {
				data, err := svc.leaderboard.ExportXLSX(ctx)
				if err != nil {
					return err
				}
				out := c.String("out")
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
				_, err = fmt.Fprintf(c.App.Writer, "wrote %s (%d bytes)\n", out, len(data))
				return err
			})
		},
	}
}

func writeGames(w io.Writer, games []gameservice.GameSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tPLAYERS\tROUNDS\tTARGET\tSTATUS\tWINNER")
	for _, g := range games {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			g.Date.Format("2006-01-02"),
			strings.Join(g.Players, ", "),
			g.Rounds,
			g.TargetScore,
			g.Status,
			g.WinnerName,
		)
	}
	return tw.Flush()
}

func writeStandings(w io.Writer, standings []leaderboardservice.Standing) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PARTICIPANT\tGAMES\tWINS\tLOSSES\tWIN RATE\tPOINTS")
	for _, st := range standings {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.0f%%\t%d\n",
			st.Participant, st.Games, st.Wins, st.Losses, st.WinRate*100, st.Points)
	}
	return tw.Flush()
}
