package leaderboardservice

import (
	"fmt"

	leaderboarddb "github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard/infrastructure/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	StandingsSheet = "Standings"
	ResultsSheet   = "Results"
)

var (
	standingsHeader = []any{"Participant", "Games", "Wins", "Losses", "Win rate", "Points", "Last played"}
	resultsHeader   = []any{"Completed", "Game", "Kind", "Participant", "Total", "Winner", "Rounds", "Target"}
)

// BuildWorkbook writes standings and the raw results to an XLSX file.
func BuildWorkbook(standings []Standing, rows []leaderboarddb.GameResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", StandingsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(ResultsSheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := writeRow(f, StandingsSheet, 1, standingsHeader); err != nil {
		return nil, err
	}
	for i, st := range standings {
		row := []any{
			st.Participant,
			st.Games,
			st.Wins,
			st.Losses,
			fmt.Sprintf("%.0f%%", st.WinRate*100),
			st.Points,
			st.LastPlayed.Format("2006-01-02"),
		}
		if err := writeRow(f, StandingsSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	if err := writeRow(f, ResultsSheet, 1, resultsHeader); err != nil {
		return nil, err
	}
	for i, r := range rows {
		winner := ""
		if r.Winner {
			winner = "yes"
		}
		row := []any{
			r.CompletedAt.Format("2006-01-02 15:04"),
			r.GameID,
			r.Kind,
			r.ParticipantName,
			r.Total,
			winner,
			r.Rounds,
			r.TargetScore,
		}
		if err := writeRow(f, ResultsSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	for _, sheet := range []string{StandingsSheet, ResultsSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, "A", "D", 18); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	axis, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, axis, &cells)
}
