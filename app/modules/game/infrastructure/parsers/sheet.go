package parsers

import (
	"fmt"
	"strings"

	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
)

type columnKind int

const (
	columnPlayer columnKind = iota
	columnIgnored
	columnBonus
	columnBonusPlayer
)

// normalize lowercases and strips separators so "Bonus Player",
// "bonus_player" and "BonusPlayer" compare equal.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

func classifyColumn(header string) columnKind {
	switch normalize(header) {
	case "", "round", "#", "hand", "date":
		return columnIgnored
	case "bonus", "bonustype":
		return columnBonus
	case "bonusplayer", "bonusfor":
		return columnBonusPlayer
	default:
		return columnPlayer
	}
}

// parseBonus accepts the stored names and a few spellings people type.
func parseBonus(cell string) (sharedtypes.BonusType, error) {
	switch normalize(cell) {
	case "", "none":
		return sharedtypes.BonusNone, nil
	case "shootmoon", "shootthemoon", "moon":
		return sharedtypes.BonusShootMoon, nil
	case "queenofspades", "queen", "qs":
		return sharedtypes.BonusQueenOfSpades, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBonus, cell)
	}
}

// buildScoresheet turns raw rows into a Scoresheet. The first row is the
// header; blank rows are skipped. Line numbers are 1-based sheet rows.
func buildScoresheet(rows [][]string, fileName string) (*Scoresheet, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: %w", fileName, ErrEmptySheet)
	}

	header := rows[0]
	kinds := make([]columnKind, len(header))
	sheet := &Scoresheet{}
	for i, col := range header {
		kinds[i] = classifyColumn(col)
		if kinds[i] == columnPlayer {
			sheet.Players = append(sheet.Players, strings.TrimSpace(col))
		}
	}
	if len(sheet.Players) == 0 {
		return nil, fmt.Errorf("%s: %w", fileName, ErrNoPlayerColumns)
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}

		rr := RoundRow{Line: i + 1, Scores: make(map[string]string, len(sheet.Players))}
		for j, kind := range kinds {
			cell := ""
			if j < len(row) {
				cell = strings.TrimSpace(row[j])
			}
			switch kind {
			case columnPlayer:
				rr.Scores[strings.TrimSpace(header[j])] = cell
			case columnBonus:
				bonus, err := parseBonus(cell)
				if err != nil {
					return nil, fmt.Errorf("%s line %d: %w", fileName, rr.Line, err)
				}
				rr.Bonus = bonus
			case columnBonusPlayer:
				rr.BonusPlayer = cell
			}
		}
		sheet.Rounds = append(sheet.Rounds, rr)
	}

	if len(sheet.Rounds) == 0 {
		return nil, fmt.Errorf("%s: %w", fileName, ErrEmptySheet)
	}
	return sheet, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
