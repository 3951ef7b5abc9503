package gameservice

import (
	"fmt"
	"strings"

	"github.com/Black-And-White-Club/card-scorekeeper/app/modules/game/infrastructure/parsers"
	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
)

// ImportRow is one scoresheet round keyed by player ID.
type ImportRow struct {
	Line          int
	Scores        map[string]string
	Bonus         sharedtypes.BonusType
	BonusPlayerID string
}

// Importer reads a scoresheet file against a game's players.
type Importer interface {
	Read(fileName string, data []byte, players []sharedtypes.Player) ([]ImportRow, error)
}

// ScoresheetImporter matches sheet columns to players by name, ignoring
// case and surrounding whitespace. Every player needs exactly one column.
type ScoresheetImporter struct {
	factory *parsers.Factory
}

func NewScoresheetImporter(factory *parsers.Factory) *ScoresheetImporter {
	if factory == nil {
		factory = parsers.NewFactory()
	}
	return &ScoresheetImporter{factory: factory}
}

func (i *ScoresheetImporter) Read(fileName string, data []byte, players []sharedtypes.Player) ([]ImportRow, error) {
	parser, err := i.factory.GetParser(fileName)
	if err != nil {
		return nil, err
	}
	sheet, err := parser.Parse(data, fileName)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]string, len(players))
	for _, p := range players {
		byName[strings.ToLower(strings.TrimSpace(p.Name))] = p.ID
	}

	columns := make(map[string]string, len(sheet.Players))
	for _, header := range sheet.Players {
		id, ok := byName[strings.ToLower(header)]
		if !ok {
			return nil, fmt.Errorf("column %q matches no player", header)
		}
		for _, taken := range columns {
			if taken == id {
				return nil, fmt.Errorf("player %q has more than one column", header)
			}
		}
		columns[header] = id
	}
	if len(columns) != len(players) {
		for _, p := range players {
			if !hasValue(columns, p.ID) {
				return nil, fmt.Errorf("no column for player %q", p.Name)
			}
		}
	}

	rows := make([]ImportRow, 0, len(sheet.Rounds))
	for _, r := range sheet.Rounds {
		row := ImportRow{Line: r.Line, Scores: make(map[string]string, len(r.Scores)), Bonus: r.Bonus}
		for header, text := range r.Scores {
			row.Scores[columns[header]] = text
		}
		if r.BonusPlayer != "" {
			id, ok := byName[strings.ToLower(strings.TrimSpace(r.BonusPlayer))]
			if !ok {
				return nil, fmt.Errorf("line %d: bonus player %q matches no player", r.Line, r.BonusPlayer)
			}
			row.BonusPlayerID = id
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func hasValue(m map[string]string, v string) bool {
	for _, x := range m {
		if x == v {
			return true
		}
	}
	return false
}
