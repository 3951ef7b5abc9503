package gameservice

import (
	"context"
	"time"

	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
	"github.com/uptrace/bun"
)

const (
	MinPlayers = 3
	MaxPlayers = 5
)

// Service defines the multiplayer game operations.
type Service interface {
	CreateGame(ctx context.Context, req CreateGameRequest) (*GameView, error)
	// ListGames returns games newest first, optionally only those started at
	// or after since (an absolute date or an expression like "last friday").
	ListGames(ctx context.Context, since string) ([]GameSummary, error)
	GetGame(ctx context.Context, id string) (*GameView, error)
	AddRound(ctx context.Context, id string, in RoundInput) (*GameView, error)
	EditRound(ctx context.Context, id string, index int, in RoundInput) (*GameView, error)
	// ImportRounds appends every round of a CSV or XLSX scoresheet. Nothing
	// is applied unless every row is valid.
	ImportRounds(ctx context.Context, id, fileName string, data []byte) (*ImportResult, error)
	DeleteGame(ctx context.Context, id string) error
}

// SettingsReader supplies the user settings inside the caller's transaction.
type SettingsReader interface {
	Get(ctx context.Context, db bun.IDB) (sharedtypes.Settings, error)
}

// PlayerInput is a seat at game creation. The first seat is the user.
type PlayerInput struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// CreateGameRequest starts a multiplayer game. A nil target uses the settings.
type CreateGameRequest struct {
	Players     []PlayerInput `json:"players"`
	TargetScore *int          `json:"targetScore,omitempty"`
}

// RoundInput is one hand as entered: score text per player ID and at most
// one bonus.
type RoundInput struct {
	Scores        map[string]string     `json:"scores"`
	Bonus         sharedtypes.BonusType `json:"bonusType,omitempty"`
	BonusPlayerID string                `json:"bonusPlayerId,omitempty"`
}

// GameView is a game with per-player totals and the current leader.
type GameView struct {
	sharedtypes.MultiplayerGame
	Totals map[string]int `json:"totals"`
	Leader string         `json:"leader,omitempty"`
}

// GameSummary is one row of the game list.
type GameSummary struct {
	ID          string                 `json:"id"`
	Date        time.Time              `json:"date"`
	Players     []string               `json:"players"`
	Status      sharedtypes.GameStatus `json:"status"`
	Winner      string                 `json:"winner,omitempty"`
	WinnerName  string                 `json:"winnerName,omitempty"`
	Rounds      int                    `json:"rounds"`
	TargetScore int                    `json:"targetScore"`
}

// ImportResult reports an applied scoresheet.
type ImportResult struct {
	Imported int       `json:"imported"`
	Game     *GameView `json:"game"`
}
