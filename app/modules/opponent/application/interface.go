package opponentservice

import (
	"context"
	"time"

	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
	"github.com/uptrace/bun"
)

// Service defines the head-to-head operations.
type Service interface {
	ListOpponents(ctx context.Context) ([]sharedtypes.Opponent, error)
	GetOpponent(ctx context.Context, id string) (*sharedtypes.Opponent, error)
	CreateOpponent(ctx context.Context, req OpponentRequest) (*sharedtypes.Opponent, error)
	UpdateOpponent(ctx context.Context, id string, req OpponentRequest) (*sharedtypes.Opponent, error)
	DeleteOpponent(ctx context.Context, id string) error
	OpponentStats(ctx context.Context, id string) (*Stats, error)

	CreateGame(ctx context.Context, opponentID string, req CreateGameRequest) (*GameView, error)
	GetGame(ctx context.Context, opponentID, gameID string) (*GameView, error)
	DeleteGame(ctx context.Context, opponentID, gameID string) error
	AddRound(ctx context.Context, opponentID, gameID string, in RoundInput) (*GameView, error)
	EditRound(ctx context.Context, opponentID, gameID string, index int, in RoundInput) (*GameView, error)
	// SetKnockValue records the knock value; nil clears it.
	SetKnockValue(ctx context.Context, opponentID, gameID string, value *int) (*GameView, error)
}

// SettingsReader supplies the user settings inside the caller's transaction.
type SettingsReader interface {
	Get(ctx context.Context, db bun.IDB) (sharedtypes.Settings, error)
}

// OpponentRequest creates or renames an opponent. An empty color keeps the
// current one, or the default for a new opponent.
type OpponentRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// CreateGameRequest starts a game. Nil fields fall back to the settings.
type CreateGameRequest struct {
	TargetScore   *int   `json:"targetScore,omitempty"`
	Notes         string `json:"notes,omitempty"`
	GinBonus      *int   `json:"ginBonus,omitempty"`
	BigGinBonus   *int   `json:"bigGinBonus,omitempty"`
	UndercutBonus *int   `json:"undercutBonus,omitempty"`
}

// RoundInput is one hand as entered: who won it, the base score text and
// an optional bonus.
type RoundInput struct {
	Winner sharedtypes.Side      `json:"winner"`
	Score  string                `json:"score"`
	Bonus  sharedtypes.BonusType `json:"bonusType,omitempty"`
}

// GameView is a game with its running totals and the bonus values in effect.
type GameView struct {
	OpponentID string `json:"opponentId"`
	sharedtypes.Game
	UserTotal     int                     `json:"userTotal"`
	OpponentTotal int                     `json:"opponentTotal"`
	BonusValues   sharedtypes.BonusValues `json:"bonusValues"`
}

// GameSummary is one row of an opponent's game list.
type GameSummary struct {
	ID            string           `json:"id"`
	Date          time.Time        `json:"date"`
	Winner        sharedtypes.Side `json:"winner,omitempty"`
	InProgress    bool             `json:"inProgress"`
	Rounds        int              `json:"rounds"`
	UserTotal     int              `json:"userTotal"`
	OpponentTotal int              `json:"opponentTotal"`
	LastPlayed    *time.Time       `json:"lastPlayed,omitempty"`
}

// Stats aggregates every game against one opponent. Games are newest first.
type Stats struct {
	OpponentID     string        `json:"opponentId"`
	Name           string        `json:"name"`
	UserPoints     int           `json:"userPoints"`
	OpponentPoints int           `json:"opponentPoints"`
	UserWins       int           `json:"userWins"`
	OpponentWins   int           `json:"opponentWins"`
	GamesPlayed    int           `json:"gamesPlayed"`
	LastPlayed     *time.Time    `json:"lastPlayed,omitempty"`
	Games          []GameSummary `json:"games"`
}
