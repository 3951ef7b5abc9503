// Package sharedtypes holds the persisted data model shared by the modules.
// JSON field names match the blobs the mobile app stores.
package sharedtypes

import "time"

// Side identifies a participant of a head-to-head game.
type Side string

const (
	SideNone     Side = ""
	SideUser     Side = "user"
	SideOpponent Side = "opponent"
)

// Valid reports whether s names a participant.
func (s Side) Valid() bool {
	return s == SideUser || s == SideOpponent
}

// BonusType tags a round with the special scoring event applied to it.
type BonusType string

const (
	BonusNone          BonusType = ""
	BonusGin           BonusType = "gin"
	BonusBigGin        BonusType = "bigGin"
	BonusUndercut      BonusType = "undercut"
	BonusQueenOfSpades BonusType = "queenOfSpades"
	BonusShootMoon     BonusType = "shootMoon"
)

// GameKind distinguishes head-to-head games from multiplayer games.
type GameKind string

const (
	KindGin    GameKind = "gin"
	KindHearts GameKind = "hearts"
)

// GameStatus is the lifecycle state of a multiplayer game.
type GameStatus string

const (
	StatusInProgress GameStatus = "in_progress"
	StatusCompleted  GameStatus = "completed"
)

// Round is one scored hand of a head-to-head game.
type Round struct {
	User      int       `json:"user"`
	Opponent  int       `json:"opponent"`
	Date      time.Time `json:"date"`
	BonusType BonusType `json:"bonusType,omitempty"`
}

// Game is a head-to-head game against one opponent. The bonus fields
// override the settings values for this game only.
type Game struct {
	ID            string     `json:"id"`
	Date          time.Time  `json:"date"`
	ScoreHistory  []Round    `json:"scoreHistory"`
	Winner        Side       `json:"winner,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	TargetScore   int        `json:"targetScore,omitempty"`
	KnockValue    *int       `json:"knockValue,omitempty"`
	GinBonus      *int       `json:"ginBonus,omitempty"`
	BigGinBonus   *int       `json:"bigGinBonus,omitempty"`
	UndercutBonus *int       `json:"undercutBonus,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

// Opponent owns the head-to-head games played against them.
type Opponent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Games []Game `json:"games"`
}

// Player is a seat in a multiplayer game.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color,omitempty"`
	IsUser bool   `json:"isUser"`
}

// PlayerRound is one hand of a multiplayer game, scored per player ID.
type PlayerRound struct {
	Scores        map[string]int `json:"scores"`
	Date          time.Time      `json:"date"`
	BonusType     BonusType      `json:"bonusType,omitempty"`
	BonusPlayerID string         `json:"bonusPlayerId,omitempty"`
}

// MultiplayerGame is a 3 to 5 player game. Winner holds a player ID.
type MultiplayerGame struct {
	ID          string        `json:"id"`
	Date        time.Time     `json:"date"`
	Players     []Player      `json:"players"`
	Rounds      []PlayerRound `json:"rounds"`
	TargetScore int           `json:"targetScore"`
	Winner      string        `json:"winner,omitempty"`
	Status      GameStatus    `json:"status"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
}

// BonusValues are the points added for each head-to-head bonus.
type BonusValues struct {
	Gin      int `json:"gin"`
	BigGin   int `json:"bigGin"`
	Undercut int `json:"undercut"`
}

// Settings are the user preferences.
type Settings struct {
	UserName      string `json:"userName"`
	GinValue      int    `json:"ginValue"`
	BigGinValue   int    `json:"bigGinValue"`
	UndercutValue int    `json:"undercutValue"`
	TargetScore   int    `json:"targetScore"`
}

const (
	DefaultUserName      = "You"
	DefaultGinValue      = 25
	DefaultBigGinValue   = 31
	DefaultUndercutValue = 25
	DefaultTargetScore   = 100
)

// DefaultSettings returns the values used before the user changes anything.
func DefaultSettings() Settings {
	return Settings{
		UserName:      DefaultUserName,
		GinValue:      DefaultGinValue,
		BigGinValue:   DefaultBigGinValue,
		UndercutValue: DefaultUndercutValue,
		TargetScore:   DefaultTargetScore,
	}
}

// BonusValues returns the settings' bonus points.
func (s Settings) BonusValues() BonusValues {
	return BonusValues{Gin: s.GinValue, BigGin: s.BigGinValue, Undercut: s.UndercutValue}
}
