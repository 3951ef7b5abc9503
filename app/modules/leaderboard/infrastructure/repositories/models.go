package leaderboarddb

import (
	"time"

	"github.com/uptrace/bun"
)

// GameResult is one participant's final standing in a finished game.
type GameResult struct {
	bun.BaseModel `bun:"table:game_results,alias:gr"`

	ID              int64     `bun:"id,pk,autoincrement"`
	GameID          string    `bun:"game_id,notnull,unique:game_participant"`
	ParticipantName string    `bun:"participant_name,notnull,unique:game_participant"`
	Kind            string    `bun:"kind,notnull"`
	OpponentID      string    `bun:"opponent_id,nullzero"`
	IsUser          bool      `bun:"is_user,notnull,default:false"`
	Total           int       `bun:"total,notnull"`
	Winner          bool      `bun:"winner,notnull,default:false"`
	Rounds          int       `bun:"rounds,notnull"`
	TargetScore     int       `bun:"target_score,notnull"`
	CompletedAt     time.Time `bun:"completed_at,notnull"`
	RecordedAt      time.Time `bun:"recorded_at,nullzero,notnull,default:current_timestamp"`
}

// ResultFilter narrows ListResults. Zero fields match everything.
type ResultFilter struct {
	Participant string
	Kind        string
	Since       time.Time
}
