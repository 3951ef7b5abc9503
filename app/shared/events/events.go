// Package scoreevents defines the topics and payloads exchanged on the event bus.
package scoreevents

import (
	"time"

	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
)

const (
	// GameCompletedV1 is published when a game gains a winner.
	GameCompletedV1 = "scorekeeper.game.completed.v1"
	// GameResultsRevokedV1 is published when finished games are deleted or an
	// edit takes their winner away.
	GameResultsRevokedV1 = "scorekeeper.game.results_revoked.v1"
)

// ParticipantResultV1 is one participant's final standing in a game.
type ParticipantResultV1 struct {
	Name   string `json:"name"`
	IsUser bool   `json:"is_user"`
	Total  int    `json:"total"`
	Winner bool   `json:"winner"`
}

// GameCompletedPayloadV1 describes a finished game.
type GameCompletedPayloadV1 struct {
	GameID       string                `json:"game_id"`
	Kind         sharedtypes.GameKind  `json:"kind"`
	OpponentID   string                `json:"opponent_id,omitempty"`
	TargetScore  int                   `json:"target_score"`
	Rounds       int                   `json:"rounds"`
	CompletedAt  time.Time             `json:"completed_at"`
	Participants []ParticipantResultV1 `json:"participants"`
}

// Revocation reasons.
const (
	RevokeReasonGameReopened    = "game_reopened"
	RevokeReasonGameDeleted     = "game_deleted"
	RevokeReasonOpponentDeleted = "opponent_deleted"
)

// GameResultsRevokedPayloadV1 lists games whose recorded results no longer hold.
type GameResultsRevokedPayloadV1 struct {
	GameIDs []string `json:"game_ids"`
	Reason  string   `json:"reason"`
}
