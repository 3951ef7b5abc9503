package testutils

import (
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	scoreevents "github.com/Black-And-White-Club/card-scorekeeper/app/shared/events"
	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
)

// heartsPointsPerHand is the number of points dealt out in one hand.
const heartsPointsPerHand = 26

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}

	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

// Seed returns the seed the generator was built with.
func (g *TestDataGenerator) Seed() int64 { return g.seed }

// PlayerNames returns n distinct first names.
func (g *TestDataGenerator) PlayerNames(n int) []string {
	seen := make(map[string]bool, n)
	names := make([]string, 0, n)
	for len(names) < n {
		name := g.faker.FirstName()
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	return names
}

// HeartsHand splits 26 points across players and returns them as the
// string scores the round endpoints accept, keyed by player ID.
func (g *TestDataGenerator) HeartsHand(playerIDs []string) map[string]string {
	scores := make(map[string]string, len(playerIDs))
	remaining := heartsPointsPerHand
	for i, id := range playerIDs {
		pts := remaining
		if i < len(playerIDs)-1 {
			pts = g.faker.IntRange(0, remaining)
		}
		remaining -= pts
		scores[id] = strconv.Itoa(pts)
	}
	return scores
}

// CompletedGame builds a finished game payload with the given participants.
// The first participant is the user and the one with the lowest total wins.
func (g *TestDataGenerator) CompletedGame(kind sharedtypes.GameKind, names []string, completedAt time.Time) scoreevents.GameCompletedPayloadV1 {
	participants := make([]scoreevents.ParticipantResultV1, len(names))
	best := 0
	for i, name := range names {
		participants[i] = scoreevents.ParticipantResultV1{
			Name:   name,
			IsUser: i == 0,
			Total:  g.faker.IntRange(0, 99),
		}
		if participants[i].Total < participants[best].Total {
			best = i
		}
	}
	participants[best].Winner = true

	return scoreevents.GameCompletedPayloadV1{
		GameID:       uuid.NewString(),
		Kind:         kind,
		TargetScore:  100,
		Rounds:       g.faker.IntRange(1, 12),
		CompletedAt:  completedAt.UTC(),
		Participants: participants,
	}
}
