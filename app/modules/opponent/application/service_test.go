package opponentservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	paywallservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/application"
	"github.com/Black-And-White-Club/card-scorekeeper/app/scoring"
	scoreevents "github.com/Black-And-White-Club/card-scorekeeper/app/shared/events"
	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/servicemetrics"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/testutils"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

var testNow = time.Date(2026, 5, 4, 20, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

type harness struct {
	repo     *FakeOpponentRepo
	settings *FakeSettings
	paywall  *FakeEntitlements
	pub      *testutils.RecordingPublisher
	svc      *OpponentService
}

func newHarness(seed ...sharedtypes.Opponent) *harness {
	h := &harness{
		repo:     NewFakeOpponentRepo(seed...),
		settings: &FakeSettings{Settings: sharedtypes.DefaultSettings()},
		paywall:  &FakeEntitlements{Allow: paywallservice.DefaultLimits()},
		pub:      &testutils.RecordingPublisher{},
	}
	h.svc = NewOpponentService(
		h.repo, h.settings, h.paywall, h.pub, scoring.TieBreakEvaluationOrder,
		slog.New(slog.NewTextHandler(io.Discard, nil)), servicemetrics.NewNoop(), nil, nil,
	)
	h.svc.now = func() time.Time { return testNow }
	n := 0
	h.svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return h
}

func opponentWith(id string, games ...sharedtypes.Game) sharedtypes.Opponent {
	if games == nil {
		games = []sharedtypes.Game{}
	}
	return sharedtypes.Opponent{ID: id, Name: "Sam", Color: "#ff7900", Games: games}
}

func gameWith(id string, winner sharedtypes.Side, rounds ...sharedtypes.Round) sharedtypes.Game {
	if rounds == nil {
		rounds = []sharedtypes.Round{}
	}
	return sharedtypes.Game{ID: id, Date: testNow.Add(-time.Hour), TargetScore: 100, ScoreHistory: rounds, Winner: winner}
}

func TestCreateOpponent(t *testing.T) {
	tests := []struct {
		name        string
		seed        []sharedtypes.Opponent
		paid        bool
		req         OpponentRequest
		setupRepo   func(*FakeOpponentRepo)
		want        *sharedtypes.Opponent
		wantTrace   []string
		wantErr     bool
		wantErrType error
	}{
		{
			name:      "trims name and applies default color",
			req:       OpponentRequest{Name: "  Sam  "},
			want:      &sharedtypes.Opponent{ID: "id-1", Name: "Sam", Color: DefaultColor, Games: []sharedtypes.Game{}},
			wantTrace: []string{"List", "Save"},
		},
		{
			name:      "keeps chosen color",
			req:       OpponentRequest{Name: "Sam", Color: "#ffbe0b"},
			want:      &sharedtypes.Opponent{ID: "id-1", Name: "Sam", Color: "#ffbe0b", Games: []sharedtypes.Game{}},
			wantTrace: []string{"List", "Save"},
		},
		{
			name:        "blank name",
			req:         OpponentRequest{Name: "   "},
			wantErr:     true,
			wantErrType: ErrNameRequired,
			wantTrace:   []string{},
		},
		{
			name:        "free user already has an opponent",
			seed:        []sharedtypes.Opponent{opponentWith("o1")},
			req:         OpponentRequest{Name: "Kim"},
			wantErr:     true,
			wantErrType: paywallservice.ErrPaywallRequired,
			wantTrace:   []string{"List"},
		},
		{
			name:      "paid user may add more",
			seed:      []sharedtypes.Opponent{opponentWith("o1")},
			paid:      true,
			req:       OpponentRequest{Name: "Kim"},
			want:      &sharedtypes.Opponent{ID: "id-1", Name: "Kim", Color: DefaultColor, Games: []sharedtypes.Game{}},
			wantTrace: []string{"List", "Save"},
		},
		{
			name: "list fails",
			req:  OpponentRequest{Name: "Kim"},
			setupRepo: func(f *FakeOpponentRepo) {
				f.ListFunc = func(ctx context.Context, db bun.IDB) ([]sharedtypes.Opponent, error) {
					return nil, errors.New("database connection failed")
				}
			},
			wantErr:   true,
			wantTrace: []string{"List"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(tt.seed...)
			h.paywall.Paid = tt.paid
			if tt.setupRepo != nil {
				tt.setupRepo(h.repo)
			}

			got, err := h.svc.CreateOpponent(context.Background(), tt.req)
			assert.Equal(t, tt.wantTrace, h.repo.Trace())
			if tt.wantErr {
				require.Error(t, err)
				if tt.wantErrType != nil {
					assert.ErrorIs(t, err, tt.wantErrType)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpdateOpponent(t *testing.T) {
	h := newHarness(opponentWith("o1"))

	got, err := h.svc.UpdateOpponent(context.Background(), "o1", OpponentRequest{Name: " Samantha "})
	require.NoError(t, err)
	assert.Equal(t, "Samantha", got.Name)
	assert.Equal(t, "#ff7900", got.Color, "empty color keeps the current one")

	_, err = h.svc.UpdateOpponent(context.Background(), "missing", OpponentRequest{Name: "X"})
	assert.ErrorIs(t, err, ErrOpponentNotFound)

	_, err = h.svc.UpdateOpponent(context.Background(), "o1", OpponentRequest{Name: ""})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestDeleteOpponentRevokesFinishedGames(t *testing.T) {
	h := newHarness(opponentWith("o1",
		gameWith("g1", sharedtypes.SideUser, sharedtypes.Round{User: 100}),
		gameWith("g2", sharedtypes.SideNone, sharedtypes.Round{Opponent: 20}),
		gameWith("g3", sharedtypes.SideOpponent, sharedtypes.Round{Opponent: 100}),
	))

	require.NoError(t, h.svc.DeleteOpponent(context.Background(), "o1"))
	assert.Empty(t, h.repo.Stored())

	msgs := h.pub.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, scoreevents.GameResultsRevokedV1, msgs[0].Topic)
	payload := testutils.DecodePayload[scoreevents.GameResultsRevokedPayloadV1](t, msgs[0])
	assert.Equal(t, []string{"g1", "g3"}, payload.GameIDs)
	assert.Equal(t, scoreevents.RevokeReasonOpponentDeleted, payload.Reason)

	err := h.svc.DeleteOpponent(context.Background(), "o1")
	assert.ErrorIs(t, err, ErrOpponentNotFound)
	assert.Len(t, h.pub.Messages(), 1)
}

func TestDeleteOpponentWithoutFinishedGamesPublishesNothing(t *testing.T) {
	h := newHarness(opponentWith("o1", gameWith("g1", sharedtypes.SideNone)))
	require.NoError(t, h.svc.DeleteOpponent(context.Background(), "o1"))
	assert.Empty(t, h.pub.Messages())
}

func TestOpponentStats(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 4, d, 18, 0, 0, 0, time.UTC) }
	h := newHarness(opponentWith("o1",
		gameWith("g1", sharedtypes.SideUser, sharedtypes.Round{User: 60, Date: day(1)}, sharedtypes.Round{User: 45, Date: day(2)}),
		gameWith("g2", sharedtypes.SideOpponent, sharedtypes.Round{Opponent: 110, Date: day(5)}),
		gameWith("g3", sharedtypes.SideNone, sharedtypes.Round{User: 12, Date: day(3)}),
		gameWith("g4", sharedtypes.SideNone),
	))

	stats, err := h.svc.OpponentStats(context.Background(), "o1")
	require.NoError(t, err)

	assert.Equal(t, 117, stats.UserPoints)
	assert.Equal(t, 110, stats.OpponentPoints)
	assert.Equal(t, 1, stats.UserWins)
	assert.Equal(t, 1, stats.OpponentWins)
	assert.Equal(t, 4, stats.GamesPlayed)
	require.NotNil(t, stats.LastPlayed)
	assert.Equal(t, day(5), *stats.LastPlayed)

	ids := make([]string, 0, len(stats.Games))
	for _, g := range stats.Games {
		ids = append(ids, g.ID)
	}
	assert.Equal(t, []string{"g4", "g3", "g2", "g1"}, ids, "newest first")
	assert.True(t, stats.Games[0].InProgress)
	assert.Nil(t, stats.Games[0].LastPlayed)
	assert.Equal(t, day(2), *stats.Games[3].LastPlayed)

	_, err = h.svc.OpponentStats(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrOpponentNotFound)
}

func TestCreateGame(t *testing.T) {
	tests := []struct {
		name        string
		seed        sharedtypes.Opponent
		paid        bool
		req         CreateGameRequest
		check       func(t *testing.T, got *GameView)
		wantErrType error
	}{
		{
			name: "defaults to the settings target",
			seed: opponentWith("o1"),
			req:  CreateGameRequest{Notes: "  rematch "},
			check: func(t *testing.T, got *GameView) {
				assert.Equal(t, "id-1", got.ID)
				assert.Equal(t, sharedtypes.DefaultTargetScore, got.TargetScore)
				assert.Equal(t, "rematch", got.Notes)
				assert.Equal(t, testNow, got.Date)
				assert.Equal(t, sharedtypes.BonusValues{Gin: 25, BigGin: 31, Undercut: 25}, got.BonusValues)
			},
		},
		{
			name: "custom target and bonus overrides",
			seed: opponentWith("o1"),
			req:  CreateGameRequest{TargetScore: ptr(250), GinBonus: ptr(20), UndercutBonus: ptr(0)},
			check: func(t *testing.T, got *GameView) {
				assert.Equal(t, 250, got.TargetScore)
				assert.Equal(t, sharedtypes.BonusValues{Gin: 20, BigGin: 31, Undercut: 0}, got.BonusValues)
			},
		},
		{
			name:        "zero target",
			seed:        opponentWith("o1"),
			req:         CreateGameRequest{TargetScore: ptr(0)},
			wantErrType: ErrInvalidTarget,
		},
		{
			name:        "negative bonus",
			seed:        opponentWith("o1"),
			req:         CreateGameRequest{BigGinBonus: ptr(-1)},
			wantErrType: ErrInvalidBonusValue,
		},
		{
			name:        "free user already has a game with this opponent",
			seed:        opponentWith("o1", gameWith("g1", sharedtypes.SideUser)),
			wantErrType: paywallservice.ErrPaywallRequired,
		},
		{
			name: "paid user may start another",
			seed: opponentWith("o1", gameWith("g1", sharedtypes.SideUser)),
			paid: true,
			check: func(t *testing.T, got *GameView) {
				assert.Equal(t, "o1", got.OpponentID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(tt.seed)
			h.paywall.Paid = tt.paid

			got, err := h.svc.CreateGame(context.Background(), "o1", tt.req)
			if tt.wantErrType != nil {
				assert.ErrorIs(t, err, tt.wantErrType)
				assert.NotContains(t, h.repo.Trace(), "Save")
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
			assert.Len(t, h.repo.Stored()[0].Games, len(tt.seed.Games)+1)
		})
	}

	h := newHarness()
	_, err := h.svc.CreateGame(context.Background(), "missing", CreateGameRequest{})
	assert.ErrorIs(t, err, ErrOpponentNotFound)
}

func TestRoundsDecideAndReopenGame(t *testing.T) {
	h := newHarness(opponentWith("o1", gameWith("g1", sharedtypes.SideNone)))
	h.paywall.Paid = true
	h.settings.Settings.UserName = "Ada"
	ctx := context.Background()

	_, err := h.svc.AddRound(ctx, "o1", "g1", RoundInput{Winner: sharedtypes.SideUser, Score: "40"})
	require.NoError(t, err)
	_, err = h.svc.AddRound(ctx, "o1", "g1", RoundInput{Winner: sharedtypes.SideOpponent, Score: " 10 "})
	require.NoError(t, err)
	assert.Empty(t, h.pub.Messages())

	view, err := h.svc.AddRound(ctx, "o1", "g1", RoundInput{Winner: sharedtypes.SideUser, Score: "65"})
	require.NoError(t, err)
	assert.Equal(t, 105, view.UserTotal)
	assert.Equal(t, 10, view.OpponentTotal)
	assert.Equal(t, sharedtypes.SideUser, view.Winner)

	msgs := h.pub.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, scoreevents.GameCompletedV1, msgs[0].Topic)
	completed := testutils.DecodePayload[scoreevents.GameCompletedPayloadV1](t, msgs[0])
	want := scoreevents.GameCompletedPayloadV1{
		GameID:      "g1",
		Kind:        sharedtypes.KindGin,
		OpponentID:  "o1",
		TargetScore: 100,
		Rounds:      3,
		CompletedAt: testNow,
		Participants: []scoreevents.ParticipantResultV1{
			{Name: "Ada", IsUser: true, Total: 105, Winner: true},
			{Name: "Sam", Total: 10},
		},
	}
	if diff := cmp.Diff(want, completed); diff != "" {
		t.Errorf("completed payload mismatch (-want +got):\n%s", diff)
	}

	originalDate := h.repo.Stored()[0].Games[0].ScoreHistory[2].Date
	h.svc.now = func() time.Time { return testNow.Add(time.Hour) }
	view, err = h.svc.EditRound(ctx, "o1", "g1", 2, RoundInput{Winner: sharedtypes.SideUser, Score: "5"})
	require.NoError(t, err)
	assert.Equal(t, sharedtypes.SideNone, view.Winner)
	assert.Equal(t, 45, view.UserTotal)
	assert.Equal(t, originalDate, view.ScoreHistory[2].Date, "edits keep the round date")

	assert.Nil(t, view.CompletedAt)

	msgs = h.pub.Messages()
	require.Len(t, msgs, 2)
	revoked := testutils.DecodePayload[scoreevents.GameResultsRevokedPayloadV1](t, msgs[1])
	assert.Equal(t, []string{"g1"}, revoked.GameIDs)
	assert.Equal(t, scoreevents.RevokeReasonGameReopened, revoked.Reason)
}

func TestAddRoundScoreCeiling(t *testing.T) {
	h := newHarness(opponentWith("o1", gameWith("g1", sharedtypes.SideNone, sharedtypes.Round{User: 90})))
	ctx := context.Background()

	_, err := h.svc.AddRound(ctx, "o1", "g1", RoundInput{Winner: sharedtypes.SideUser, Score: "20"})
	assert.ErrorIs(t, err, paywallservice.ErrPaywallRequired)
	assert.NotContains(t, h.repo.Trace(), "Save")

	view, err := h.svc.AddRound(ctx, "o1", "g1", RoundInput{Winner: sharedtypes.SideUser, Score: "10"})
	require.NoError(t, err, "exactly the ceiling is allowed")
	assert.Equal(t, sharedtypes.SideUser, view.Winner)

	_, err = h.svc.EditRound(ctx, "o1", "g1", 1, RoundInput{Winner: sharedtypes.SideUser, Score: "11"})
	assert.ErrorIs(t, err, paywallservice.ErrPaywallRequired)

	h.paywall.Paid = true
	_, err = h.svc.EditRound(ctx, "o1", "g1", 1, RoundInput{Winner: sharedtypes.SideUser, Score: "11"})
	assert.NoError(t, err)
}

func TestEditFinishedGameKeepsCompletionTime(t *testing.T) {
	finishedAt := testNow.Add(-30 * time.Minute)
	done := gameWith("g1", sharedtypes.SideUser, sharedtypes.Round{User: 60}, sharedtypes.Round{User: 45})
	done.CompletedAt = &finishedAt
	h := newHarness(opponentWith("o1", done))
	h.paywall.Paid = true
	ctx := context.Background()

	view, err := h.svc.EditRound(ctx, "o1", "g1", 1, RoundInput{Winner: sharedtypes.SideUser, Score: "50"})
	require.NoError(t, err)
	assert.Equal(t, sharedtypes.SideUser, view.Winner)
	assert.Equal(t, 110, view.UserTotal)
	require.NotNil(t, view.CompletedAt)
	assert.Equal(t, finishedAt, *view.CompletedAt)

	msgs := h.pub.Messages()
	require.Len(t, msgs, 1)
	completed := testutils.DecodePayload[scoreevents.GameCompletedPayloadV1](t, msgs[0])
	assert.Equal(t, finishedAt, completed.CompletedAt)
	assert.Equal(t, 110, completed.Participants[0].Total)

	stored := h.repo.Stored()[0].Games[0]
	require.NotNil(t, stored.CompletedAt)
	assert.Equal(t, finishedAt, *stored.CompletedAt)
}

func TestAddRoundBonus(t *testing.T) {
	game := gameWith("g1", sharedtypes.SideNone)
	game.UndercutBonus = ptr(10)
	h := newHarness(opponentWith("o1", game))
	h.paywall.Paid = true
	ctx := context.Background()

	view, err := h.svc.AddRound(ctx, "o1", "g1", RoundInput{Winner: sharedtypes.SideUser, Score: "10", Bonus: sharedtypes.BonusGin})
	require.NoError(t, err)
	assert.Equal(t, 35, view.UserTotal, "settings gin value")

	view, err = h.svc.AddRound(ctx, "o1", "g1", RoundInput{Winner: sharedtypes.SideOpponent, Score: "4", Bonus: sharedtypes.BonusUndercut})
	require.NoError(t, err)
	assert.Equal(t, 14, view.OpponentTotal, "game override")
	assert.Equal(t, sharedtypes.BonusUndercut, view.ScoreHistory[1].BonusType)
}

func TestRoundValidation(t *testing.T) {
	tests := []struct {
		name        string
		gameID      string
		edit        bool
		index       int
		in          RoundInput
		wantErrType error
	}{
		{name: "non numeric score", gameID: "g1", index: -1, in: RoundInput{Winner: sharedtypes.SideUser, Score: "abc"}, wantErrType: scoring.ErrInvalidScore},
		{name: "negative score", gameID: "g1", index: -1, in: RoundInput{Winner: sharedtypes.SideUser, Score: "-3"}, wantErrType: scoring.ErrInvalidScore},
		{name: "no winner", gameID: "g1", index: -1, in: RoundInput{Score: "3"}, wantErrType: scoring.ErrWinnerRequired},
		{name: "hearts bonus", gameID: "g1", index: -1, in: RoundInput{Winner: sharedtypes.SideUser, Score: "3", Bonus: sharedtypes.BonusShootMoon}, wantErrType: scoring.ErrUnknownBonus},
		{name: "unknown game", gameID: "nope", index: -1, in: RoundInput{Winner: sharedtypes.SideUser, Score: "3"}, wantErrType: ErrGameNotFound},
		{name: "edit past the end", gameID: "g1", edit: true, index: 1, in: RoundInput{Winner: sharedtypes.SideUser, Score: "3"}, wantErrType: scoring.ErrRoundIndex},
		{name: "edit before the start", gameID: "g1", edit: true, index: -1, in: RoundInput{Winner: sharedtypes.SideUser, Score: "5"}, wantErrType: scoring.ErrRoundIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(opponentWith("o1", gameWith("g1", sharedtypes.SideNone, sharedtypes.Round{User: 10})))
			h.paywall.Paid = true

			var err error
			if tt.edit {
				_, err = h.svc.EditRound(context.Background(), "o1", tt.gameID, tt.index, tt.in)
			} else {
				_, err = h.svc.AddRound(context.Background(), "o1", tt.gameID, tt.in)
			}
			assert.ErrorIs(t, err, tt.wantErrType)
			assert.NotContains(t, h.repo.Trace(), "Save")
			assert.Equal(t, []sharedtypes.Round{{User: 10}}, h.repo.Stored()[0].Games[0].ScoreHistory)
		})
	}
}

func TestAddRoundPublishFailureDoesNotFailTheRound(t *testing.T) {
	h := newHarness(opponentWith("o1", gameWith("g1", sharedtypes.SideNone, sharedtypes.Round{User: 95})))
	h.paywall.Paid = true
	h.pub.Err = errors.New("bus down")

	view, err := h.svc.AddRound(context.Background(), "o1", "g1", RoundInput{Winner: sharedtypes.SideUser, Score: "10"})
	require.NoError(t, err)
	assert.Equal(t, sharedtypes.SideUser, view.Winner)
	assert.Equal(t, sharedtypes.SideUser, h.repo.Stored()[0].Games[0].Winner)
}

func TestAddRoundSaveFails(t *testing.T) {
	h := newHarness(opponentWith("o1", gameWith("g1", sharedtypes.SideNone, sharedtypes.Round{User: 95})))
	h.paywall.Paid = true
	h.repo.SaveFunc = func(ctx context.Context, db bun.IDB, opponent sharedtypes.Opponent) error {
		return errors.New("disk full")
	}

	_, err := h.svc.AddRound(context.Background(), "o1", "g1", RoundInput{Winner: sharedtypes.SideUser, Score: "10"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AddRound")
	assert.Empty(t, h.pub.Messages(), "nothing is announced for a failed write")
}

func TestDeleteGame(t *testing.T) {
	h := newHarness(opponentWith("o1",
		gameWith("g1", sharedtypes.SideUser, sharedtypes.Round{User: 100}),
		gameWith("g2", sharedtypes.SideNone),
	))
	ctx := context.Background()

	require.NoError(t, h.svc.DeleteGame(ctx, "o1", "g2"))
	assert.Empty(t, h.pub.Messages())

	require.NoError(t, h.svc.DeleteGame(ctx, "o1", "g1"))
	assert.Empty(t, h.repo.Stored()[0].Games)
	require.Len(t, h.pub.Messages(), 1)
	payload := testutils.DecodePayload[scoreevents.GameResultsRevokedPayloadV1](t, h.pub.Messages()[0])
	assert.Equal(t, scoreevents.RevokeReasonGameDeleted, payload.Reason)

	assert.ErrorIs(t, h.svc.DeleteGame(ctx, "o1", "g1"), ErrGameNotFound)
}

func TestSetKnockValue(t *testing.T) {
	h := newHarness(opponentWith("o1", gameWith("g1", sharedtypes.SideNone)))
	ctx := context.Background()

	view, err := h.svc.SetKnockValue(ctx, "o1", "g1", ptr(8))
	require.NoError(t, err)
	require.NotNil(t, view.KnockValue)
	assert.Equal(t, 8, *view.KnockValue)

	view, err = h.svc.SetKnockValue(ctx, "o1", "g1", nil)
	require.NoError(t, err)
	assert.Nil(t, view.KnockValue)
	assert.Nil(t, h.repo.Stored()[0].Games[0].KnockValue)

	_, err = h.svc.SetKnockValue(ctx, "o1", "g1", ptr(-1))
	assert.ErrorIs(t, err, ErrInvalidKnockValue)
}

func TestGetGame(t *testing.T) {
	h := newHarness(opponentWith("o1", gameWith("g1", sharedtypes.SideNone, sharedtypes.Round{User: 30}, sharedtypes.Round{Opponent: 12})))

	view, err := h.svc.GetGame(context.Background(), "o1", "g1")
	require.NoError(t, err)
	assert.Equal(t, 30, view.UserTotal)
	assert.Equal(t, 12, view.OpponentTotal)

	h.settings.Err = errors.New("settings unreadable")
	_, err = h.svc.GetGame(context.Background(), "o1", "g1")
	assert.Error(t, err)
}
