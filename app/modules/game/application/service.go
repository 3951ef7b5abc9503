package gameservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	gamedb "github.com/Black-And-White-Club/card-scorekeeper/app/modules/game/infrastructure/repositories"
	paywallservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/application"
	"github.com/Black-And-White-Club/card-scorekeeper/app/scoring"
	scoreevents "github.com/Black-And-White-Club/card-scorekeeper/app/shared/events"
	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/servicemetrics"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/operation"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/results"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/timeparse"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Palette colors players created without one, by seat.
var Palette = []string{"#a51c30", "#ff7900", "#29bf12", "#26ABFF", "#8338ec"}

// GameService implements the Service interface.
type GameService struct {
	repo      gamedb.Repository
	settings  SettingsReader
	paywall   paywallservice.Entitlements
	publisher message.Publisher
	importer  Importer
	since     *timeparse.Parser
	logger    *slog.Logger
	metrics   servicemetrics.Metrics
	ops       *operation.Runner
	now       func() time.Time
	newID     func() string
}

// NewGameService creates a new GameService. A nil paywall disables the
// free-tier limits; a nil publisher drops events.
func NewGameService(
	repo gamedb.Repository,
	settings SettingsReader,
	paywall paywallservice.Entitlements,
	publisher message.Publisher,
	importer Importer,
	logger *slog.Logger,
	metrics servicemetrics.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
) *GameService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = servicemetrics.NewNoop()
	}
	s := &GameService{
		repo:      repo,
		settings:  settings,
		paywall:   paywall,
		publisher: publisher,
		importer:  importer,
		logger:    logger,
		metrics:   metrics,
		ops: &operation.Runner{
			Service: "GameService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
			DB:      db,
		},
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	s.since = timeparse.New(clockFunc(func() time.Time { return s.now() }), time.UTC)
	return s
}

type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }

// CreateGame seats the players and starts a game. Free users get
// Limits.MaxFreeMultiplayerGames games.
func (s *GameService) CreateGame(ctx context.Context, req CreateGameRequest) (*GameView, error) {
	return operation.Run(s.ops, ctx, "CreateGame", "games", func(ctx context.Context, db bun.IDB) (results.OperationResult[*GameView, error], error) {
		return s.createGameLogic(ctx, db, req)
	})
}

func (s *GameService) createGameLogic(ctx context.Context, db bun.IDB, req CreateGameRequest) (results.OperationResult[*GameView, error], error) {
	if n := len(req.Players); n < MinPlayers || n > MaxPlayers {
		return results.FailureResult[*GameView, error](ErrInvalidPlayers), nil
	}
	settings, err := s.settings.Get(ctx, db)
	if err != nil {
		return results.OperationResult[*GameView, error]{}, fmt.Errorf("failed to load settings: %w", err)
	}

	players := make([]sharedtypes.Player, 0, len(req.Players))
	seen := make(map[string]bool, len(req.Players))
	for i, in := range req.Players {
		name := strings.TrimSpace(in.Name)
		if name == "" && i == 0 {
			name = settings.UserName
		}
		if name == "" {
			return results.FailureResult[*GameView, error](ErrPlayerNameRequired), nil
		}
		key := strings.ToLower(name)
		if seen[key] {
			return results.FailureResult[*GameView, error](fmt.Errorf("%w: %s", ErrDuplicatePlayer, name)), nil
		}
		seen[key] = true

		color := strings.TrimSpace(in.Color)
		if color == "" {
			color = Palette[i%len(Palette)]
		}
		players = append(players, sharedtypes.Player{ID: s.newID(), Name: name, Color: color, IsUser: i == 0})
	}

	target := settings.TargetScore
	if req.TargetScore != nil {
		target = *req.TargetScore
	}
	if target <= 0 {
		return results.FailureResult[*GameView, error](ErrInvalidTarget), nil
	}

	games, err := s.repo.List(ctx, db)
	if err != nil {
		return results.OperationResult[*GameView, error]{}, err
	}
	if limit := s.limits().MaxFreeMultiplayerGames; limit > 0 && len(games) >= limit {
		paid, err := s.hasPaid(ctx, db)
		if err != nil {
			return results.OperationResult[*GameView, error]{}, err
		}
		if !paid {
			s.metrics.RecordPaywallBlocked(ctx, "multiplayer_games")
			return results.FailureResult[*GameView, error](paywallservice.ErrPaywallRequired), nil
		}
	}

	game := sharedtypes.MultiplayerGame{
		ID:          s.newID(),
		Date:        s.now(),
		Players:     players,
		Rounds:      []sharedtypes.PlayerRound{},
		TargetScore: target,
		Status:      sharedtypes.StatusInProgress,
	}
	if err := s.repo.Save(ctx, db, game); err != nil {
		return results.OperationResult[*GameView, error]{}, err
	}
	return results.SuccessResult[*GameView, error](newGameView(game)), nil
}

// ListGames lists games newest first.
func (s *GameService) ListGames(ctx context.Context, since string) ([]GameSummary, error) {
	return operation.Run(s.ops, ctx, "ListGames", since, func(ctx context.Context, db bun.IDB) (results.OperationResult[[]GameSummary, error], error) {
		cutoff, err := s.since.ParseSince(since)
		if err != nil {
			return results.FailureResult[[]GameSummary, error](fmt.Errorf("%w: %w", ErrInvalidSince, err)), nil
		}

		games, err := s.repo.List(ctx, db)
		if err != nil {
			return results.OperationResult[[]GameSummary, error]{}, err
		}
		sort.SliceStable(games, func(i, j int) bool { return games[i].Date.After(games[j].Date) })

		out := make([]GameSummary, 0, len(games))
		for _, g := range games {
			if !cutoff.IsZero() && g.Date.Before(cutoff) {
				continue
			}
			out = append(out, summarize(g))
		}
		return results.SuccessResult[[]GameSummary, error](out), nil
	})
}

// GetGame returns a game with its totals and leader.
func (s *GameService) GetGame(ctx context.Context, id string) (*GameView, error) {
	return operation.Run(s.ops, ctx, "GetGame", id, func(ctx context.Context, db bun.IDB) (results.OperationResult[*GameView, error], error) {
		game, err := s.loadGame(ctx, db, id)
		if err != nil {
			return classify[*GameView](err)
		}
		return results.SuccessResult[*GameView, error](newGameView(*game)), nil
	})
}

// DeleteGame removes a game. A finished game's results are revoked.
func (s *GameService) DeleteGame(ctx context.Context, id string) error {
	var events []scoreevents.Outbound
	_, err := operation.Run(s.ops, ctx, "DeleteGame", id, func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
		game, err := s.loadGame(ctx, db, id)
		if err != nil {
			return classify[struct{}](err)
		}
		if err := s.repo.Delete(ctx, db, id); err != nil {
			return results.OperationResult[struct{}, error]{}, err
		}
		if game.Winner != "" {
			events = scoreevents.Revoked(scoreevents.RevokeReasonGameDeleted, id)
		}
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	if err != nil {
		return err
	}
	scoreevents.Publish(ctx, s.publisher, s.logger, events)
	return nil
}

// roundOutcome carries what a committed round change must announce.
type roundOutcome struct {
	rounds    int
	completed bool
	events    []scoreevents.Outbound
}

// AddRound appends a hand.
func (s *GameService) AddRound(ctx context.Context, id string, in RoundInput) (*GameView, error) {
	var outcome roundOutcome
	view, err := operation.Run(s.ops, ctx, "AddRound", id, func(ctx context.Context, db bun.IDB) (results.OperationResult[*GameView, error], error) {
		return s.recordRoundLogic(ctx, db, id, -1, in, &outcome)
	})
	if err != nil {
		return nil, err
	}
	s.afterRounds(ctx, outcome)
	return view, nil
}

// EditRound replaces the hand at index, keeping its date.
func (s *GameService) EditRound(ctx context.Context, id string, index int, in RoundInput) (*GameView, error) {
	var outcome roundOutcome
	view, err := operation.Run(s.ops, ctx, "EditRound", id, func(ctx context.Context, db bun.IDB) (results.OperationResult[*GameView, error], error) {
		if index < 0 {
			return results.FailureResult[*GameView, error](fmt.Errorf("%w: %d", scoring.ErrRoundIndex, index)), nil
		}
		return s.recordRoundLogic(ctx, db, id, index, in, &outcome)
	})
	if err != nil {
		return nil, err
	}
	s.afterRounds(ctx, outcome)
	return view, nil
}

// recordRoundLogic appends when index is negative, otherwise replaces.
func (s *GameService) recordRoundLogic(ctx context.Context, db bun.IDB, id string, index int, in RoundInput, outcome *roundOutcome) (results.OperationResult[*GameView, error], error) {
	game, err := s.loadGame(ctx, db, id)
	if err != nil {
		return classify[*GameView](err)
	}
	editing := index >= 0
	if editing && index >= len(game.Rounds) {
		return results.FailureResult[*GameView, error](fmt.Errorf("%w: %d", scoring.ErrRoundIndex, index)), nil
	}

	at := s.now()
	if editing {
		at = game.Rounds[index].Date
	}
	round, err := buildRound(game.Players, in.Scores, in.Bonus, in.BonusPlayerID, at)
	if err != nil {
		return results.FailureResult[*GameView, error](err), nil
	}

	if editing {
		game.Rounds, _ = scoring.ReplaceAt(game.Rounds, index, round)
	} else {
		game.Rounds = append(game.Rounds, round)
	}
	return s.settle(ctx, db, game, 1, outcome)
}

// ImportRounds applies a scoresheet as new rounds.
func (s *GameService) ImportRounds(ctx context.Context, id, fileName string, data []byte) (*ImportResult, error) {
	var outcome roundOutcome
	result, err := operation.Run(s.ops, ctx, "ImportRounds", id, func(ctx context.Context, db bun.IDB) (results.OperationResult[*ImportResult, error], error) {
		return s.importRoundsLogic(ctx, db, id, fileName, data, &outcome)
	})
	if err != nil {
		return nil, err
	}
	s.afterRounds(ctx, outcome)
	return result, nil
}

func (s *GameService) importRoundsLogic(ctx context.Context, db bun.IDB, id, fileName string, data []byte, outcome *roundOutcome) (results.OperationResult[*ImportResult, error], error) {
	game, err := s.loadGame(ctx, db, id)
	if err != nil {
		return classify[*ImportResult](err)
	}
	if s.importer == nil {
		return results.FailureResult[*ImportResult, error](fmt.Errorf("%w: imports are not enabled", ErrInvalidImport)), nil
	}

	rows, err := s.importer.Read(fileName, data, game.Players)
	if err != nil {
		return results.FailureResult[*ImportResult, error](fmt.Errorf("%w: %w", ErrInvalidImport, err)), nil
	}

	at := s.now()
	rounds := make([]sharedtypes.PlayerRound, 0, len(rows))
	for _, row := range rows {
		round, err := buildRound(game.Players, row.Scores, row.Bonus, row.BonusPlayerID, at)
		if err != nil {
			return results.FailureResult[*ImportResult, error](fmt.Errorf("%w: line %d: %w", ErrInvalidImport, row.Line, err)), nil
		}
		rounds = append(rounds, round)
	}

	game.Rounds = append(game.Rounds, rounds...)

	settled, err := s.settle(ctx, db, game, len(rounds), outcome)
	if err != nil {
		return results.OperationResult[*ImportResult, error]{}, err
	}
	return results.SuccessResult[*ImportResult, error](&ImportResult{Imported: len(rounds), Game: *settled.Success}), nil
}

// buildRound validates entered scores and applies the round's bonus.
func buildRound(players []sharedtypes.Player, texts map[string]string, bonus sharedtypes.BonusType, bonusPlayer string, at time.Time) (sharedtypes.PlayerRound, error) {
	scores, err := scoring.ParseScores(texts)
	if err != nil {
		return sharedtypes.PlayerRound{}, err
	}
	if err := scoring.ValidateRoundScores(players, scores); err != nil {
		return sharedtypes.PlayerRound{}, err
	}
	final, err := scoring.ApplyMultiplayerBonus(scores, bonus, bonusPlayer)
	if err != nil {
		return sharedtypes.PlayerRound{}, err
	}

	round := sharedtypes.PlayerRound{Scores: final, Date: at, BonusType: bonus}
	if bonus != sharedtypes.BonusNone {
		round.BonusPlayerID = bonusPlayer
	}
	return round, nil
}

// settle recomputes the winner, saves the game and stages the events the
// change calls for.
func (s *GameService) settle(ctx context.Context, db bun.IDB, game *sharedtypes.MultiplayerGame, added int, outcome *roundOutcome) (results.OperationResult[*GameView, error], error) {
	previous := game.Winner
	game.Winner = scoring.MultiplayerWinner(game.Players, game.Rounds, game.TargetScore)
	game.Status = sharedtypes.StatusInProgress
	switch {
	case game.Winner == "":
		game.CompletedAt = nil
	case game.Winner != previous || game.CompletedAt == nil:
		now := s.now()
		game.CompletedAt = &now
	}
	if game.Winner != "" {
		game.Status = sharedtypes.StatusCompleted
	}

	if err := s.repo.Save(ctx, db, *game); err != nil {
		return results.OperationResult[*GameView, error]{}, err
	}

	view := newGameView(*game)
	outcome.rounds = added
	switch {
	case game.Winner != "":
		outcome.completed = previous == ""
		outcome.events = []scoreevents.Outbound{scoreevents.Completed(completedPayload(view))}
	case previous != "":
		outcome.events = scoreevents.Revoked(scoreevents.RevokeReasonGameReopened, game.ID)
	}
	return results.SuccessResult[*GameView, error](view), nil
}

func (s *GameService) afterRounds(ctx context.Context, outcome roundOutcome) {
	for i := 0; i < outcome.rounds; i++ {
		s.metrics.RecordRoundRecorded(ctx, string(sharedtypes.KindHearts))
	}
	if outcome.completed {
		s.metrics.RecordGameCompleted(ctx, string(sharedtypes.KindHearts))
	}
	scoreevents.Publish(ctx, s.publisher, s.logger, outcome.events)
}

func (s *GameService) loadGame(ctx context.Context, db bun.IDB, id string) (*sharedtypes.MultiplayerGame, error) {
	game, err := s.repo.Get(ctx, db, id)
	if errors.Is(err, gamedb.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	return game, err
}

func (s *GameService) limits() paywallservice.Limits {
	if s.paywall == nil {
		return paywallservice.Limits{}
	}
	return s.paywall.Limits()
}

func (s *GameService) hasPaid(ctx context.Context, db bun.IDB) (bool, error) {
	if s.paywall == nil {
		return true, nil
	}
	paid, err := s.paywall.HasPaid(ctx, db)
	if err != nil {
		return false, fmt.Errorf("failed to read paid flag: %w", err)
	}
	return paid, nil
}

func classify[S any](err error) (results.OperationResult[S, error], error) {
	if errors.Is(err, ErrGameNotFound) {
		return results.FailureResult[S, error](err), nil
	}
	return results.OperationResult[S, error]{}, err
}

func newGameView(game sharedtypes.MultiplayerGame) *GameView {
	return &GameView{
		MultiplayerGame: game,
		Totals:          scoring.PlayerTotals(game.Players, game.Rounds),
		Leader:          scoring.Leader(game.Players, game.Rounds),
	}
}

func summarize(g sharedtypes.MultiplayerGame) GameSummary {
	summary := GameSummary{
		ID:          g.ID,
		Date:        g.Date,
		Players:     make([]string, 0, len(g.Players)),
		Status:      g.Status,
		Winner:      g.Winner,
		Rounds:      len(g.Rounds),
		TargetScore: g.TargetScore,
	}
	for _, p := range g.Players {
		summary.Players = append(summary.Players, p.Name)
		if p.ID == g.Winner {
			summary.WinnerName = p.Name
		}
	}
	return summary
}

// completedPayload reports the game as completed at the moment it gained
// its current winner.
func completedPayload(view *GameView) scoreevents.GameCompletedPayloadV1 {
	participants := make([]scoreevents.ParticipantResultV1, 0, len(view.Players))
	for _, p := range view.Players {
		participants = append(participants, scoreevents.ParticipantResultV1{
			Name:   p.Name,
			IsUser: p.IsUser,
			Total:  view.Totals[p.ID],
			Winner: p.ID == view.Winner,
		})
	}
	return scoreevents.GameCompletedPayloadV1{
		GameID:       view.ID,
		Kind:         sharedtypes.KindHearts,
		TargetScore:  view.TargetScore,
		Rounds:       len(view.Rounds),
		CompletedAt:  *view.CompletedAt,
		Participants: participants,
	}
}

var _ Service = (*GameService)(nil)
