package opponentservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	opponentdb "github.com/Black-And-White-Club/card-scorekeeper/app/modules/opponent/infrastructure/repositories"
	paywallservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/application"
	"github.com/Black-And-White-Club/card-scorekeeper/app/scoring"
	scoreevents "github.com/Black-And-White-Club/card-scorekeeper/app/shared/events"
	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/servicemetrics"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/operation"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/results"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// DefaultColor is given to opponents created without one.
const DefaultColor = "#a51c30"

// OpponentService implements the Service interface.
type OpponentService struct {
	repo      opponentdb.Repository
	settings  SettingsReader
	paywall   paywallservice.Entitlements
	publisher message.Publisher
	tieBreak  scoring.TieBreak
	logger    *slog.Logger
	metrics   servicemetrics.Metrics
	ops       *operation.Runner
	now       func() time.Time
	newID     func() string
}

// NewOpponentService creates a new OpponentService. A nil paywall disables
// the free-tier limits; a nil publisher drops events.
func NewOpponentService(
	repo opponentdb.Repository,
	settings SettingsReader,
	paywall paywallservice.Entitlements,
	publisher message.Publisher,
	tieBreak scoring.TieBreak,
	logger *slog.Logger,
	metrics servicemetrics.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
) *OpponentService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = servicemetrics.NewNoop()
	}
	if tieBreak == "" {
		tieBreak = scoring.TieBreakEvaluationOrder
	}
	return &OpponentService{
		repo:      repo,
		settings:  settings,
		paywall:   paywall,
		publisher: publisher,
		tieBreak:  tieBreak,
		logger:    logger,
		metrics:   metrics,
		ops: &operation.Runner{
			Service: "OpponentService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
			DB:      db,
		},
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// ListOpponents returns every opponent with their games.
func (s *OpponentService) ListOpponents(ctx context.Context) ([]sharedtypes.Opponent, error) {
	return operation.Run(s.ops, ctx, "ListOpponents", "opponents", func(ctx context.Context, db bun.IDB) (results.OperationResult[[]sharedtypes.Opponent, error], error) {
		opponents, err := s.repo.List(ctx, db)
		if err != nil {
			return results.OperationResult[[]sharedtypes.Opponent, error]{}, err
		}
		return results.SuccessResult[[]sharedtypes.Opponent, error](opponents), nil
	})
}

// GetOpponent returns one opponent.
func (s *OpponentService) GetOpponent(ctx context.Context, id string) (*sharedtypes.Opponent, error) {
	return operation.Run(s.ops, ctx, "GetOpponent", id, func(ctx context.Context, db bun.IDB) (results.OperationResult[*sharedtypes.Opponent, error], error) {
		opp, err := s.loadOpponent(ctx, db, id)
		if err != nil {
			return classify[*sharedtypes.Opponent](err)
		}
		return results.SuccessResult[*sharedtypes.Opponent, error](opp), nil
	})
}

// CreateOpponent adds an opponent. Free users are limited to
// Limits.MaxFreeOpponents.
func (s *OpponentService) CreateOpponent(ctx context.Context, req OpponentRequest) (*sharedtypes.Opponent, error) {
	return operation.Run(s.ops, ctx, "CreateOpponent", req.Name, func(ctx context.Context, db bun.IDB) (results.OperationResult[*sharedtypes.Opponent, error], error) {
		return s.createOpponentLogic(ctx, db, req)
	})
}

func (s *OpponentService) createOpponentLogic(ctx context.Context, db bun.IDB, req OpponentRequest) (results.OperationResult[*sharedtypes.Opponent, error], error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return results.FailureResult[*sharedtypes.Opponent, error](ErrNameRequired), nil
	}

	opponents, err := s.repo.List(ctx, db)
	if err != nil {
		return results.OperationResult[*sharedtypes.Opponent, error]{}, err
	}
	allowed, err := s.withinLimit(ctx, db, len(opponents), s.limits().MaxFreeOpponents)
	if err != nil {
		return results.OperationResult[*sharedtypes.Opponent, error]{}, err
	}
	if !allowed {
		s.metrics.RecordPaywallBlocked(ctx, "opponents")
		return results.FailureResult[*sharedtypes.Opponent, error](paywallservice.ErrPaywallRequired), nil
	}

	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = DefaultColor
	}
	opp := sharedtypes.Opponent{
		ID:    s.newID(),
		Name:  name,
		Color: color,
		Games: []sharedtypes.Game{},
	}
	if err := s.repo.Save(ctx, db, opp); err != nil {
		return results.OperationResult[*sharedtypes.Opponent, error]{}, err
	}
	return results.SuccessResult[*sharedtypes.Opponent, error](&opp), nil
}

// UpdateOpponent renames or recolors an opponent.
func (s *OpponentService) UpdateOpponent(ctx context.Context, id string, req OpponentRequest) (*sharedtypes.Opponent, error) {
	return operation.Run(s.ops, ctx, "UpdateOpponent", id, func(ctx context.Context, db bun.IDB) (results.OperationResult[*sharedtypes.Opponent, error], error) {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			return results.FailureResult[*sharedtypes.Opponent, error](ErrNameRequired), nil
		}
		opp, err := s.loadOpponent(ctx, db, id)
		if err != nil {
			return classify[*sharedtypes.Opponent](err)
		}

		opp.Name = name
		if color := strings.TrimSpace(req.Color); color != "" {
			opp.Color = color
		}
		if err := s.repo.Save(ctx, db, *opp); err != nil {
			return results.OperationResult[*sharedtypes.Opponent, error]{}, err
		}
		return results.SuccessResult[*sharedtypes.Opponent, error](opp), nil
	})
}

// DeleteOpponent removes an opponent and all their games. Results of the
// opponent's finished games are revoked.
func (s *OpponentService) DeleteOpponent(ctx context.Context, id string) error {
	var events []scoreevents.Outbound
	_, err := operation.Run(s.ops, ctx, "DeleteOpponent", id, func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
		opp, err := s.loadOpponent(ctx, db, id)
		if err != nil {
			return classify[struct{}](err)
		}
		if err := s.repo.Delete(ctx, db, id); err != nil {
			return results.OperationResult[struct{}, error]{}, err
		}

		var finished []string
		for _, g := range opp.Games {
			if g.Winner.Valid() {
				finished = append(finished, g.ID)
			}
		}
		events = scoreevents.Revoked(scoreevents.RevokeReasonOpponentDeleted, finished...)
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	if err != nil {
		return err
	}
	scoreevents.Publish(ctx, s.publisher, s.logger, events)
	return nil
}

// OpponentStats totals points and wins across every game with an opponent.
func (s *OpponentService) OpponentStats(ctx context.Context, id string) (*Stats, error) {
	return operation.Run(s.ops, ctx, "OpponentStats", id, func(ctx context.Context, db bun.IDB) (results.OperationResult[*Stats, error], error) {
		opp, err := s.loadOpponent(ctx, db, id)
		if err != nil {
			return classify[*Stats](err)
		}
		return results.SuccessResult[*Stats, error](buildStats(opp)), nil
	})
}

func buildStats(opp *sharedtypes.Opponent) *Stats {
	stats := &Stats{
		OpponentID:  opp.ID,
		Name:        opp.Name,
		GamesPlayed: len(opp.Games),
		Games:       make([]GameSummary, 0, len(opp.Games)),
	}

	for i := len(opp.Games) - 1; i >= 0; i-- {
		g := opp.Games[i]
		user, opponent := scoring.Totals(g.ScoreHistory)
		stats.UserPoints += user
		stats.OpponentPoints += opponent
		switch g.Winner {
		case sharedtypes.SideUser:
			stats.UserWins++
		case sharedtypes.SideOpponent:
			stats.OpponentWins++
		}

		summary := GameSummary{
			ID:            g.ID,
			Date:          g.Date,
			Winner:        g.Winner,
			InProgress:    !g.Winner.Valid(),
			Rounds:        len(g.ScoreHistory),
			UserTotal:     user,
			OpponentTotal: opponent,
		}
		if n := len(g.ScoreHistory); n > 0 {
			last := g.ScoreHistory[n-1].Date
			summary.LastPlayed = &last
			if stats.LastPlayed == nil || last.After(*stats.LastPlayed) {
				stats.LastPlayed = &last
			}
		}
		stats.Games = append(stats.Games, summary)
	}
	return stats
}

// CreateGame starts a game against an opponent. Free users get
// Limits.MaxFreeGamesPerOpponent games per opponent.
func (s *OpponentService) CreateGame(ctx context.Context, opponentID string, req CreateGameRequest) (*GameView, error) {
	return operation.Run(s.ops, ctx, "CreateGame", opponentID, func(ctx context.Context, db bun.IDB) (results.OperationResult[*GameView, error], error) {
		return s.createGameLogic(ctx, db, opponentID, req)
	})
}

func (s *OpponentService) createGameLogic(ctx context.Context, db bun.IDB, opponentID string, req CreateGameRequest) (results.OperationResult[*GameView, error], error) {
	opp, err := s.loadOpponent(ctx, db, opponentID)
	if err != nil {
		return classify[*GameView](err)
	}
	settings, err := s.settings.Get(ctx, db)
	if err != nil {
		return results.OperationResult[*GameView, error]{}, fmt.Errorf("failed to load settings: %w", err)
	}

	target := settings.TargetScore
	if req.TargetScore != nil {
		target = *req.TargetScore
	}
	if target <= 0 {
		return results.FailureResult[*GameView, error](ErrInvalidTarget), nil
	}
	for _, v := range []*int{req.GinBonus, req.BigGinBonus, req.UndercutBonus} {
		if v != nil && *v < 0 {
			return results.FailureResult[*GameView, error](ErrInvalidBonusValue), nil
		}
	}

	allowed, err := s.withinLimit(ctx, db, len(opp.Games), s.limits().MaxFreeGamesPerOpponent)
	if err != nil {
		return results.OperationResult[*GameView, error]{}, err
	}
	if !allowed {
		s.metrics.RecordPaywallBlocked(ctx, "games_per_opponent")
		return results.FailureResult[*GameView, error](paywallservice.ErrPaywallRequired), nil
	}

	game := sharedtypes.Game{
		ID:            s.newID(),
		Date:          s.now(),
		ScoreHistory:  []sharedtypes.Round{},
		Notes:         strings.TrimSpace(req.Notes),
		TargetScore:   target,
		GinBonus:      copyInt(req.GinBonus),
		BigGinBonus:   copyInt(req.BigGinBonus),
		UndercutBonus: copyInt(req.UndercutBonus),
	}
	opp.Games = append(opp.Games, game)
	if err := s.repo.Save(ctx, db, *opp); err != nil {
		return results.OperationResult[*GameView, error]{}, err
	}
	return results.SuccessResult[*GameView, error](newGameView(opp.ID, game, settings)), nil
}

// GetGame returns a game with its totals.
func (s *OpponentService) GetGame(ctx context.Context, opponentID, gameID string) (*GameView, error) {
	return operation.Run(s.ops, ctx, "GetGame", gameID, func(ctx context.Context, db bun.IDB) (results.OperationResult[*GameView, error], error) {
		opp, idx, err := s.loadGame(ctx, db, opponentID, gameID)
		if err != nil {
			return classify[*GameView](err)
		}
		settings, err := s.settings.Get(ctx, db)
		if err != nil {
			return results.OperationResult[*GameView, error]{}, fmt.Errorf("failed to load settings: %w", err)
		}
		return results.SuccessResult[*GameView, error](newGameView(opp.ID, opp.Games[idx], settings)), nil
	})
}

// DeleteGame removes a game. A finished game's results are revoked.
func (s *OpponentService) DeleteGame(ctx context.Context, opponentID, gameID string) error {
	var events []scoreevents.Outbound
	_, err := operation.Run(s.ops, ctx, "DeleteGame", gameID, func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
		opp, idx, err := s.loadGame(ctx, db, opponentID, gameID)
		if err != nil {
			return classify[struct{}](err)
		}
		finished := opp.Games[idx].Winner.Valid()

		opp.Games = append(opp.Games[:idx], opp.Games[idx+1:]...)
		if err := s.repo.Save(ctx, db, *opp); err != nil {
			return results.OperationResult[struct{}, error]{}, err
		}
		if finished {
			events = scoreevents.Revoked(scoreevents.RevokeReasonGameDeleted, gameID)
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
	completed bool
	events    []scoreevents.Outbound
}

// AddRound appends a hand and recomputes the winner.
func (s *OpponentService) AddRound(ctx context.Context, opponentID, gameID string, in RoundInput) (*GameView, error) {
	var outcome roundOutcome
	view, err := operation.Run(s.ops, ctx, "AddRound", gameID, func(ctx context.Context, db bun.IDB) (results.OperationResult[*GameView, error], error) {
		return s.recordRoundLogic(ctx, db, opponentID, gameID, -1, in, &outcome)
	})
	if err != nil {
		return nil, err
	}
	s.afterRound(ctx, outcome)
	return view, nil
}

// EditRound replaces the hand at index. The hand keeps its original date.
func (s *OpponentService) EditRound(ctx context.Context, opponentID, gameID string, index int, in RoundInput) (*GameView, error) {
	var outcome roundOutcome
	view, err := operation.Run(s.ops, ctx, "EditRound", gameID, func(ctx context.Context, db bun.IDB) (results.OperationResult[*GameView, error], error) {
		if index < 0 {
			return results.FailureResult[*GameView, error](fmt.Errorf("%w: %d", scoring.ErrRoundIndex, index)), nil
		}
		return s.recordRoundLogic(ctx, db, opponentID, gameID, index, in, &outcome)
	})
	if err != nil {
		return nil, err
	}
	s.afterRound(ctx, outcome)
	return view, nil
}

// recordRoundLogic appends when index is negative, otherwise replaces.
func (s *OpponentService) recordRoundLogic(
	ctx context.Context,
	db bun.IDB,
	opponentID, gameID string,
	index int,
	in RoundInput,
	outcome *roundOutcome,
) (results.OperationResult[*GameView, error], error) {
	opp, idx, err := s.loadGame(ctx, db, opponentID, gameID)
	if err != nil {
		return classify[*GameView](err)
	}
	game := &opp.Games[idx]
	editing := index >= 0

	settings, err := s.settings.Get(ctx, db)
	if err != nil {
		return results.OperationResult[*GameView, error]{}, fmt.Errorf("failed to load settings: %w", err)
	}

	base, err := scoring.ParseScore(in.Score)
	if err != nil {
		return results.FailureResult[*GameView, error](err), nil
	}

	at := s.now()
	if editing {
		if index >= len(game.ScoreHistory) {
			return results.FailureResult[*GameView, error](fmt.Errorf("%w: %d", scoring.ErrRoundIndex, index)), nil
		}
		at = game.ScoreHistory[index].Date
	}
	round, err := scoring.NewGinRound(in.Winner, base, in.Bonus, scoring.EffectiveBonusValues(*game, settings), at)
	if err != nil {
		return results.FailureResult[*GameView, error](err), nil
	}

	ceiling := s.limits().FreeScoreCeiling
	if ceiling > 0 {
		paid, err := s.hasPaid(ctx, db)
		if err != nil {
			return results.OperationResult[*GameView, error]{}, err
		}
		allowed := scoring.CanAddScore(game.ScoreHistory, round, paid, ceiling)
		if editing {
			allowed, _ = scoring.CanReplaceRound(game.ScoreHistory, index, round, paid, ceiling)
		}
		if !allowed {
			s.metrics.RecordPaywallBlocked(ctx, "score_ceiling")
			return results.FailureResult[*GameView, error](paywallservice.ErrPaywallRequired), nil
		}
	}

	if editing {
		game.ScoreHistory, _ = scoring.ReplaceAt(game.ScoreHistory, index, round)
	} else {
		game.ScoreHistory = append(game.ScoreHistory, round)
	}

	previous := game.Winner
	game.Winner = scoring.CalculateWinner(game.ScoreHistory, targetFor(*game, settings), s.tieBreak)
	switch {
	case !game.Winner.Valid():
		game.CompletedAt = nil
	case game.Winner != previous || game.CompletedAt == nil:
		now := s.now()
		game.CompletedAt = &now
	}

	if err := s.repo.Save(ctx, db, *opp); err != nil {
		return results.OperationResult[*GameView, error]{}, err
	}

	view := newGameView(opp.ID, *game, settings)
	switch {
	case game.Winner.Valid():
		outcome.completed = !previous.Valid()
		outcome.events = []scoreevents.Outbound{scoreevents.Completed(completedPayload(opp, view, settings))}
	case previous.Valid():
		outcome.events = scoreevents.Revoked(scoreevents.RevokeReasonGameReopened, game.ID)
	}
	return results.SuccessResult[*GameView, error](view), nil
}

func (s *OpponentService) afterRound(ctx context.Context, outcome roundOutcome) {
	s.metrics.RecordRoundRecorded(ctx, string(sharedtypes.KindGin))
	if outcome.completed {
		s.metrics.RecordGameCompleted(ctx, string(sharedtypes.KindGin))
	}
	scoreevents.Publish(ctx, s.publisher, s.logger, outcome.events)
}

// SetKnockValue records or clears the knock value of a game.
func (s *OpponentService) SetKnockValue(ctx context.Context, opponentID, gameID string, value *int) (*GameView, error) {
	return operation.Run(s.ops, ctx, "SetKnockValue", gameID, func(ctx context.Context, db bun.IDB) (results.OperationResult[*GameView, error], error) {
		if value != nil && *value < 0 {
			return results.FailureResult[*GameView, error](ErrInvalidKnockValue), nil
		}
		opp, idx, err := s.loadGame(ctx, db, opponentID, gameID)
		if err != nil {
			return classify[*GameView](err)
		}
		settings, err := s.settings.Get(ctx, db)
		if err != nil {
			return results.OperationResult[*GameView, error]{}, fmt.Errorf("failed to load settings: %w", err)
		}

		opp.Games[idx].KnockValue = copyInt(value)
		if err := s.repo.Save(ctx, db, *opp); err != nil {
			return results.OperationResult[*GameView, error]{}, err
		}
		return results.SuccessResult[*GameView, error](newGameView(opp.ID, opp.Games[idx], settings)), nil
	})
}

func (s *OpponentService) loadOpponent(ctx context.Context, db bun.IDB, id string) (*sharedtypes.Opponent, error) {
	opp, err := s.repo.Get(ctx, db, id)
	if errors.Is(err, opponentdb.ErrNotFound) {
		return nil, ErrOpponentNotFound
	}
	return opp, err
}

func (s *OpponentService) loadGame(ctx context.Context, db bun.IDB, opponentID, gameID string) (*sharedtypes.Opponent, int, error) {
	opp, err := s.loadOpponent(ctx, db, opponentID)
	if err != nil {
		return nil, 0, err
	}
	for i := range opp.Games {
		if opp.Games[i].ID == gameID {
			return opp, i, nil
		}
	}
	return nil, 0, ErrGameNotFound
}

func (s *OpponentService) limits() paywallservice.Limits {
	if s.paywall == nil {
		return paywallservice.Limits{}
	}
	return s.paywall.Limits()
}

func (s *OpponentService) hasPaid(ctx context.Context, db bun.IDB) (bool, error) {
	if s.paywall == nil {
		return true, nil
	}
	paid, err := s.paywall.HasPaid(ctx, db)
	if err != nil {
		return false, fmt.Errorf("failed to read paid flag: %w", err)
	}
	return paid, nil
}

// withinLimit reports whether one more item may be added to count items
// under a free-tier limit.
func (s *OpponentService) withinLimit(ctx context.Context, db bun.IDB, count, limit int) (bool, error) {
	if limit <= 0 || count < limit {
		return true, nil
	}
	return s.hasPaid(ctx, db)
}

// classify reports lookup misses as domain failures and everything else as
// infrastructure errors.
func classify[S any](err error) (results.OperationResult[S, error], error) {
	if errors.Is(err, ErrOpponentNotFound) || errors.Is(err, ErrGameNotFound) {
		return results.FailureResult[S, error](err), nil
	}
	return results.OperationResult[S, error]{}, err
}

// targetFor falls back to the settings target for games stored without one.
func targetFor(game sharedtypes.Game, settings sharedtypes.Settings) int {
	if game.TargetScore > 0 {
		return game.TargetScore
	}
	return settings.TargetScore
}

func newGameView(opponentID string, game sharedtypes.Game, settings sharedtypes.Settings) *GameView {
	user, opponent := scoring.Totals(game.ScoreHistory)
	return &GameView{
		OpponentID:    opponentID,
		Game:          game,
		UserTotal:     user,
		OpponentTotal: opponent,
		BonusValues:   scoring.EffectiveBonusValues(game, settings),
	}
}

// completedPayload dates the result from when the game gained its current
// winner, so edits that keep the winner republish the same moment.
func completedPayload(opp *sharedtypes.Opponent, view *GameView, settings sharedtypes.Settings) scoreevents.GameCompletedPayloadV1 {
	return scoreevents.GameCompletedPayloadV1{
		GameID:      view.ID,
		Kind:        sharedtypes.KindGin,
		OpponentID:  opp.ID,
		TargetScore: targetFor(view.Game, settings),
		Rounds:      len(view.ScoreHistory),
		CompletedAt: *view.CompletedAt,
		Participants: []scoreevents.ParticipantResultV1{
			{Name: settings.UserName, IsUser: true, Total: view.UserTotal, Winner: view.Winner == sharedtypes.SideUser},
			{Name: opp.Name, Total: view.OpponentTotal, Winner: view.Winner == sharedtypes.SideOpponent},
		},
	}
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

var _ Service = (*OpponentService)(nil)
