package leaderboardservice

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	leaderboarddb "github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard/infrastructure/repositories"
	scoreevents "github.com/Black-And-White-Club/card-scorekeeper/app/shared/events"
	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/servicemetrics"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/operation"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/results"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/timeparse"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// LeaderboardService implements the Service interface.
type LeaderboardService struct {
	repo    leaderboarddb.Repository
	since   *timeparse.Parser
	palette ChartPalette
	logger  *slog.Logger
	metrics servicemetrics.Metrics
	ops     *operation.Runner
	now     func() time.Time
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(
	repo leaderboarddb.Repository,
	logger *slog.Logger,
	metrics servicemetrics.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
) *LeaderboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = servicemetrics.NewNoop()
	}
	s := &LeaderboardService{
		repo:    repo,
		palette: DefaultPalette(),
		logger:  logger,
		metrics: metrics,
		ops: &operation.Runner{
			Service: "LeaderboardService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
			DB:      db,
		},
		now: func() time.Time { return time.Now().UTC() },
	}
	s.since = timeparse.New(clockFunc(func() time.Time { return s.now() }), time.UTC)
	return s
}

type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }

// RecordCompleted stores one row per participant of a finished game,
// replacing any rows already recorded for it.
func (s *LeaderboardService) RecordCompleted(ctx context.Context, payload scoreevents.GameCompletedPayloadV1) error {
	_, err := operation.Run(s.ops, ctx, "RecordCompleted", payload.GameID, func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
		if strings.TrimSpace(payload.GameID) == "" || len(payload.Participants) == 0 {
			return results.FailureResult[struct{}, error](ErrInvalidResult), nil
		}

		recordedAt := s.now()
		completedAt := payload.CompletedAt.UTC()
		if payload.CompletedAt.IsZero() {
			completedAt = recordedAt
		}

		rows := make([]leaderboarddb.GameResult, 0, len(payload.Participants))
		for _, p := range payload.Participants {
			rows = append(rows, leaderboarddb.GameResult{
				GameID:          payload.GameID,
				ParticipantName: strings.TrimSpace(p.Name),
				Kind:            string(payload.Kind),
				OpponentID:      payload.OpponentID,
				IsUser:          p.IsUser,
				Total:           p.Total,
				Winner:          p.Winner,
				Rounds:          payload.Rounds,
				TargetScore:     payload.TargetScore,
				CompletedAt:     completedAt,
				RecordedAt:      recordedAt,
			})
		}
		if err := s.repo.RecordGame(ctx, db, rows); err != nil {
			return results.OperationResult[struct{}, error]{}, err
		}
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	return err
}

// RevokeGames drops the rows of the given games and returns how many went.
func (s *LeaderboardService) RevokeGames(ctx context.Context, payload scoreevents.GameResultsRevokedPayloadV1) (int, error) {
	return operation.Run(s.ops, ctx, "RevokeGames", payload.Reason, func(ctx context.Context, db bun.IDB) (results.OperationResult[int, error], error) {
		if len(payload.GameIDs) == 0 {
			return results.FailureResult[int, error](ErrNoGamesToRevoke), nil
		}
		n, err := s.repo.DeleteGames(ctx, db, payload.GameIDs)
		if err != nil {
			return results.OperationResult[int, error]{}, err
		}
		return results.SuccessResult[int, error](n), nil
	})
}

// Standings ranks every participant of one game kind.
func (s *LeaderboardService) Standings(ctx context.Context, kind sharedtypes.GameKind) ([]Standing, error) {
	return operation.Run(s.ops, ctx, "Standings", string(kind), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]Standing, error], error) {
		if !validKind(kind) {
			return results.FailureResult[[]Standing, error](ErrInvalidKind), nil
		}
		rows, err := s.repo.ListResults(ctx, db, leaderboarddb.ResultFilter{Kind: string(kind)})
		if err != nil {
			return results.OperationResult[[]Standing, error]{}, err
		}
		return results.SuccessResult[[]Standing, error](aggregate(rows)), nil
	})
}

// History lists a participant's results since the given cutoff.
func (s *LeaderboardService) History(ctx context.Context, participant, since string) ([]HistoryEntry, error) {
	return operation.Run(s.ops, ctx, "History", participant, func(ctx context.Context, db bun.IDB) (results.OperationResult[[]HistoryEntry, error], error) {
		if strings.TrimSpace(participant) == "" {
			return results.FailureResult[[]HistoryEntry, error](ErrParticipantRequired), nil
		}
		cutoff, err := s.since.ParseSince(since)
		if err != nil {
			return results.FailureResult[[]HistoryEntry, error](fmt.Errorf("%w: %w", ErrInvalidSince, err)), nil
		}
		entries, err := s.history(ctx, db, participant, cutoff)
		if err != nil {
			return results.OperationResult[[]HistoryEntry, error]{}, err
		}
		return results.SuccessResult[[]HistoryEntry, error](entries), nil
	})
}

// HistoryChart renders a participant's cumulative wins as a PNG.
func (s *LeaderboardService) HistoryChart(ctx context.Context, participant string) ([]byte, error) {
	return operation.Run(s.ops, ctx, "HistoryChart", participant, func(ctx context.Context, db bun.IDB) (results.OperationResult[[]byte, error], error) {
		if strings.TrimSpace(participant) == "" {
			return results.FailureResult[[]byte, error](ErrParticipantRequired), nil
		}
		entries, err := s.history(ctx, db, participant, time.Time{})
		if err != nil {
			return results.OperationResult[[]byte, error]{}, err
		}
		png, err := GenerateWinsChart(strings.TrimSpace(participant), entries, s.palette)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, fmt.Errorf("failed to render chart: %w", err)
		}
		return results.SuccessResult[[]byte, error](png), nil
	})
}

// ExportXLSX builds a workbook of the standings and every recorded result.
func (s *LeaderboardService) ExportXLSX(ctx context.Context) ([]byte, error) {
	return operation.Run(s.ops, ctx, "ExportXLSX", "all", func(ctx context.Context, db bun.IDB) (results.OperationResult[[]byte, error], error) {
		rows, err := s.repo.ListResults(ctx, db, leaderboarddb.ResultFilter{})
		if err != nil {
			return results.OperationResult[[]byte, error]{}, err
		}
		data, err := BuildWorkbook(aggregate(rows), rows)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, fmt.Errorf("failed to build workbook: %w", err)
		}
		return results.SuccessResult[[]byte, error](data), nil
	})
}

// history lists a participant's rows with a running win count.
func (s *LeaderboardService) history(ctx context.Context, db bun.IDB, participant string, since time.Time) ([]HistoryEntry, error) {
	rows, err := s.repo.ListResults(ctx, db, leaderboarddb.ResultFilter{Participant: participant})
	if err != nil {
		return nil, err
	}
	entries := make([]HistoryEntry, 0, len(rows))
	wins := 0
	for _, r := range rows {
		if r.Winner {
			wins++
		}
		if !since.IsZero() && r.CompletedAt.Before(since) {
			continue
		}
		entries = append(entries, HistoryEntry{
			GameID:      r.GameID,
			Kind:        sharedtypes.GameKind(r.Kind),
			CompletedAt: r.CompletedAt,
			Total:       r.Total,
			Winner:      r.Winner,
			Rounds:      r.Rounds,
			TargetScore: r.TargetScore,
			Wins:        wins,
		})
	}
	return entries, nil
}

func validKind(kind sharedtypes.GameKind) bool {
	return kind == "" || kind == sharedtypes.KindGin || kind == sharedtypes.KindHearts
}

// aggregate groups rows by participant name, ignoring case. Standings are
// ordered by wins, then win rate, then name.
func aggregate(rows []leaderboarddb.GameResult) []Standing {
	byName := make(map[string]*Standing)
	order := []string{}
	for _, r := range rows {
		key := strings.ToLower(r.ParticipantName)
		st, ok := byName[key]
		if !ok {
			st = &Standing{Participant: r.ParticipantName}
			byName[key] = st
			order = append(order, key)
		}
		st.IsUser = st.IsUser || r.IsUser
		st.Games++
		st.Points += r.Total
		if r.Winner {
			st.Wins++
		} else {
			st.Losses++
		}
		if r.CompletedAt.After(st.LastPlayed) {
			st.LastPlayed = r.CompletedAt
		}
	}

	out := make([]Standing, 0, len(order))
	for _, key := range order {
		st := byName[key]
		st.WinRate = float64(st.Wins) / float64(st.Games)
		out = append(out, *st)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate > out[j].WinRate
		}
		return strings.ToLower(out[i].Participant) < strings.ToLower(out[j].Participant)
	})
	return out
}

var _ Service = (*LeaderboardService)(nil)
