package leaderboardapi

import (
	"context"

	leaderboardservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard/application"
	scoreevents "github.com/Black-And-White-Club/card-scorekeeper/app/shared/events"
	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	trace []string

	RecordCompletedFunc func(ctx context.Context, payload scoreevents.GameCompletedPayloadV1) error
	RevokeGamesFunc     func(ctx context.Context, payload scoreevents.GameResultsRevokedPayloadV1) (int, error)
	StandingsFunc       func(ctx context.Context, kind sharedtypes.GameKind) ([]leaderboardservice.Standing, error)
	HistoryFunc         func(ctx context.Context, participant, since string) ([]leaderboardservice.HistoryEntry, error)
	HistoryChartFunc    func(ctx context.Context, participant string) ([]byte, error)
	ExportXLSXFunc      func(ctx context.Context) ([]byte, error)
}

func (f *FakeService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeService) Trace() []string {
	return append([]string{}, f.trace...)
}

func (f *FakeService) RecordCompleted(ctx context.Context, payload scoreevents.GameCompletedPayloadV1) error {
	f.record("RecordCompleted")
	if f.RecordCompletedFunc != nil {
		return f.RecordCompletedFunc(ctx, payload)
	}
	return nil
}

func (f *FakeService) RevokeGames(ctx context.Context, payload scoreevents.GameResultsRevokedPayloadV1) (int, error) {
	f.record("RevokeGames")
	if f.RevokeGamesFunc != nil {
		return f.RevokeGamesFunc(ctx, payload)
	}
	return len(payload.GameIDs), nil
}

func (f *FakeService) Standings(ctx context.Context, kind sharedtypes.GameKind) ([]leaderboardservice.Standing, error) {
	f.record("Standings")
	if f.StandingsFunc != nil {
		return f.StandingsFunc(ctx, kind)
	}
	return []leaderboardservice.Standing{}, nil
}

func (f *FakeService) History(ctx context.Context, participant, since string) ([]leaderboardservice.HistoryEntry, error) {
	f.record("History")
	if f.HistoryFunc != nil {
		return f.HistoryFunc(ctx, participant, since)
	}
	return []leaderboardservice.HistoryEntry{}, nil
}

func (f *FakeService) HistoryChart(ctx context.Context, participant string) ([]byte, error) {
	f.record("HistoryChart")
	if f.HistoryChartFunc != nil {
		return f.HistoryChartFunc(ctx, participant)
	}
	return []byte{}, nil
}

func (f *FakeService) ExportXLSX(ctx context.Context) ([]byte, error) {
	f.record("ExportXLSX")
	if f.ExportXLSXFunc != nil {
		return f.ExportXLSXFunc(ctx)
	}
	return []byte{}, nil
}

var _ leaderboardservice.Service = (*FakeService)(nil)
