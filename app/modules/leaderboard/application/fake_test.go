package leaderboardservice

import (
	"context"
	"strings"

	leaderboarddb "github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Leaderboard Repo
// ------------------------

// FakeLeaderboardRepo keeps rows in memory unless a Func overrides a call.
type FakeLeaderboardRepo struct {
	trace []string
	rows  []leaderboarddb.GameResult

	RecordGameFunc  func(ctx context.Context, db bun.IDB, rows []leaderboarddb.GameResult) error
	DeleteGamesFunc func(ctx context.Context, db bun.IDB, gameIDs []string) (int, error)
	ListResultsFunc func(ctx context.Context, db bun.IDB, filter leaderboarddb.ResultFilter) ([]leaderboarddb.GameResult, error)
}

func NewFakeLeaderboardRepo(seed ...leaderboarddb.GameResult) *FakeLeaderboardRepo {
	return &FakeLeaderboardRepo{
		trace: []string{},
		rows:  append([]leaderboarddb.GameResult{}, seed...),
	}
}

func (f *FakeLeaderboardRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeLeaderboardRepo) RecordGame(ctx context.Context, db bun.IDB, rows []leaderboarddb.GameResult) error {
	f.record("RecordGame")
	if f.RecordGameFunc != nil {
		return f.RecordGameFunc(ctx, db, rows)
	}
	if len(rows) == 0 {
		return nil
	}
	kept := f.rows[:0:0]
	for _, r := range f.rows {
		if r.GameID != rows[0].GameID {
			kept = append(kept, r)
		}
	}
	f.rows = append(kept, rows...)
	return nil
}

func (f *FakeLeaderboardRepo) DeleteGames(ctx context.Context, db bun.IDB, gameIDs []string) (int, error) {
	f.record("DeleteGames")
	if f.DeleteGamesFunc != nil {
		return f.DeleteGamesFunc(ctx, db, gameIDs)
	}
	drop := make(map[string]bool, len(gameIDs))
	for _, id := range gameIDs {
		drop[id] = true
	}
	kept := f.rows[:0:0]
	for _, r := range f.rows {
		if !drop[r.GameID] {
			kept = append(kept, r)
		}
	}
	n := len(f.rows) - len(kept)
	f.rows = kept
	return n, nil
}

func (f *FakeLeaderboardRepo) ListResults(ctx context.Context, db bun.IDB, filter leaderboarddb.ResultFilter) ([]leaderboarddb.GameResult, error) {
	f.record("ListResults")
	if f.ListResultsFunc != nil {
		return f.ListResultsFunc(ctx, db, filter)
	}
	out := []leaderboarddb.GameResult{}
	for _, r := range f.rows {
		if filter.Participant != "" && !strings.EqualFold(r.ParticipantName, strings.TrimSpace(filter.Participant)) {
			continue
		}
		if filter.Kind != "" && r.Kind != filter.Kind {
			continue
		}
		if !filter.Since.IsZero() && r.CompletedAt.Before(filter.Since) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// --- Accessors for assertions ---

func (f *FakeLeaderboardRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeLeaderboardRepo) Rows() []leaderboarddb.GameResult {
	return append([]leaderboarddb.GameResult{}, f.rows...)
}

var _ leaderboarddb.Repository = (*FakeLeaderboardRepo)(nil)
