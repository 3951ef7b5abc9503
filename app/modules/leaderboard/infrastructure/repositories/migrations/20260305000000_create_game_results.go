package leaderboardmigrations

import (
	"context"
	"fmt"

	leaderboarddb "github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating game_results table...")

		if _, err := db.NewCreateTable().Model((*leaderboarddb.GameResult)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_game_results_participant ON game_results (participant_name)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_game_results_completed_at ON game_results (completed_at)").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("game_results table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping game_results table...")

		if _, err := db.NewDropTable().Model((*leaderboarddb.GameResult)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("game_results table dropped successfully!")
		return nil
	})
}
