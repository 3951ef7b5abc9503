package app

import (
	leaderboardmigrations "github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/database"
	kvmigrations "github.com/Black-And-White-Club/card-scorekeeper/internal/kvstore/migrations"
)

// MigrationGroups lists every module's migrations in apply order.
func MigrationGroups() []database.MigrationGroup {
	return []database.MigrationGroup{
		{Name: "kv", Migrations: kvmigrations.Migrations},
		{Name: "leaderboard", Migrations: leaderboardmigrations.Migrations},
	}
}
