package testutils

import (
	"context"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"

	"github.com/Black-And-White-Club/card-scorekeeper/app"
	"github.com/Black-And-White-Club/card-scorekeeper/integration_tests/containers"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/database"
)

// TestEnvironment holds the shared containers and a migrated database.
type TestEnvironment struct {
	Ctx           context.Context
	PgContainer   *postgres.PostgresContainer
	NatsContainer *nats.NATSContainer
	DB            *bun.DB
	PgDSN         string
	NatsURL       string
}

// NewTestEnvironment starts Postgres and NATS and applies every migration
// group. It skips the test when Docker is unavailable or -short is set.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	env := &TestEnvironment{Ctx: context.Background()}

	pg, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("postgres: %v", err)
	}
	env.PgContainer, env.PgDSN = pg, dsn

	nc, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		env.Cleanup()
		t.Fatalf("nats: %v", err)
	}
	env.NatsContainer, env.NatsURL = nc, natsURL

	db, err := database.Open(ctx, dsn)
	if err != nil {
		env.Cleanup()
		t.Fatalf("open database: %v", err)
	}
	env.DB = db

	if err := database.Migrate(ctx, db, app.MigrationGroups()...); err != nil {
		env.Cleanup()
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(env.Cleanup)
	return env
}

// Reset empties the tables the modules write to.
func (env *TestEnvironment) Reset(ctx context.Context) error {
	for _, table := range []string{"kv_entries", "game_results"} {
		if _, err := env.DB.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s", table)); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// Cleanup closes the database and terminates the containers.
func (env *TestEnvironment) Cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if env.DB != nil {
		if err := env.DB.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
		env.DB = nil
	}
	if env.NatsContainer != nil {
		if err := env.NatsContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating NATS container: %v", err)
		}
		env.NatsContainer = nil
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating Postgres container: %v", err)
		}
		env.PgContainer = nil
	}
}
