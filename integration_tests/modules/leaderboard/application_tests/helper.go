package leaderboardintegrationtests

import (
	"io"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel/trace/noop"

	leaderboardservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard/application"
	leaderboarddb "github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/card-scorekeeper/integration_tests/testutils"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/servicemetrics"
)

// TestDeps holds a leaderboard service backed by the Postgres container.
type TestDeps struct {
	Env     *testutils.TestEnvironment
	Service leaderboardservice.Service
	Gen     *testutils.TestDataGenerator
}

func SetupTestLeaderboardService(t *testing.T) TestDeps {
	t.Helper()
	env := testutils.NewTestEnvironment(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := leaderboardservice.NewLeaderboardService(
		leaderboarddb.NewRepository(env.DB),
		logger,
		servicemetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("leaderboard-integration"),
		env.DB,
	)

	return TestDeps{
		Env:     env,
		Service: service,
		Gen:     testutils.NewTestDataGenerator(7),
	}
}
