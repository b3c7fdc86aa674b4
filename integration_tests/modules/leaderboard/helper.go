package leaderboardintegrationtests

import (
	"log"
	"sync"
	"testing"
	"time"

	"github.com/Black-And-White-Club/betting-pool/app/modules/competition"
	"github.com/Black-And-White-Club/betting-pool/app/modules/leaderboard"
	predictionservice "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/application"
	predictiondb "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/infrastructure/repositories"
	"github.com/Black-And-White-Club/betting-pool/app/modules/standings"
	"github.com/Black-And-White-Club/betting-pool/integration_tests/testutils"
)

// Global variables for the test environment, initialized once.
var (
	testEnv     *testutils.TestEnvironment
	testEnvOnce sync.Once
	testEnvErr  error
)

func GetTestEnv(t *testing.T) *testutils.TestEnvironment {
	t.Helper()
	testEnvOnce.Do(func() {
		log.Println("Initializing leaderboard test environment...")
		testEnv, testEnvErr = testutils.NewTestEnvironment()
	})
	if testEnvErr != nil {
		t.Fatalf("Failed to set up test environment: %v", testEnvErr)
	}
	return testEnv
}

type TestDeps struct {
	Env         *testutils.TestEnvironment
	Competition *competition.Module
	Standings   *standings.Module
	Predictions *predictionservice.PredictionService
	Leaderboard *leaderboard.Module
}

// SetupTestLeaderboardService wires the modules without the event consumers;
// tests recompute fixtures directly.
func SetupTestLeaderboardService(t *testing.T) TestDeps {
	t.Helper()
	env := GetTestEnv(t)
	if err := env.Reset(); err != nil {
		t.Fatalf("Failed to reset environment: %v", err)
	}
	obs := env.Observability

	comp := competition.NewCompetitionModule(env.Ctx, env.DB, obs, nil, time.UTC)
	stand := standings.NewStandingsModule(env.Ctx, env.DB, obs, comp.Repository)
	predRepo := predictiondb.NewRepository(env.DB)
	pred := predictionservice.NewPredictionService(predRepo, comp.Repository, stand.Snapshots, obs.Logger, obs.Metrics, obs.Tracer, env.DB)
	lb := leaderboard.NewLeaderboardModule(env.Ctx, env.DB, obs, comp.Repository, predRepo, stand.Snapshots)
	pred.SetDeadlineResolver(lb.Service)

	return TestDeps{
		Env:         env,
		Competition: comp,
		Standings:   stand,
		Predictions: pred,
		Leaderboard: lb,
	}
}
