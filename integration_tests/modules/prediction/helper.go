package predictionintegrationtests

import (
	"context"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/Black-And-White-Club/betting-pool/app/modules/competition"
	"github.com/Black-And-White-Club/betting-pool/app/modules/leaderboard"
	"github.com/Black-And-White-Club/betting-pool/app/modules/prediction"
	"github.com/Black-And-White-Club/betting-pool/app/modules/standings"
	"github.com/Black-And-White-Club/betting-pool/integration_tests/testutils"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
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
		log.Println("Initializing prediction test environment...")
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
	Prediction  *prediction.Module
	Leaderboard *leaderboard.Module
}

// SetupTestPredictionModule wires every module and runs the watermill router
// and the recompute queue until the test ends.
func SetupTestPredictionModule(t *testing.T) TestDeps {
	t.Helper()
	env := GetTestEnv(t)
	if err := env.Reset(); err != nil {
		t.Fatalf("Failed to reset environment: %v", err)
	}
	obs := env.Observability

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: time.Second}, watermill.NopLogger{})
	if err != nil {
		t.Fatalf("Failed to create watermill router: %v", err)
	}

	comp := competition.NewCompetitionModule(env.Ctx, env.DB, obs, env.EventBus, time.UTC)
	stand := standings.NewStandingsModule(env.Ctx, env.DB, obs, comp.Repository)
	pred, err := prediction.NewPredictionModule(env.Ctx, env.Config, env.DB, obs, prediction.Deps{
		Fixtures:  comp.Repository,
		Snapshots: stand.Snapshots,
	}, router, env.EventBus, env.EventBus)
	if err != nil {
		t.Fatalf("Failed to create prediction module: %v", err)
	}
	lb := leaderboard.NewLeaderboardModule(env.Ctx, env.DB, obs, comp.Repository, pred.Repository, stand.Snapshots)
	pred.Service.SetDeadlineResolver(lb.Service)

	runCtx, cancel := context.WithCancel(env.Ctx)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := router.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Watermill router stopped with error: %v", err)
		}
	}()
	<-router.Running()
	go func() {
		if err := pred.Run(runCtx, &wg); err != nil {
			t.Errorf("Prediction module stopped with error: %v", err)
		}
	}()

	t.Cleanup(func() {
		cancel()
		wg.Wait()
		if err := pred.Close(5 * time.Second); err != nil {
			t.Errorf("Failed to close prediction module: %v", err)
		}
	})

	return TestDeps{
		Env:         env,
		Competition: comp,
		Standings:   stand,
		Prediction:  pred,
		Leaderboard: lb,
	}
}
