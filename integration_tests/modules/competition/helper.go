package competitionintegrationtests

import (
	"log"
	"sync"
	"testing"
	"time"

	"github.com/Black-And-White-Club/betting-pool/app/modules/competition"
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
		log.Println("Initializing competition test environment...")
		testEnv, testEnvErr = testutils.NewTestEnvironment()
	})
	if testEnvErr != nil {
		t.Fatalf("Failed to set up test environment: %v", testEnvErr)
	}
	return testEnv
}

type TestDeps struct {
	Env    *testutils.TestEnvironment
	Module *competition.Module
}

func SetupTestCompetitionModule(t *testing.T) TestDeps {
	t.Helper()
	env := GetTestEnv(t)
	if err := env.Reset(); err != nil {
		t.Fatalf("Failed to reset environment: %v", err)
	}

	module := competition.NewCompetitionModule(env.Ctx, env.DB, env.Observability, env.EventBus, time.UTC)
	return TestDeps{Env: env, Module: module}
}
