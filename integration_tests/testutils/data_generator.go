package testutils

import (
	"fmt"
	"strings"
	"time"

	competitionservice "github.com/Black-And-White-Club/betting-pool/app/modules/competition/application"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/brianvoe/gofakeit/v7"
)

// TestDataGenerator creates pool test data. A fixed seed reproduces a run.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a generator with an optional seed.
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	s := time.Now().UnixNano()
	if len(seed) > 0 {
		s = seed[0]
	}
	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

// Seed returns the generator seed.
func (g *TestDataGenerator) Seed() int64 { return g.seed }

// Participant is a generated pool member.
type Participant struct {
	UserID      sharedtypes.UserID
	DisplayName string
}

// GenerateTeams returns count teams with distinct names.
func (g *TestDataGenerator) GenerateTeams(count int) []competitionservice.TeamInput {
	teams := make([]competitionservice.TeamInput, 0, count)
	seen := make(map[string]bool, count)
	for len(teams) < count {
		name := fmt.Sprintf("%s %s", g.faker.City(), g.faker.RandomString([]string{"FC", "United", "City", "Athletic", "Rovers"}))
		if seen[name] {
			continue
		}
		seen[name] = true
		teams = append(teams, competitionservice.TeamInput{
			Name:  name,
			Short: strings.ToUpper(name[:3]) + fmt.Sprint(len(teams)),
		})
	}
	return teams
}

// GenerateParticipants returns count users with distinct IDs.
func (g *TestDataGenerator) GenerateParticipants(count int) []Participant {
	out := make([]Participant, count)
	for i := range out {
		out[i] = Participant{
			UserID:      sharedtypes.UserID(fmt.Sprintf("user-%d-%s", i, g.faker.Numerify("####"))),
			DisplayName: g.faker.Name(),
		}
	}
	return out
}

// GenerateScore returns a plausible football score.
func (g *TestDataGenerator) GenerateScore() (home, away int) {
	return g.faker.Number(0, 4), g.faker.Number(0, 4)
}
