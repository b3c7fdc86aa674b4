package leaderboardservice

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories"
	predictiondb "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/infrastructure/repositories"
	standingsdomain "github.com/Black-And-White-Club/betting-pool/app/modules/standings/domain"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/Black-And-White-Club/betting-pool/pkg/metrics"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var seasonStart = time.Date(2025, 4, 5, 15, 0, 0, 0, time.UTC)

type world struct {
	competitionID uuid.UUID
	played        []competitiondb.Fixture
	upcoming      competitiondb.Fixture
	fixtures      *FakeFixtureReader
	predictions   *FakePredictionReader
	snapshots     *FakeSnapshotReader
}

func goals(v int) *int { return &v }

// newWorld builds a competition where "ada" leads "bea" and "cal" trails
// after two played fixtures, with one fixture still to come.
func newWorld() *world {
	w := &world{competitionID: uuid.New()}
	fixture := func(day int, home, away sharedtypes.TeamID, hg, ag *int) competitiondb.Fixture {
		return competitiondb.Fixture{
			UUID:            uuid.New(),
			CompetitionUUID: w.competitionID,
			HomeTeamID:      home,
			AwayTeamID:      away,
			StartTime:       seasonStart.Add(time.Duration(day) * 24 * time.Hour),
			HomeGoals:       hg,
			AwayGoals:       ag,
		}
	}
	w.played = []competitiondb.Fixture{
		fixture(0, 1, 2, goals(2), goals(1)),
		fixture(7, 3, 1, goals(0), goals(0)),
	}
	w.upcoming = fixture(14, 1, 3, nil, nil)

	w.fixtures = &FakeFixtureReader{
		Competition: &competitiondb.Competition{
			UUID:       w.competitionID,
			Name:       "Allsvenskan",
			Season:     "2025",
			Rules:      competitiondomain.RuleConfig{RuleSet: competitiondomain.RuleSetDistance, ReferenceTeamID: 1},
			PrizeBands: competitiondomain.PrizeBands{{From: 1, To: 1, Label: "Shirt"}},
		},
		Fixtures: append(append([]competitiondb.Fixture{}, w.played...), w.upcoming),
		Participants: []competitiondb.Participant{
			{CompetitionUUID: w.competitionID, UserID: "ada", DisplayName: "Ada"},
			{CompetitionUUID: w.competitionID, UserID: "bea", DisplayName: "Bea"},
			{CompetitionUUID: w.competitionID, UserID: "cal", DisplayName: "Cal"},
		},
	}
	pred := func(user sharedtypes.UserID, f competitiondb.Fixture, h, a, points int) predictiondb.MatchPrediction {
		return predictiondb.MatchPrediction{UserID: user, FixtureUUID: f.UUID, CompetitionUUID: w.competitionID, HomeGoals: h, AwayGoals: a, Points: points}
	}
	w.predictions = &FakePredictionReader{
		Matches: []predictiondb.MatchPrediction{
			pred("ada", w.played[0], 2, 1, 6),
			pred("ada", w.played[1], 0, 0, 6),
			pred("bea", w.played[0], 1, 0, 3),
			pred("bea", w.played[1], 1, 1, 4),
			pred("cal", w.played[0], 0, 2, 0),
			pred("cal", w.upcoming, 1, 0, 0),
		},
		Tables: []predictiondb.TablePrediction{
			{
				UserID:          "bea",
				CompetitionUUID: w.competitionID,
				TopScorers:      []string{"Nyman"},
				Positions: []*predictiondb.TablePredictionPosition{
					{Position: 1, TeamID: 1}, {Position: 2, TeamID: 2}, {Position: 3, TeamID: 3},
				},
			},
		},
	}
	w.snapshots = &FakeSnapshotReader{Snapshot: &standingsdomain.Snapshot{
		CompetitionID: w.competitionID,
		Round:         2,
		Positions:     []standingsdomain.Position{{Position: 1, TeamID: 3}, {Position: 2, TeamID: 2}, {Position: 3, TeamID: 1}},
		TopScorers:    []string{"Nyman"},
	}}
	return w
}

func (w *world) service() *LeaderboardService {
	return NewLeaderboardService(w.fixtures, w.predictions, w.snapshots, slog.Default(), metrics.NewNoop(), nil, nil)
}

func TestGetLeaderboard(t *testing.T) {
	w := newWorld()
	svc := w.service()

	view, err := svc.GetLeaderboard(context.Background(), w.competitionID, seasonStart.Add(30*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, view.Rows, 3)
	assert.Equal(t, "Allsvenskan", view.Name)

	ada, bea, cal := view.Rows[0], view.Rows[1], view.Rows[2]
	assert.Equal(t, sharedtypes.UserID("ada"), ada.UserID)
	assert.Equal(t, 12, ada.Total)
	assert.Equal(t, 1, ada.Rank)
	assert.Equal(t, "Shirt", ada.Prize)
	assert.Equal(t, []string{sharedtypes.NotAvailable}, ada.TopScorers)

	// distance -4 plus one bonus.
	assert.Equal(t, sharedtypes.UserID("bea"), bea.UserID)
	assert.Equal(t, 7, bea.MatchPoints)
	assert.Equal(t, -4, bea.TablePoints)
	assert.Equal(t, 6, bea.BonusPoints)
	assert.Equal(t, 9, bea.Total)
	assert.Equal(t, 2, bea.Rank)

	assert.Equal(t, sharedtypes.UserID("cal"), cal.UserID)
	assert.Equal(t, 2, cal.Predictions)
	assert.Equal(t, 3, cal.Rank)

	assert.Equal(t, 1, w.snapshots.Calls, "snapshot must be read once per computation")
}

func TestGetLeaderboardUnknownCompetition(t *testing.T) {
	w := newWorld()
	_, err := w.service().GetLeaderboard(context.Background(), uuid.New(), seasonStart)
	assert.ErrorIs(t, err, competitiondb.ErrNotFound)
}

func TestGetLeaderboardInfrastructureError(t *testing.T) {
	w := newWorld()
	w.fixtures.ListErr = errors.New("connection refused")
	_, err := w.service().GetLeaderboard(context.Background(), w.competitionID, seasonStart)
	assert.ErrorContains(t, err, "connection refused")
}

func TestDeadlineFor(t *testing.T) {
	w := newWorld()
	svc := w.service()
	start := w.upcoming.StartTime

	tests := []struct {
		name   string
		user   sharedtypes.UserID
		want   time.Time
		wantOK bool
	}{
		{name: "leader commits earliest", user: "ada", want: start.Add(-50 * time.Minute), wantOK: true},
		{name: "second shares the first pair", user: "bea", want: start.Add(-50 * time.Minute), wantOK: true},
		{name: "third", user: "cal", want: start.Add(-40 * time.Minute), wantOK: true},
		{name: "not on the board gets kickoff", user: "newcomer", want: start, wantOK: true},
		{name: "anonymous gets nothing", user: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := svc.DeadlineFor(context.Background(), tt.user, w.upcoming.UUID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDeadlineForIgnoresLaterFixtures(t *testing.T) {
	w := newWorld()
	svc := w.service()

	// As of the second fixture only the first one counts: ada 6, bea 3,
	// cal 0.
	got, ok, err := svc.DeadlineFor(context.Background(), "cal", w.played[1].UUID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, w.played[1].StartTime.Add(-40*time.Minute), got)
}

func TestFixtureDeadline(t *testing.T) {
	w := newWorld()
	svc := w.service()
	start := w.upcoming.StartTime

	info, err := svc.FixtureDeadline(context.Background(), "ada", w.upcoming.UUID, start.Add(-55*time.Minute))
	require.NoError(t, err)
	assert.True(t, info.CanSubmit)
	assert.Equal(t, 1, info.Rank)

	info, err = svc.FixtureDeadline(context.Background(), "ada", w.upcoming.UUID, start.Add(-45*time.Minute))
	require.NoError(t, err)
	assert.False(t, info.CanSubmit)

	info, err = svc.FixtureDeadline(context.Background(), "", w.upcoming.UUID, start.Add(-2*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, info.Deadline)
	assert.False(t, info.CanSubmit)

	_, err = svc.FixtureDeadline(context.Background(), "ada", uuid.New(), start)
	assert.ErrorIs(t, err, competitiondb.ErrNotFound)
}

func TestDeadlinesForFixture(t *testing.T) {
	w := newWorld()
	w.fixtures.Participants = append(w.fixtures.Participants,
		competitiondb.Participant{CompetitionUUID: w.competitionID, UserID: "dan", DisplayName: "Dan"})

	got, err := w.service().DeadlinesForFixture(context.Background(), w.upcoming.UUID)
	require.NoError(t, err)
	require.Len(t, got.Deadlines, 4)

	ranked := got.Deadlines[:3]
	for i := 1; i < len(ranked); i++ {
		prev, cur := ranked[i-1], ranked[i]
		assert.LessOrEqual(t, prev.Rank, cur.Rank)
		assert.False(t, prev.Deadline.After(cur.Deadline), "better rank must not get a later deadline")
	}

	late := got.Deadlines[3]
	assert.Equal(t, sharedtypes.UserID("dan"), late.UserID)
	assert.Zero(t, late.Rank)
	assert.True(t, late.Deadline.Equal(w.upcoming.StartTime), "participant without graded predictions submits until kickoff")
	assert.Equal(t, 1, w.snapshots.Calls)
}

func TestPointsHistory(t *testing.T) {
	w := newWorld()
	got, err := w.service().PointsHistory(context.Background(), w.competitionID, seasonStart.Add(30*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Ada", got[0].DisplayName)
	require.Len(t, got[0].Points, 2)
	assert.Equal(t, 6, got[0].Points[0].Points)
	assert.Equal(t, 12, got[0].Points[1].Points)

	assert.Equal(t, "Cal", got[2].DisplayName)
	assert.Equal(t, 0, got[2].Points[1].Points)
}

func TestRenderPointsChart(t *testing.T) {
	w := newWorld()
	png, err := w.service().RenderPointsChart(context.Background(), w.competitionID, seasonStart.Add(30*24*time.Hour))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	empty, err := GeneratePointsChart(nil, DefaultPalette())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(empty, []byte("\x89PNG")))

	// users with no concluded fixture draw no line either
	blank, err := GeneratePointsChart([]PointsSeries{{UserID: "ada", DisplayName: "Ada"}}, DefaultPalette())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(blank, []byte("\x89PNG")))

	scoreless, err := GeneratePointsChart([]PointsSeries{{
		UserID:      "cal",
		DisplayName: "Cal",
		Points:      []HistoryPoint{{At: seasonStart, Points: 0}},
	}}, DefaultPalette())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(scoreless, []byte("\x89PNG")))
}

func TestPaletteCycles(t *testing.T) {
	p := DefaultPalette()
	assert.Equal(t, p.LineColor(0), p.LineColor(len(p.Lines)))
	assert.NotEqual(t, p.LineColor(0), p.LineColor(1))
}

func TestExportLeaderboard(t *testing.T) {
	w := newWorld()
	data, err := w.service().ExportLeaderboard(context.Background(), w.competitionID, seasonStart.Add(30*24*time.Hour))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, "Allsvenskan 2025", rows[0][0])
	assert.Equal(t, "Rank", rows[3][0])
	assert.Equal(t, []string{"1", "Ada"}, rows[4][:2])
	assert.Equal(t, "Nyman", rows[5][10])
}
