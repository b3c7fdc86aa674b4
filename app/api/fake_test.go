package api

import (
	"context"
	"time"

	competitionservice "github.com/Black-And-White-Club/betting-pool/app/modules/competition/application"
	leaderboardservice "github.com/Black-And-White-Club/betting-pool/app/modules/leaderboard/application"
	predictionservice "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/application"
	predictiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/domain"
	standingsservice "github.com/Black-And-White-Club/betting-pool/app/modules/standings/application"
	standingsdomain "github.com/Black-And-White-Club/betting-pool/app/modules/standings/domain"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
)

// ------------------------
// Fake Competition Service
// ------------------------

type FakeCompetitionService struct {
	trace []string

	CreateCompetitionFunc   func(ctx context.Context, req competitionservice.CreateCompetitionRequest) (*competitionservice.CompetitionInfo, error)
	GetCompetitionFunc      func(ctx context.Context, id uuid.UUID) (*competitionservice.CompetitionInfo, error)
	ListCompetitionsFunc    func(ctx context.Context, season string) ([]competitionservice.CompetitionInfo, error)
	AddParticipantFunc      func(ctx context.Context, id uuid.UUID, userID sharedtypes.UserID, displayName string) error
	ScheduleFixtureFunc     func(ctx context.Context, req competitionservice.ScheduleFixtureRequest) (*competitionservice.FixtureInfo, error)
	GetFixtureFunc          func(ctx context.Context, id uuid.UUID) (*competitionservice.FixtureInfo, error)
	ListFixturesFunc        func(ctx context.Context, id uuid.UUID) ([]competitionservice.FixtureInfo, error)
	ImportFixturesFunc      func(ctx context.Context, id uuid.UUID, fileName string, data []byte, now time.Time) (*competitionservice.ImportSummary, error)
	RecordFixtureResultFunc func(ctx context.Context, id uuid.UUID, homeGoals, awayGoals int, now time.Time) (*competitionservice.FixtureInfo, error)
}

func (f *FakeCompetitionService) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeCompetitionService) Trace() []string { return append([]string(nil), f.trace...) }

func (f *FakeCompetitionService) CreateCompetition(ctx context.Context, req competitionservice.CreateCompetitionRequest) (*competitionservice.CompetitionInfo, error) {
	f.record("CreateCompetition")
	if f.CreateCompetitionFunc != nil {
		return f.CreateCompetitionFunc(ctx, req)
	}
	return &competitionservice.CompetitionInfo{Name: req.Name, Season: req.Season}, nil
}

func (f *FakeCompetitionService) GetCompetition(ctx context.Context, id uuid.UUID) (*competitionservice.CompetitionInfo, error) {
	f.record("GetCompetition")
	if f.GetCompetitionFunc != nil {
		return f.GetCompetitionFunc(ctx, id)
	}
	return &competitionservice.CompetitionInfo{ID: id}, nil
}

func (f *FakeCompetitionService) ListCompetitions(ctx context.Context, season string) ([]competitionservice.CompetitionInfo, error) {
	f.record("ListCompetitions")
	if f.ListCompetitionsFunc != nil {
		return f.ListCompetitionsFunc(ctx, season)
	}
	return nil, nil
}

func (f *FakeCompetitionService) AddParticipant(ctx context.Context, id uuid.UUID, userID sharedtypes.UserID, displayName string) error {
	f.record("AddParticipant")
	if f.AddParticipantFunc != nil {
		return f.AddParticipantFunc(ctx, id, userID, displayName)
	}
	return nil
}

func (f *FakeCompetitionService) ScheduleFixture(ctx context.Context, req competitionservice.ScheduleFixtureRequest) (*competitionservice.FixtureInfo, error) {
	f.record("ScheduleFixture")
	if f.ScheduleFixtureFunc != nil {
		return f.ScheduleFixtureFunc(ctx, req)
	}
	return &competitionservice.FixtureInfo{CompetitionID: req.CompetitionID}, nil
}

func (f *FakeCompetitionService) GetFixture(ctx context.Context, id uuid.UUID) (*competitionservice.FixtureInfo, error) {
	f.record("GetFixture")
	if f.GetFixtureFunc != nil {
		return f.GetFixtureFunc(ctx, id)
	}
	return &competitionservice.FixtureInfo{ID: id}, nil
}

func (f *FakeCompetitionService) ListFixtures(ctx context.Context, id uuid.UUID) ([]competitionservice.FixtureInfo, error) {
	f.record("ListFixtures")
	if f.ListFixturesFunc != nil {
		return f.ListFixturesFunc(ctx, id)
	}
	return nil, nil
}

func (f *FakeCompetitionService) ImportFixtures(ctx context.Context, id uuid.UUID, fileName string, data []byte, now time.Time) (*competitionservice.ImportSummary, error) {
	f.record("ImportFixtures")
	if f.ImportFixturesFunc != nil {
		return f.ImportFixturesFunc(ctx, id, fileName, data, now)
	}
	return &competitionservice.ImportSummary{}, nil
}

func (f *FakeCompetitionService) RecordFixtureResult(ctx context.Context, id uuid.UUID, homeGoals, awayGoals int, now time.Time) (*competitionservice.FixtureInfo, error) {
	f.record("RecordFixtureResult")
	if f.RecordFixtureResultFunc != nil {
		return f.RecordFixtureResultFunc(ctx, id, homeGoals, awayGoals, now)
	}
	return &competitionservice.FixtureInfo{ID: id, HomeGoals: &homeGoals, AwayGoals: &awayGoals}, nil
}

var _ competitionservice.Service = (*FakeCompetitionService)(nil)

// ------------------------
// Fake Prediction Service
// ------------------------

type FakePredictionService struct {
	trace []string

	SubmitMatchPredictionFunc func(ctx context.Context, req predictionservice.SubmitMatchPredictionRequest, now time.Time) (*predictionservice.MatchPredictionInfo, error)
	DeleteMatchPredictionFunc func(ctx context.Context, userID sharedtypes.UserID, fixtureID uuid.UUID, now time.Time) error
	ListUserPredictionsFunc   func(ctx context.Context, competitionID uuid.UUID, userID sharedtypes.UserID) ([]predictionservice.MatchPredictionInfo, error)
	RecomputeFixtureFunc      func(ctx context.Context, fixtureID uuid.UUID, now time.Time) (*predictionservice.RecomputeSummary, error)
	RecomputeCompetitionFunc  func(ctx context.Context, competitionID uuid.UUID, now time.Time) (*predictionservice.RecomputeSummary, error)
	SubmitTablePredictionFunc func(ctx context.Context, req predictionservice.SubmitTablePredictionRequest, now time.Time) (*predictionservice.TablePredictionInfo, error)
	GetTablePredictionFunc    func(ctx context.Context, competitionID uuid.UUID, userID sharedtypes.UserID) (*predictionservice.TablePredictionInfo, error)
	ScoreTablePredictionFunc  func(ctx context.Context, competitionID uuid.UUID, userID sharedtypes.UserID) (*predictiondomain.TableScore, error)
}

func (f *FakePredictionService) record(step string) { f.trace = append(f.trace, step) }

func (f *FakePredictionService) Trace() []string { return append([]string(nil), f.trace...) }

func (f *FakePredictionService) SubmitMatchPrediction(ctx context.Context, req predictionservice.SubmitMatchPredictionRequest, now time.Time) (*predictionservice.MatchPredictionInfo, error) {
	f.record("SubmitMatchPrediction")
	if f.SubmitMatchPredictionFunc != nil {
		return f.SubmitMatchPredictionFunc(ctx, req, now)
	}
	return &predictionservice.MatchPredictionInfo{UserID: req.UserID, FixtureID: req.FixtureID}, nil
}

func (f *FakePredictionService) DeleteMatchPrediction(ctx context.Context, userID sharedtypes.UserID, fixtureID uuid.UUID, now time.Time) error {
	f.record("DeleteMatchPrediction")
	if f.DeleteMatchPredictionFunc != nil {
		return f.DeleteMatchPredictionFunc(ctx, userID, fixtureID, now)
	}
	return nil
}

func (f *FakePredictionService) ListUserPredictions(ctx context.Context, competitionID uuid.UUID, userID sharedtypes.UserID) ([]predictionservice.MatchPredictionInfo, error) {
	f.record("ListUserPredictions")
	if f.ListUserPredictionsFunc != nil {
		return f.ListUserPredictionsFunc(ctx, competitionID, userID)
	}
	return nil, nil
}

func (f *FakePredictionService) RecomputeFixture(ctx context.Context, fixtureID uuid.UUID, now time.Time) (*predictionservice.RecomputeSummary, error) {
	f.record("RecomputeFixture")
	if f.RecomputeFixtureFunc != nil {
		return f.RecomputeFixtureFunc(ctx, fixtureID, now)
	}
	return &predictionservice.RecomputeSummary{Fixtures: 1}, nil
}

func (f *FakePredictionService) RecomputeCompetition(ctx context.Context, competitionID uuid.UUID, now time.Time) (*predictionservice.RecomputeSummary, error) {
	f.record("RecomputeCompetition")
	if f.RecomputeCompetitionFunc != nil {
		return f.RecomputeCompetitionFunc(ctx, competitionID, now)
	}
	return &predictionservice.RecomputeSummary{}, nil
}

func (f *FakePredictionService) SubmitTablePrediction(ctx context.Context, req predictionservice.SubmitTablePredictionRequest, now time.Time) (*predictionservice.TablePredictionInfo, error) {
	f.record("SubmitTablePrediction")
	if f.SubmitTablePredictionFunc != nil {
		return f.SubmitTablePredictionFunc(ctx, req, now)
	}
	return &predictionservice.TablePredictionInfo{UserID: req.UserID, CompetitionID: req.CompetitionID, Positions: req.Positions}, nil
}

func (f *FakePredictionService) GetTablePrediction(ctx context.Context, competitionID uuid.UUID, userID sharedtypes.UserID) (*predictionservice.TablePredictionInfo, error) {
	f.record("GetTablePrediction")
	if f.GetTablePredictionFunc != nil {
		return f.GetTablePredictionFunc(ctx, competitionID, userID)
	}
	return &predictionservice.TablePredictionInfo{UserID: userID, CompetitionID: competitionID}, nil
}

func (f *FakePredictionService) ScoreTablePrediction(ctx context.Context, competitionID uuid.UUID, userID sharedtypes.UserID) (*predictiondomain.TableScore, error) {
	f.record("ScoreTablePrediction")
	if f.ScoreTablePredictionFunc != nil {
		return f.ScoreTablePredictionFunc(ctx, competitionID, userID)
	}
	return &predictiondomain.TableScore{}, nil
}

var _ predictionservice.Service = (*FakePredictionService)(nil)

// ------------------------
// Fake Standings Service
// ------------------------

type FakeStandingsService struct {
	trace []string

	RecordSnapshotFunc   func(ctx context.Context, req standingsservice.RecordSnapshotRequest, now time.Time) (*standingsdomain.Snapshot, error)
	ImportSnapshotFunc   func(ctx context.Context, competitionID uuid.UUID, round int, fileName string, data []byte, now time.Time) (*standingsdomain.Snapshot, error)
	LatestSnapshotFunc   func(ctx context.Context, competitionID uuid.UUID) (*standingsdomain.Snapshot, error)
	SnapshotForRoundFunc func(ctx context.Context, competitionID uuid.UUID, round int) (*standingsdomain.Snapshot, error)
	ListRoundsFunc       func(ctx context.Context, competitionID uuid.UUID) ([]int, error)
}

func (f *FakeStandingsService) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeStandingsService) Trace() []string { return append([]string(nil), f.trace...) }

func (f *FakeStandingsService) RecordSnapshot(ctx context.Context, req standingsservice.RecordSnapshotRequest, now time.Time) (*standingsdomain.Snapshot, error) {
	f.record("RecordSnapshot")
	if f.RecordSnapshotFunc != nil {
		return f.RecordSnapshotFunc(ctx, req, now)
	}
	return &standingsdomain.Snapshot{CompetitionID: req.CompetitionID, Round: req.Round, Positions: req.Positions}, nil
}

func (f *FakeStandingsService) ImportSnapshot(ctx context.Context, competitionID uuid.UUID, round int, fileName string, data []byte, now time.Time) (*standingsdomain.Snapshot, error) {
	f.record("ImportSnapshot")
	if f.ImportSnapshotFunc != nil {
		return f.ImportSnapshotFunc(ctx, competitionID, round, fileName, data, now)
	}
	return &standingsdomain.Snapshot{CompetitionID: competitionID, Round: round}, nil
}

func (f *FakeStandingsService) LatestSnapshot(ctx context.Context, competitionID uuid.UUID) (*standingsdomain.Snapshot, error) {
	f.record("LatestSnapshot")
	if f.LatestSnapshotFunc != nil {
		return f.LatestSnapshotFunc(ctx, competitionID)
	}
	return &standingsdomain.Snapshot{CompetitionID: competitionID}, nil
}

func (f *FakeStandingsService) SnapshotForRound(ctx context.Context, competitionID uuid.UUID, round int) (*standingsdomain.Snapshot, error) {
	f.record("SnapshotForRound")
	if f.SnapshotForRoundFunc != nil {
		return f.SnapshotForRoundFunc(ctx, competitionID, round)
	}
	return &standingsdomain.Snapshot{CompetitionID: competitionID, Round: round}, nil
}

func (f *FakeStandingsService) ListRounds(ctx context.Context, competitionID uuid.UUID) ([]int, error) {
	f.record("ListRounds")
	if f.ListRoundsFunc != nil {
		return f.ListRoundsFunc(ctx, competitionID)
	}
	return nil, nil
}

var _ standingsservice.Service = (*FakeStandingsService)(nil)

// ------------------------
// Fake Leaderboard Service
// ------------------------

type FakeLeaderboardService struct {
	trace []string

	GetLeaderboardFunc      func(ctx context.Context, competitionID uuid.UUID, asOf time.Time) (*leaderboardservice.LeaderboardView, error)
	FixtureDeadlineFunc     func(ctx context.Context, userID sharedtypes.UserID, fixtureID uuid.UUID, now time.Time) (*leaderboardservice.DeadlineInfo, error)
	DeadlinesForFixtureFunc func(ctx context.Context, fixtureID uuid.UUID) (*leaderboardservice.FixtureDeadlines, error)
	PointsHistoryFunc       func(ctx context.Context, competitionID uuid.UUID, asOf time.Time) ([]leaderboardservice.PointsSeries, error)
	RenderPointsChartFunc   func(ctx context.Context, competitionID uuid.UUID, asOf time.Time) ([]byte, error)
	ExportLeaderboardFunc   func(ctx context.Context, competitionID uuid.UUID, asOf time.Time) ([]byte, error)
}

func (f *FakeLeaderboardService) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeLeaderboardService) Trace() []string { return append([]string(nil), f.trace...) }

func (f *FakeLeaderboardService) GetLeaderboard(ctx context.Context, competitionID uuid.UUID, asOf time.Time) (*leaderboardservice.LeaderboardView, error) {
	f.record("GetLeaderboard")
	if f.GetLeaderboardFunc != nil {
		return f.GetLeaderboardFunc(ctx, competitionID, asOf)
	}
	return &leaderboardservice.LeaderboardView{CompetitionID: competitionID, AsOf: asOf}, nil
}

func (f *FakeLeaderboardService) DeadlineFor(ctx context.Context, userID sharedtypes.UserID, fixtureID uuid.UUID) (time.Time, bool, error) {
	f.record("DeadlineFor")
	return time.Time{}, !userID.IsAnonymous(), nil
}

func (f *FakeLeaderboardService) FixtureDeadline(ctx context.Context, userID sharedtypes.UserID, fixtureID uuid.UUID, now time.Time) (*leaderboardservice.DeadlineInfo, error) {
	f.record("FixtureDeadline")
	if f.FixtureDeadlineFunc != nil {
		return f.FixtureDeadlineFunc(ctx, userID, fixtureID, now)
	}
	return &leaderboardservice.DeadlineInfo{FixtureID: fixtureID, UserID: userID}, nil
}

func (f *FakeLeaderboardService) DeadlinesForFixture(ctx context.Context, fixtureID uuid.UUID) (*leaderboardservice.FixtureDeadlines, error) {
	f.record("DeadlinesForFixture")
	if f.DeadlinesForFixtureFunc != nil {
		return f.DeadlinesForFixtureFunc(ctx, fixtureID)
	}
	return &leaderboardservice.FixtureDeadlines{FixtureID: fixtureID}, nil
}

func (f *FakeLeaderboardService) PointsHistory(ctx context.Context, competitionID uuid.UUID, asOf time.Time) ([]leaderboardservice.PointsSeries, error) {
	f.record("PointsHistory")
	if f.PointsHistoryFunc != nil {
		return f.PointsHistoryFunc(ctx, competitionID, asOf)
	}
	return nil, nil
}

func (f *FakeLeaderboardService) RenderPointsChart(ctx context.Context, competitionID uuid.UUID, asOf time.Time) ([]byte, error) {
	f.record("RenderPointsChart")
	if f.RenderPointsChartFunc != nil {
		return f.RenderPointsChartFunc(ctx, competitionID, asOf)
	}
	return []byte("\x89PNG"), nil
}

func (f *FakeLeaderboardService) ExportLeaderboard(ctx context.Context, competitionID uuid.UUID, asOf time.Time) ([]byte, error) {
	f.record("ExportLeaderboard")
	if f.ExportLeaderboardFunc != nil {
		return f.ExportLeaderboardFunc(ctx, competitionID, asOf)
	}
	return []byte("PK"), nil
}

var _ leaderboardservice.Service = (*FakeLeaderboardService)(nil)
