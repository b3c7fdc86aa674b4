package leaderboardservice

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories"
	leaderboarddomain "github.com/Black-And-White-Club/betting-pool/app/modules/leaderboard/domain"
	predictiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/domain"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/Black-And-White-Club/betting-pool/pkg/attr"
	"github.com/Black-And-White-Club/betting-pool/pkg/metrics"
	"github.com/Black-And-White-Club/betting-pool/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "LeaderboardService"

// LeaderboardService implements the Service interface.
type LeaderboardService struct {
	fixtures    FixtureReader
	predictions PredictionReader
	snapshots   SnapshotReader
	logger      *slog.Logger
	metrics     metrics.OperationMetrics
	tracer      trace.Tracer
	db          *bun.DB
	palette     ChartPalette
}

var _ Service = (*LeaderboardService)(nil)

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(
	fixtures FixtureReader,
	predictions PredictionReader,
	snapshots SnapshotReader,
	logger *slog.Logger,
	metrics metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *LeaderboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardService{
		fixtures:    fixtures,
		predictions: predictions,
		snapshots:   snapshots,
		logger:      logger,
		metrics:     metrics,
		tracer:      tracer,
		db:          db,
		palette:     DefaultPalette(),
	}
}

// boardState is everything read for one computation, from one transaction.
type boardState struct {
	competition *competitiondb.Competition
	input       leaderboarddomain.Input
	fixtures    []competitiondomain.Fixture
}

// loadState reads the competition state needed to rank it as of asOf. The
// latest snapshot is read once and shared by every user's table score.
func (s *LeaderboardService) loadState(ctx context.Context, db bun.IDB, competitionID uuid.UUID, asOf time.Time) (*boardState, error) {
	competition, err := s.fixtures.GetCompetition(ctx, db, competitionID)
	if err != nil {
		return nil, err
	}
	rules := competition.Rules.WithDefaults()

	participants, err := s.fixtures.ListParticipants(ctx, db, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	fixtureRows, err := s.fixtures.ListFixtures(ctx, db, competitionID, competitiondb.FixtureFilter{StartsBefore: asOf})
	if err != nil {
		return nil, fmt.Errorf("failed to list fixtures: %w", err)
	}
	byID := make(map[uuid.UUID]competitiondomain.Fixture, len(fixtureRows))
	fixtures := make([]competitiondomain.Fixture, 0, len(fixtureRows))
	for i := range fixtureRows {
		f := fixtureRows[i].ToDomain()
		byID[f.ID] = f
		fixtures = append(fixtures, f)
	}
	slices.SortStableFunc(fixtures, func(a, b competitiondomain.Fixture) int {
		return a.StartTime.Compare(b.StartTime)
	})

	predictionRows, err := s.predictions.ListCompetitionPredictions(ctx, db, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	graded := make([]leaderboarddomain.GradedPrediction, 0, len(predictionRows))
	for i := range predictionRows {
		f, ok := byID[predictionRows[i].FixtureUUID]
		if !ok {
			continue
		}
		graded = append(graded, leaderboarddomain.GradedPrediction{Prediction: predictionRows[i].ToDomain(), Fixture: f})
	}

	tableRows, err := s.predictions.ListTablePredictions(ctx, db, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list table predictions: %w", err)
	}
	snapshot, err := s.snapshots.LatestSnapshot(ctx, db, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	tableScores := make(map[sharedtypes.UserID]predictiondomain.TableScore, len(tableRows))
	for i := range tableRows {
		p := tableRows[i].ToDomain()
		tableScores[p.UserID] = predictiondomain.ScoreTablePrediction(&p, snapshot, rules)
	}

	members := make([]leaderboarddomain.Participant, 0, len(participants))
	for _, p := range participants {
		members = append(members, leaderboarddomain.Participant{UserID: p.UserID, DisplayName: p.DisplayName})
	}

	return &boardState{
		competition: competition,
		fixtures:    fixtures,
		input: leaderboarddomain.Input{
			AsOf:         asOf,
			Rules:        rules,
			PrizeBands:   competition.PrizeBands,
			Participants: members,
			Predictions:  graded,
			TableScores:  tableScores,
		},
	}, nil
}

// notFound turns a missing competition or fixture into a failure result.
func notFound[S any](err error, what string) (results.OperationResult[S, error], error) {
	if errors.Is(err, competitiondb.ErrNotFound) {
		return results.FailureResult[S, error](err), nil
	}
	return results.OperationResult[S, error]{}, fmt.Errorf("failed to load %s: %w", what, err)
}

// GetLeaderboard ranks the competition at asOf.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, competitionID uuid.UUID, asOf time.Time) (*LeaderboardView, error) {
	getTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*LeaderboardView, error], error) {
		state, err := s.loadState(ctx, db, competitionID, asOf)
		if err != nil {
			return notFound[*LeaderboardView](err, "leaderboard")
		}
		rows := leaderboarddomain.ComputeLeaderboard(state.input)
		if s.metrics != nil {
			s.metrics.RecordBatchSize(ctx, "GetLeaderboard", serviceName, len(rows))
		}
		return results.SuccessResult[*LeaderboardView, error](&LeaderboardView{
			CompetitionID: competitionID,
			Name:          state.competition.Name,
			Season:        state.competition.Season,
			AsOf:          asOf,
			Rows:          rows,
		}), nil
	}

	result, err := withTelemetry(s, ctx, "GetLeaderboard", competitionID.String(), func(ctx context.Context) (results.OperationResult[*LeaderboardView, error], error) {
		return runInTx(s, ctx, getTx)
	})
	return unwrap(result, err)
}

// fixtureBoard ranks the fixture's competition as of its kickoff.
func (s *LeaderboardService) fixtureBoard(ctx context.Context, db bun.IDB, fixtureID uuid.UUID) (*competitiondb.Fixture, *boardState, []leaderboarddomain.Row, error) {
	fixture, err := s.fixtures.GetFixture(ctx, db, fixtureID)
	if err != nil {
		return nil, nil, nil, err
	}
	state, err := s.loadState(ctx, db, fixture.CompetitionUUID, fixture.StartTime)
	if err != nil {
		return nil, nil, nil, err
	}
	return fixture, state, leaderboarddomain.ComputeLeaderboard(state.input), nil
}

// DeadlineFor returns the user's personal deadline for a fixture.
func (s *LeaderboardService) DeadlineFor(ctx context.Context, userID sharedtypes.UserID, fixtureID uuid.UUID) (time.Time, bool, error) {
	if userID.IsAnonymous() {
		return time.Time{}, false, nil
	}
	info, err := s.FixtureDeadline(ctx, userID, fixtureID, time.Time{})
	if err != nil {
		return time.Time{}, false, err
	}
	return *info.Deadline, true, nil
}

// FixtureDeadline describes the caller's submission window at now.
func (s *LeaderboardService) FixtureDeadline(ctx context.Context, userID sharedtypes.UserID, fixtureID uuid.UUID, now time.Time) (*DeadlineInfo, error) {
	deadlineTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*DeadlineInfo, error], error) {
		if userID.IsAnonymous() {
			fixture, err := s.fixtures.GetFixture(ctx, db, fixtureID)
			if err != nil {
				return notFound[*DeadlineInfo](err, "fixture")
			}
			return results.SuccessResult[*DeadlineInfo, error](&DeadlineInfo{FixtureID: fixtureID, StartTime: fixture.StartTime}), nil
		}

		fixture, _, rows, err := s.fixtureBoard(ctx, db, fixtureID)
		if err != nil {
			return notFound[*DeadlineInfo](err, "fixture deadline")
		}
		rank, ranked := leaderboarddomain.RankOf(rows, userID)
		deadline := leaderboarddomain.DeadlineAt(fixture.StartTime, rank, ranked)
		return results.SuccessResult[*DeadlineInfo, error](&DeadlineInfo{
			FixtureID: fixtureID,
			UserID:    userID,
			StartTime: fixture.StartTime,
			Deadline:  &deadline,
			Rank:      rank,
			CanSubmit: leaderboarddomain.CanSubmit(deadline, now),
		}), nil
	}

	result, err := withTelemetry(s, ctx, "FixtureDeadline", fixtureID.String(), func(ctx context.Context) (results.OperationResult[*DeadlineInfo, error], error) {
		return runInTx(s, ctx, deadlineTx)
	})
	return unwrap(result, err)
}

// DeadlinesForFixture lists every participant's deadline from a single
// leaderboard computation.
func (s *LeaderboardService) DeadlinesForFixture(ctx context.Context, fixtureID uuid.UUID) (*FixtureDeadlines, error) {
	listTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*FixtureDeadlines, error], error) {
		fixture, state, rows, err := s.fixtureBoard(ctx, db, fixtureID)
		if err != nil {
			return notFound[*FixtureDeadlines](err, "fixture deadlines")
		}
		members := state.input.Participants
		deadlines := leaderboarddomain.Deadlines(rows, members, fixture.StartTime)
		out := &FixtureDeadlines{
			FixtureID: fixtureID,
			StartTime: fixture.StartTime,
			Deadlines: make([]UserDeadline, 0, len(members)),
		}
		ranked := make(map[sharedtypes.UserID]struct{}, len(rows))
		for _, r := range rows {
			ranked[r.UserID] = struct{}{}
			out.Deadlines = append(out.Deadlines, UserDeadline{
				UserID:      r.UserID,
				DisplayName: r.DisplayName,
				Rank:        r.Rank,
				Deadline:    deadlines[r.UserID],
			})
		}
		// unranked participants follow with Rank 0
		for _, p := range members {
			if _, ok := ranked[p.UserID]; ok {
				continue
			}
			out.Deadlines = append(out.Deadlines, UserDeadline{
				UserID:      p.UserID,
				DisplayName: p.DisplayName,
				Deadline:    deadlines[p.UserID],
			})
		}
		return results.SuccessResult[*FixtureDeadlines, error](out), nil
	}

	result, err := withTelemetry(s, ctx, "DeadlinesForFixture", fixtureID.String(), func(ctx context.Context) (results.OperationResult[*FixtureDeadlines, error], error) {
		return runInTx(s, ctx, listTx)
	})
	return unwrap(result, err)
}

// PointsHistory returns the cumulative match points of every ranked user
// after each concluded fixture, in kickoff order.
func (s *LeaderboardService) PointsHistory(ctx context.Context, competitionID uuid.UUID, asOf time.Time) ([]PointsSeries, error) {
	historyTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]PointsSeries, error], error) {
		state, err := s.loadState(ctx, db, competitionID, asOf)
		if err != nil {
			return notFound[[]PointsSeries](err, "points history")
		}
		return results.SuccessResult[[]PointsSeries, error](buildHistory(state)), nil
	}

	result, err := withTelemetry(s, ctx, "PointsHistory", competitionID.String(), func(ctx context.Context) (results.OperationResult[[]PointsSeries, error], error) {
		return runInTx(s, ctx, historyTx)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, results.AsError(*result.Failure)
	}
	return *result.Success, nil
}

func buildHistory(state *boardState) []PointsSeries {
	rows := leaderboarddomain.ComputeLeaderboard(state.input)

	points := make(map[uuid.UUID]map[sharedtypes.UserID]int)
	for _, gp := range state.input.Predictions {
		if points[gp.Fixture.ID] == nil {
			points[gp.Fixture.ID] = make(map[sharedtypes.UserID]int)
		}
		points[gp.Fixture.ID][gp.Prediction.UserID] = gp.Prediction.Points
	}

	series := make([]PointsSeries, 0, len(rows))
	for _, r := range rows {
		ps := PointsSeries{UserID: r.UserID, DisplayName: r.DisplayName}
		total := 0
		for _, f := range state.fixtures {
			if !f.Concluded() {
				continue
			}
			total += points[f.ID][r.UserID]
			ps.Points = append(ps.Points, HistoryPoint{FixtureID: f.ID, At: f.StartTime, Points: total})
		}
		series = append(series, ps)
	}
	slices.SortStableFunc(series, func(a, b PointsSeries) int {
		return cmp.Compare(a.DisplayName, b.DisplayName)
	})
	return series
}

// RenderPointsChart draws the cumulative points history as a PNG.
func (s *LeaderboardService) RenderPointsChart(ctx context.Context, competitionID uuid.UUID, asOf time.Time) ([]byte, error) {
	series, err := s.PointsHistory(ctx, competitionID, asOf)
	if err != nil {
		return nil, err
	}
	png, err := GeneratePointsChart(series, s.palette)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return png, nil
}

// ExportLeaderboard writes the leaderboard to an .xlsx workbook.
func (s *LeaderboardService) ExportLeaderboard(ctx context.Context, competitionID uuid.UUID, asOf time.Time) ([]byte, error) {
	view, err := s.GetLeaderboard(ctx, competitionID, asOf)
	if err != nil {
		return nil, err
	}
	data, err := WriteLeaderboardXLSX(view)
	if err != nil {
		return nil, fmt.Errorf("failed to export leaderboard: %w", err)
	}
	s.logger.InfoContext(ctx, "Leaderboard exported",
		attr.ExtractCorrelationID(ctx),
		attr.UUID("competition_id", competitionID),
		attr.Int("rows", len(view.Rows)),
	)
	return data, nil
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

func unwrap[S any](result results.OperationResult[*S, error], err error) (*S, error) {
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, results.AsError(*result.Failure)
	}
	return *result.Success, nil
}

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *LeaderboardService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}

	return result, nil
}

// runInTx runs the operation in a read-only repeatable-read transaction so
// every row of one computation sees the same data.
func runInTx[S any, F any](
	s *LeaderboardService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}
