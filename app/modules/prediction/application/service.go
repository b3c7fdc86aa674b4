package predictionservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories"
	predictiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/domain"
	predictiondb "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/Black-And-White-Club/betting-pool/pkg/attr"
	"github.com/Black-And-White-Club/betting-pool/pkg/metrics"
	"github.com/Black-And-White-Club/betting-pool/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const serviceName = "PredictionService"

// recomputeConcurrency bounds the fixtures recomputed in parallel.
const recomputeConcurrency = 4

// PredictionService implements the Service interface.
type PredictionService struct {
	repo      predictiondb.Repository
	fixtures  FixtureReader
	snapshots SnapshotReader
	deadlines DeadlineResolver
	logger    *slog.Logger
	metrics   metrics.OperationMetrics
	tracer    trace.Tracer
	db        *bun.DB
}

var _ Service = (*PredictionService)(nil)

// NewPredictionService creates a new PredictionService.
func NewPredictionService(
	repo predictiondb.Repository,
	fixtures FixtureReader,
	snapshots SnapshotReader,
	logger *slog.Logger,
	metrics metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *PredictionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictionService{
		repo:      repo,
		fixtures:  fixtures,
		snapshots: snapshots,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
	}
}

// SetDeadlineResolver installs the personal deadline source. Without one
// the deadline is the kickoff.
func (s *PredictionService) SetDeadlineResolver(r DeadlineResolver) {
	s.deadlines = r
}

// SubmitMatchPrediction creates or edits the caller's prediction for a
// fixture.
func (s *PredictionService) SubmitMatchPrediction(ctx context.Context, req SubmitMatchPredictionRequest, now time.Time) (*MatchPredictionInfo, error) {
	submitTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*MatchPredictionInfo, error], error) {
		return s.submitMatchPredictionLogic(ctx, db, req, now)
	}

	result, err := withTelemetry(s, ctx, "SubmitMatchPrediction", req.FixtureID.String(), func(ctx context.Context) (results.OperationResult[*MatchPredictionInfo, error], error) {
		return runInTx(s, ctx, submitTx)
	})
	return unwrap(result, err)
}

func (s *PredictionService) submitMatchPredictionLogic(ctx context.Context, db bun.IDB, req SubmitMatchPredictionRequest, now time.Time) (results.OperationResult[*MatchPredictionInfo, error], error) {
	if err := competitiondomain.ValidateGoals(req.HomeGoals, req.AwayGoals); err != nil {
		return results.FailureResult[*MatchPredictionInfo, error](err), nil
	}

	fixture, err := s.fixtures.GetFixture(ctx, db, req.FixtureID)
	if err != nil {
		if errors.Is(err, competitiondb.ErrNotFound) {
			return results.FailureResult[*MatchPredictionInfo, error](err), nil
		}
		return results.OperationResult[*MatchPredictionInfo, error]{}, fmt.Errorf("failed to get fixture: %w", err)
	}

	if err := s.checkMatchMutation(ctx, req.UserID, fixture, now); err != nil {
		if isGuardError(err) {
			return results.FailureResult[*MatchPredictionInfo, error](err), nil
		}
		return results.OperationResult[*MatchPredictionInfo, error]{}, err
	}

	prediction := &predictiondb.MatchPrediction{
		UserID:          req.UserID,
		FixtureUUID:     fixture.UUID,
		CompetitionUUID: fixture.CompetitionUUID,
		HomeGoals:       req.HomeGoals,
		AwayGoals:       req.AwayGoals,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}
	if err := s.repo.UpsertMatchPrediction(ctx, db, prediction); err != nil {
		return results.OperationResult[*MatchPredictionInfo, error]{}, fmt.Errorf("failed to store prediction: %w", err)
	}

	info := toMatchPredictionInfo(prediction)
	return results.SuccessResult[*MatchPredictionInfo, error](&info), nil
}

// DeleteMatchPrediction removes the caller's prediction under the same
// guard as an edit.
func (s *PredictionService) DeleteMatchPrediction(ctx context.Context, userID sharedtypes.UserID, fixtureID uuid.UUID, now time.Time) error {
	deleteTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		fixture, err := s.fixtures.GetFixture(ctx, db, fixtureID)
		if err != nil {
			if errors.Is(err, competitiondb.ErrNotFound) {
				return results.FailureResult[bool, error](err), nil
			}
			return results.OperationResult[bool, error]{}, fmt.Errorf("failed to get fixture: %w", err)
		}
		if err := s.checkMatchMutation(ctx, userID, fixture, now); err != nil {
			if isGuardError(err) {
				return results.FailureResult[bool, error](err), nil
			}
			return results.OperationResult[bool, error]{}, err
		}
		if err := s.repo.DeleteMatchPrediction(ctx, db, userID, fixtureID); err != nil {
			if errors.Is(err, predictiondb.ErrNotFound) {
				return results.FailureResult[bool, error](err), nil
			}
			return results.OperationResult[bool, error]{}, fmt.Errorf("failed to delete prediction: %w", err)
		}
		return results.SuccessResult[bool, error](true), nil
	}

	result, err := withTelemetry(s, ctx, "DeleteMatchPrediction", fixtureID.String(), func(ctx context.Context) (results.OperationResult[bool, error], error) {
		return runInTx(s, ctx, deleteTx)
	})
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return results.AsError(*result.Failure)
	}
	return nil
}

func (s *PredictionService) checkMatchMutation(ctx context.Context, userID sharedtypes.UserID, fixture *competitiondb.Fixture, now time.Time) error {
	f := fixture.ToDomain()
	deadline := f.StartTime
	if !userID.IsAnonymous() && s.deadlines != nil {
		personal, ok, err := s.deadlines.DeadlineFor(ctx, userID, fixture.UUID)
		if err != nil {
			return fmt.Errorf("failed to resolve deadline: %w", err)
		}
		if ok {
			deadline = personal
		}
	}
	return predictiondomain.CheckMatchMutation(userID, f, deadline, now)
}

func isGuardError(err error) bool {
	return errors.Is(err, predictiondomain.ErrAnonymous) ||
		errors.Is(err, predictiondomain.ErrMatchStarted) ||
		errors.Is(err, predictiondomain.ErrDeadlinePassed)
}

// ListUserPredictions lists a user's match predictions in a competition.
func (s *PredictionService) ListUserPredictions(ctx context.Context, competitionID uuid.UUID, userID sharedtypes.UserID) ([]MatchPredictionInfo, error) {
	listTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]MatchPredictionInfo, error], error) {
		rows, err := s.repo.ListUserPredictions(ctx, db, competitionID, userID)
		if err != nil {
			return results.OperationResult[[]MatchPredictionInfo, error]{}, fmt.Errorf("failed to list predictions: %w", err)
		}
		out := make([]MatchPredictionInfo, 0, len(rows))
		for i := range rows {
			out = append(out, toMatchPredictionInfo(&rows[i]))
		}
		return results.SuccessResult[[]MatchPredictionInfo, error](out), nil
	}

	result, err := withTelemetry(s, ctx, "ListUserPredictions", string(userID), func(ctx context.Context) (results.OperationResult[[]MatchPredictionInfo, error], error) {
		return runInTx(s, ctx, listTx)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, results.AsError(*result.Failure)
	}
	return *result.Success, nil
}

// RecomputeFixture re-grades every prediction of a fixture under the
// fixture's advisory lock. Only changed points are written.
func (s *PredictionService) RecomputeFixture(ctx context.Context, fixtureID uuid.UUID, now time.Time) (*RecomputeSummary, error) {
	recomputeTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*RecomputeSummary, error], error) {
		return s.recomputeFixtureLogic(ctx, db, fixtureID, now)
	}

	result, err := withTelemetry(s, ctx, "RecomputeFixture", fixtureID.String(), func(ctx context.Context) (results.OperationResult[*RecomputeSummary, error], error) {
		return runInTx(s, ctx, recomputeTx)
	})
	return unwrap(result, err)
}

func (s *PredictionService) recomputeFixtureLogic(ctx context.Context, db bun.IDB, fixtureID uuid.UUID, now time.Time) (results.OperationResult[*RecomputeSummary, error], error) {
	if db != nil {
		if err := s.repo.AcquireFixtureLock(ctx, db, fixtureID); err != nil {
			return results.OperationResult[*RecomputeSummary, error]{}, fmt.Errorf("failed to lock fixture: %w", err)
		}
	}

	fixture, err := s.fixtures.GetFixture(ctx, db, fixtureID)
	if err != nil {
		if errors.Is(err, competitiondb.ErrNotFound) {
			return results.FailureResult[*RecomputeSummary, error](err), nil
		}
		return results.OperationResult[*RecomputeSummary, error]{}, fmt.Errorf("failed to get fixture: %w", err)
	}
	f := fixture.ToDomain()

	predictions, err := s.repo.ListFixturePredictions(ctx, db, fixtureID)
	if err != nil {
		return results.OperationResult[*RecomputeSummary, error]{}, fmt.Errorf("failed to list predictions: %w", err)
	}

	changed := make([]predictiondb.MatchPrediction, 0, len(predictions))
	for _, p := range predictions {
		points := predictiondomain.ScoreMatchPrediction(p.ToDomain(), f, now)
		if points == p.Points {
			continue
		}
		p.Points = points
		changed = append(changed, p)
	}

	if len(changed) > 0 {
		if err := s.repo.UpdatePoints(ctx, db, changed); err != nil {
			return results.OperationResult[*RecomputeSummary, error]{}, fmt.Errorf("failed to update points: %w", err)
		}
	}
	if s.metrics != nil {
		s.metrics.RecordBatchSize(ctx, "RecomputeFixture", serviceName, len(predictions))
	}

	return results.SuccessResult[*RecomputeSummary, error](&RecomputeSummary{
		Fixtures:    1,
		Predictions: len(predictions),
		Changed:     len(changed),
	}), nil
}

// RecomputeCompetition recomputes every concluded fixture of a competition.
// Each fixture runs in its own transaction.
func (s *PredictionService) RecomputeCompetition(ctx context.Context, competitionID uuid.UUID, now time.Time) (*RecomputeSummary, error) {
	op := func(ctx context.Context) (results.OperationResult[*RecomputeSummary, error], error) {
		fixtures, err := s.fixtures.ListFixtures(ctx, s.db, competitionID, competitiondb.FixtureFilter{ConcludedOnly: true})
		if err != nil {
			return results.OperationResult[*RecomputeSummary, error]{}, fmt.Errorf("failed to list fixtures: %w", err)
		}

		var (
			mu    sync.Mutex
			total RecomputeSummary
		)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(recomputeConcurrency)
		for _, fixture := range fixtures {
			fixtureID := fixture.UUID
			g.Go(func() error {
				summary, err := s.RecomputeFixture(gctx, fixtureID, now)
				if err != nil {
					return err
				}
				mu.Lock()
				total.Fixtures += summary.Fixtures
				total.Predictions += summary.Predictions
				total.Changed += summary.Changed
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return results.OperationResult[*RecomputeSummary, error]{}, err
		}
		return results.SuccessResult[*RecomputeSummary, error](&total), nil
	}

	result, err := withTelemetry(s, ctx, "RecomputeCompetition", competitionID.String(), op)
	return unwrap(result, err)
}

// SubmitTablePrediction replaces the caller's table prediction. Writes close
// at the competition's first kickoff.
func (s *PredictionService) SubmitTablePrediction(ctx context.Context, req SubmitTablePredictionRequest, now time.Time) (*TablePredictionInfo, error) {
	submitTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*TablePredictionInfo, error], error) {
		return s.submitTablePredictionLogic(ctx, db, req, now)
	}

	result, err := withTelemetry(s, ctx, "SubmitTablePrediction", req.CompetitionID.String(), func(ctx context.Context) (results.OperationResult[*TablePredictionInfo, error], error) {
		return runInTx(s, ctx, submitTx)
	})
	return unwrap(result, err)
}

func (s *PredictionService) submitTablePredictionLogic(ctx context.Context, db bun.IDB, req SubmitTablePredictionRequest, now time.Time) (results.OperationResult[*TablePredictionInfo, error], error) {
	if req.UserID.IsAnonymous() {
		return results.FailureResult[*TablePredictionInfo, error](predictiondomain.ErrAnonymous), nil
	}

	competition, err := s.fixtures.GetCompetition(ctx, db, req.CompetitionID)
	if err != nil {
		if errors.Is(err, competitiondb.ErrNotFound) {
			return results.FailureResult[*TablePredictionInfo, error](err), nil
		}
		return results.OperationResult[*TablePredictionInfo, error]{}, fmt.Errorf("failed to get competition: %w", err)
	}

	firstKickoff, err := s.fixtures.FirstFixtureStart(ctx, db, req.CompetitionID)
	if err != nil && !errors.Is(err, competitiondb.ErrNotFound) {
		return results.OperationResult[*TablePredictionInfo, error]{}, fmt.Errorf("failed to get first kickoff: %w", err)
	}
	if err := predictiondomain.CheckTableMutation(req.UserID, firstKickoff, now); err != nil {
		return results.FailureResult[*TablePredictionInfo, error](err), nil
	}

	teams, err := s.fixtures.ListTeams(ctx, db, req.CompetitionID)
	if err != nil {
		return results.OperationResult[*TablePredictionInfo, error]{}, fmt.Errorf("failed to list teams: %w", err)
	}
	teamIDs := make([]sharedtypes.TeamID, 0, len(teams))
	for _, t := range teams {
		teamIDs = append(teamIDs, t.ID)
	}

	prediction := predictiondomain.TablePrediction{
		UserID:        req.UserID,
		CompetitionID: req.CompetitionID,
		Positions:     req.Positions,
		TopScorers:    cleanNames(req.TopScorers),
		MostAssists:   cleanNames(req.MostAssists),
	}
	if err := predictiondomain.ValidateTablePrediction(prediction, teamIDs, competition.Rules); err != nil {
		return results.FailureResult[*TablePredictionInfo, error](err), nil
	}

	row := &predictiondb.TablePrediction{
		UserID:          req.UserID,
		CompetitionUUID: req.CompetitionID,
		TopScorers:      prediction.TopScorers,
		MostAssists:     prediction.MostAssists,
		UpdatedAt:       now.UTC(),
		Positions:       make([]*predictiondb.TablePredictionPosition, 0, len(req.Positions)),
	}
	for _, p := range prediction.Sorted() {
		row.Positions = append(row.Positions, &predictiondb.TablePredictionPosition{Position: p.Position, TeamID: p.TeamID})
	}
	if err := s.repo.ReplaceTablePrediction(ctx, db, row); err != nil {
		return results.OperationResult[*TablePredictionInfo, error]{}, fmt.Errorf("failed to store table prediction: %w", err)
	}

	info := toTablePredictionInfo(row)
	return results.SuccessResult[*TablePredictionInfo, error](&info), nil
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// GetTablePrediction retrieves a user's table prediction.
func (s *PredictionService) GetTablePrediction(ctx context.Context, competitionID uuid.UUID, userID sharedtypes.UserID) (*TablePredictionInfo, error) {
	getTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*TablePredictionInfo, error], error) {
		row, err := s.repo.GetTablePrediction(ctx, db, competitionID, userID)
		if err != nil {
			if errors.Is(err, predictiondb.ErrNotFound) {
				return results.FailureResult[*TablePredictionInfo, error](err), nil
			}
			return results.OperationResult[*TablePredictionInfo, error]{}, fmt.Errorf("failed to get table prediction: %w", err)
		}
		info := toTablePredictionInfo(row)
		return results.SuccessResult[*TablePredictionInfo, error](&info), nil
	}

	result, err := withTelemetry(s, ctx, "GetTablePrediction", string(userID), func(ctx context.Context) (results.OperationResult[*TablePredictionInfo, error], error) {
		return runInTx(s, ctx, getTx)
	})
	return unwrap(result, err)
}

// ScoreTablePrediction grades a user's table prediction against the latest
// snapshot. Missing data yields an unavailable score, not an error.
func (s *PredictionService) ScoreTablePrediction(ctx context.Context, competitionID uuid.UUID, userID sharedtypes.UserID) (*predictiondomain.TableScore, error) {
	scoreTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*predictiondomain.TableScore, error], error) {
		competition, err := s.fixtures.GetCompetition(ctx, db, competitionID)
		if err != nil {
			if errors.Is(err, competitiondb.ErrNotFound) {
				return results.FailureResult[*predictiondomain.TableScore, error](err), nil
			}
			return results.OperationResult[*predictiondomain.TableScore, error]{}, fmt.Errorf("failed to get competition: %w", err)
		}

		var prediction *predictiondomain.TablePrediction
		row, err := s.repo.GetTablePrediction(ctx, db, competitionID, userID)
		switch {
		case err == nil:
			d := row.ToDomain()
			prediction = &d
		case errors.Is(err, predictiondb.ErrNotFound):
		default:
			return results.OperationResult[*predictiondomain.TableScore, error]{}, fmt.Errorf("failed to get table prediction: %w", err)
		}

		snapshot, err := s.snapshots.LatestSnapshot(ctx, db, competitionID)
		if err != nil {
			return results.OperationResult[*predictiondomain.TableScore, error]{}, fmt.Errorf("failed to get latest snapshot: %w", err)
		}

		score := predictiondomain.ScoreTablePrediction(prediction, snapshot, competition.Rules)
		return results.SuccessResult[*predictiondomain.TableScore, error](&score), nil
	}

	result, err := withTelemetry(s, ctx, "ScoreTablePrediction", string(userID), func(ctx context.Context) (results.OperationResult[*predictiondomain.TableScore, error], error) {
		return runInTx(s, ctx, scoreTx)
	})
	return unwrap(result, err)
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
	s *PredictionService,
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

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *PredictionService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}
