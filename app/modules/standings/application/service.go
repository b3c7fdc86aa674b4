package standingsservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories"
	standingsdomain "github.com/Black-And-White-Club/betting-pool/app/modules/standings/domain"
	"github.com/Black-And-White-Club/betting-pool/app/modules/standings/infrastructure/parsers"
	standingsdb "github.com/Black-And-White-Club/betting-pool/app/modules/standings/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/Black-And-White-Club/betting-pool/pkg/attr"
	"github.com/Black-And-White-Club/betting-pool/pkg/metrics"
	"github.com/Black-And-White-Club/betting-pool/pkg/results"
	"github.com/Black-And-White-Club/betting-pool/pkg/teamnames"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "StandingsService"

// ErrTeamCountMismatch is returned when a snapshot does not list every team
// of the competition.
var ErrTeamCountMismatch = errors.New("snapshot must list every competition team")

// StandingsService implements the Service interface.
type StandingsService struct {
	repo    standingsdb.Repository
	teams   TeamReader
	logger  *slog.Logger
	metrics metrics.OperationMetrics
	tracer  trace.Tracer
	db      *bun.DB
}

var _ Service = (*StandingsService)(nil)

// NewStandingsService creates a new StandingsService.
func NewStandingsService(
	repo standingsdb.Repository,
	teams TeamReader,
	logger *slog.Logger,
	metrics metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *StandingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StandingsService{
		repo:    repo,
		teams:   teams,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
	}
}

// RecordSnapshot validates and stores the table of a round. Recording a
// round again replaces it.
func (s *StandingsService) RecordSnapshot(ctx context.Context, req RecordSnapshotRequest, now time.Time) (*standingsdomain.Snapshot, error) {
	recordTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*standingsdomain.Snapshot, error], error) {
		return s.recordSnapshotLogic(ctx, db, req, now)
	}

	result, err := withTelemetry(s, ctx, "RecordSnapshot", req.CompetitionID.String(), func(ctx context.Context) (results.OperationResult[*standingsdomain.Snapshot, error], error) {
		return runInTx(s, ctx, recordTx)
	})
	return unwrap(result, err)
}

func (s *StandingsService) recordSnapshotLogic(ctx context.Context, db bun.IDB, req RecordSnapshotRequest, now time.Time) (results.OperationResult[*standingsdomain.Snapshot, error], error) {
	snapshot := &standingsdomain.Snapshot{
		ID:            uuid.New(),
		CompetitionID: req.CompetitionID,
		Round:         req.Round,
		Positions:     req.Positions,
		TopScorers:    req.TopScorers,
		MostAssists:   req.MostAssists,
		RecordedAt:    now.UTC(),
	}
	snapshot.Normalize()
	if err := snapshot.Validate(); err != nil {
		return results.FailureResult[*standingsdomain.Snapshot, error](err), nil
	}

	teams, err := s.teams.ListTeams(ctx, db, req.CompetitionID)
	if err != nil {
		return results.OperationResult[*standingsdomain.Snapshot, error]{}, fmt.Errorf("failed to list teams: %w", err)
	}
	if failure := checkMembership(snapshot, teams); failure != nil {
		return results.FailureResult[*standingsdomain.Snapshot, error](failure), nil
	}

	row := standingsdb.FromDomain(snapshot)
	if err := s.repo.SaveSnapshot(ctx, db, row); err != nil {
		return results.OperationResult[*standingsdomain.Snapshot, error]{}, fmt.Errorf("failed to save snapshot: %w", err)
	}
	snapshot.ID = row.UUID

	s.logger.InfoContext(ctx, "Standings snapshot recorded",
		attr.ExtractCorrelationID(ctx),
		attr.UUID("competition_id", req.CompetitionID),
		attr.Int("round", snapshot.Round),
		attr.Int("teams", snapshot.Size()),
	)
	return results.SuccessResult[*standingsdomain.Snapshot, error](snapshot), nil
}

// checkMembership requires the snapshot to list exactly the competition's
// teams. A competition without registered teams accepts any table.
func checkMembership(snapshot *standingsdomain.Snapshot, teams []competitiondb.Team) error {
	if len(teams) == 0 {
		return nil
	}
	members := make(map[sharedtypes.TeamID]struct{}, len(teams))
	for _, t := range teams {
		members[t.ID] = struct{}{}
	}
	var errs []error
	if snapshot.Size() != len(teams) {
		errs = append(errs, fmt.Errorf("%w: got %d, want %d", ErrTeamCountMismatch, snapshot.Size(), len(teams)))
	}
	for _, p := range snapshot.Positions {
		if _, ok := members[p.TeamID]; !ok {
			errs = append(errs, fmt.Errorf("%w: team %d", competitiondomain.ErrTeamNotInCompetition, p.TeamID))
		}
	}
	return errors.Join(errs...)
}

// ImportSnapshot parses an .xlsx standings sheet and records it.
func (s *StandingsService) ImportSnapshot(ctx context.Context, competitionID uuid.UUID, round int, fileName string, data []byte, now time.Time) (*standingsdomain.Snapshot, error) {
	importTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*standingsdomain.Snapshot, error], error) {
		parsed, err := parsers.ParseXLSX(data, fileName)
		if err != nil {
			return results.FailureResult[*standingsdomain.Snapshot, error](err), nil
		}

		teams, err := s.teams.ListTeams(ctx, db, competitionID)
		if err != nil {
			return results.OperationResult[*standingsdomain.Snapshot, error]{}, fmt.Errorf("failed to list teams: %w", err)
		}
		known := make([]teamnames.Team, 0, len(teams))
		for _, t := range teams {
			known = append(known, teamnames.Team{ID: t.ID, Name: t.Name, Short: t.Short})
		}
		resolver := teamnames.NewResolver(known)

		req := RecordSnapshotRequest{
			CompetitionID: competitionID,
			Round:         round,
			TopScorers:    parsed.TopScorers,
			MostAssists:   parsed.MostAssists,
		}
		var errs []error
		for _, row := range parsed.Rows {
			id, err := resolver.Resolve(row.Team)
			if err != nil {
				errs = append(errs, fmt.Errorf("line %d: %w", row.Line, err))
				continue
			}
			req.Positions = append(req.Positions, standingsdomain.Position{Position: row.Position, TeamID: id})
		}
		if len(errs) > 0 {
			return results.FailureResult[*standingsdomain.Snapshot, error](errors.Join(errs...)), nil
		}

		if s.metrics != nil {
			s.metrics.RecordBatchSize(ctx, "ImportSnapshot", serviceName, len(req.Positions))
		}
		return s.recordSnapshotLogic(ctx, db, req, now)
	}

	result, err := withTelemetry(s, ctx, "ImportSnapshot", fileName, func(ctx context.Context) (results.OperationResult[*standingsdomain.Snapshot, error], error) {
		return runInTx(s, ctx, importTx)
	})
	return unwrap(result, err)
}

// LatestSnapshot returns the snapshot with the highest round.
func (s *StandingsService) LatestSnapshot(ctx context.Context, competitionID uuid.UUID) (*standingsdomain.Snapshot, error) {
	getTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*standingsdomain.Snapshot, error], error) {
		return s.loadSnapshot(func() (*standingsdb.Snapshot, error) {
			return s.repo.LatestSnapshot(ctx, db, competitionID)
		})
	}

	result, err := withTelemetry(s, ctx, "LatestSnapshot", competitionID.String(), func(ctx context.Context) (results.OperationResult[*standingsdomain.Snapshot, error], error) {
		return runInTx(s, ctx, getTx)
	})
	return unwrap(result, err)
}

// SnapshotForRound returns the snapshot of one round.
func (s *StandingsService) SnapshotForRound(ctx context.Context, competitionID uuid.UUID, round int) (*standingsdomain.Snapshot, error) {
	getTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*standingsdomain.Snapshot, error], error) {
		return s.loadSnapshot(func() (*standingsdb.Snapshot, error) {
			return s.repo.GetSnapshotByRound(ctx, db, competitionID, round)
		})
	}

	result, err := withTelemetry(s, ctx, "SnapshotForRound", competitionID.String(), func(ctx context.Context) (results.OperationResult[*standingsdomain.Snapshot, error], error) {
		return runInTx(s, ctx, getTx)
	})
	return unwrap(result, err)
}

func (s *StandingsService) loadSnapshot(load func() (*standingsdb.Snapshot, error)) (results.OperationResult[*standingsdomain.Snapshot, error], error) {
	row, err := load()
	if err != nil {
		if errors.Is(err, standingsdb.ErrNotFound) {
			return results.FailureResult[*standingsdomain.Snapshot, error](standingsdomain.ErrSnapshotNotFound), nil
		}
		return results.OperationResult[*standingsdomain.Snapshot, error]{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return results.SuccessResult[*standingsdomain.Snapshot, error](row.ToDomain()), nil
}

// ListRounds returns the recorded rounds in ascending order.
func (s *StandingsService) ListRounds(ctx context.Context, competitionID uuid.UUID) ([]int, error) {
	listTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]int, error], error) {
		rounds, err := s.repo.ListRounds(ctx, db, competitionID)
		if err != nil {
			return results.OperationResult[[]int, error]{}, fmt.Errorf("failed to list rounds: %w", err)
		}
		return results.SuccessResult[[]int, error](rounds), nil
	}

	result, err := withTelemetry(s, ctx, "ListRounds", competitionID.String(), func(ctx context.Context) (results.OperationResult[[]int, error], error) {
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
	s *StandingsService,
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
	s *StandingsService,
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
