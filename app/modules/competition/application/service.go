package competitionservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/Black-And-White-Club/betting-pool/pkg/attr"
	"github.com/Black-And-White-Club/betting-pool/pkg/eventbus"
	"github.com/Black-And-White-Club/betting-pool/pkg/metrics"
	"github.com/Black-And-White-Club/betting-pool/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "CompetitionService"

// CompetitionService implements the Service interface.
type CompetitionService struct {
	repo      competitiondb.Repository
	publisher eventbus.Publisher
	logger    *slog.Logger
	metrics   metrics.OperationMetrics
	tracer    trace.Tracer
	db        *bun.DB
	location  *time.Location
	fallback  RecomputeScheduler
}

// ErrResultNotAnnounced reports a stored result whose recompute could not be
// scheduled. Cached points stay stale until a recompute is requested.
var ErrResultNotAnnounced = errors.New("result stored but recompute not scheduled")

var _ Service = (*CompetitionService)(nil)

// NewCompetitionService creates a new CompetitionService. A nil publisher
// disables result announcements.
func NewCompetitionService(
	repo competitiondb.Repository,
	publisher eventbus.Publisher,
	logger *slog.Logger,
	metrics metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *CompetitionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompetitionService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
		location:  time.UTC,
	}
}

// WithLocation sets the zone imported kickoff times are read in.
func (s *CompetitionService) WithLocation(loc *time.Location) *CompetitionService {
	if loc != nil {
		s.location = loc
	}
	return s
}

// WithRecomputeFallback sets the scheduler used when a result cannot be
// published.
func (s *CompetitionService) WithRecomputeFallback(r RecomputeScheduler) *CompetitionService {
	s.fallback = r
	return s
}

// CreateCompetition creates a competition, its teams and rule configuration.
func (s *CompetitionService) CreateCompetition(ctx context.Context, req CreateCompetitionRequest) (*CompetitionInfo, error) {
	createTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*CompetitionInfo, error], error) {
		return s.createCompetitionLogic(ctx, db, req)
	}

	result, err := withTelemetry(s, ctx, "CreateCompetition", req.Name+" "+req.Season, func(ctx context.Context) (results.OperationResult[*CompetitionInfo, error], error) {
		return runInTx(s, ctx, createTx)
	})
	return unwrap(result, err)
}

func (s *CompetitionService) createCompetitionLogic(ctx context.Context, db bun.IDB, req CreateCompetitionRequest) (results.OperationResult[*CompetitionInfo, error], error) {
	name := strings.TrimSpace(req.Name)
	season := strings.TrimSpace(req.Season)
	if name == "" || season == "" {
		return results.FailureResult[*CompetitionInfo, error](competitiondomain.ErrMissingName), nil
	}

	rules := req.Rules.WithDefaults()
	if err := rules.Validate(); err != nil {
		return results.FailureResult[*CompetitionInfo, error](err), nil
	}

	prizes, err := competitiondomain.ParsePrizeBands(req.PrizeBands)
	if err != nil {
		return results.FailureResult[*CompetitionInfo, error](err), nil
	}

	competition := &competitiondb.Competition{
		UUID:       uuid.New(),
		Name:       name,
		Season:     season,
		Rules:      rules,
		PrizeBands: prizes,
	}
	if err := s.repo.CreateCompetition(ctx, db, competition); err != nil {
		return results.OperationResult[*CompetitionInfo, error]{}, fmt.Errorf("failed to create competition: %w", err)
	}

	teams := make([]competitiondb.Team, 0, len(req.Teams))
	for _, in := range req.Teams {
		team := &competitiondb.Team{Name: strings.TrimSpace(in.Name), Short: strings.TrimSpace(in.Short)}
		if team.Name == "" {
			continue
		}
		if err := s.repo.UpsertTeam(ctx, db, team); err != nil {
			return results.OperationResult[*CompetitionInfo, error]{}, fmt.Errorf("failed to upsert team %q: %w", team.Name, err)
		}
		if err := s.repo.AddTeamToCompetition(ctx, db, competition.UUID, team.ID); err != nil {
			return results.OperationResult[*CompetitionInfo, error]{}, fmt.Errorf("failed to link team %q: %w", team.Name, err)
		}
		teams = append(teams, *team)
	}

	if ref := strings.TrimSpace(req.ReferenceTeam); ref != "" {
		found := false
		for _, t := range teams {
			if strings.EqualFold(t.Name, ref) {
				competition.Rules.ReferenceTeamID = t.ID
				found = true
				break
			}
		}
		if !found {
			return results.FailureResult[*CompetitionInfo, error](fmt.Errorf("%w: %s", competitiondomain.ErrUnknownReferenceTeam, ref)), nil
		}
		if err := s.repo.UpdateRules(ctx, db, competition.UUID, competition.Rules); err != nil {
			return results.OperationResult[*CompetitionInfo, error]{}, fmt.Errorf("failed to store reference team: %w", err)
		}
	}

	info := toCompetitionInfo(competition, teams)
	return results.SuccessResult[*CompetitionInfo, error](&info), nil
}

// GetCompetition retrieves a competition with its teams.
func (s *CompetitionService) GetCompetition(ctx context.Context, competitionID uuid.UUID) (*CompetitionInfo, error) {
	getTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*CompetitionInfo, error], error) {
		competition, err := s.repo.GetCompetition(ctx, db, competitionID)
		if err != nil {
			if errors.Is(err, competitiondb.ErrNotFound) {
				return results.FailureResult[*CompetitionInfo, error](err), nil
			}
			return results.OperationResult[*CompetitionInfo, error]{}, fmt.Errorf("failed to get competition: %w", err)
		}
		teams, err := s.repo.ListTeams(ctx, db, competitionID)
		if err != nil {
			return results.OperationResult[*CompetitionInfo, error]{}, fmt.Errorf("failed to list teams: %w", err)
		}
		info := toCompetitionInfo(competition, teams)
		return results.SuccessResult[*CompetitionInfo, error](&info), nil
	}

	result, err := withTelemetry(s, ctx, "GetCompetition", competitionID.String(), func(ctx context.Context) (results.OperationResult[*CompetitionInfo, error], error) {
		return runInTx(s, ctx, getTx)
	})
	return unwrap(result, err)
}

// ListCompetitions lists the competitions of a season, defaulting to the
// season of the most recent fixture.
func (s *CompetitionService) ListCompetitions(ctx context.Context, season string) ([]CompetitionInfo, error) {
	listTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]CompetitionInfo, error], error) {
		if season == "" {
			latest, err := s.repo.LatestSeason(ctx, db)
			switch {
			case err == nil:
				season = latest
			case errors.Is(err, competitiondb.ErrNotFound):
				// no fixtures anywhere yet, list everything
			default:
				return results.OperationResult[[]CompetitionInfo, error]{}, fmt.Errorf("failed to resolve latest season: %w", err)
			}
		}

		competitions, err := s.repo.ListCompetitions(ctx, db, season)
		if err != nil {
			return results.OperationResult[[]CompetitionInfo, error]{}, fmt.Errorf("failed to list competitions: %w", err)
		}
		out := make([]CompetitionInfo, 0, len(competitions))
		for i := range competitions {
			out = append(out, toCompetitionInfo(&competitions[i], nil))
		}
		return results.SuccessResult[[]CompetitionInfo, error](out), nil
	}

	result, err := withTelemetry(s, ctx, "ListCompetitions", season, func(ctx context.Context) (results.OperationResult[[]CompetitionInfo, error], error) {
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

// AddParticipant enrols a user in a competition's pool.
func (s *CompetitionService) AddParticipant(ctx context.Context, competitionID uuid.UUID, userID sharedtypes.UserID, displayName string) error {
	addTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		if userID.IsAnonymous() {
			return results.FailureResult[bool, error](sharedtypes.ErrAnonymous), nil
		}
		if _, err := s.repo.GetCompetition(ctx, db, competitionID); err != nil {
			if errors.Is(err, competitiondb.ErrNotFound) {
				return results.FailureResult[bool, error](err), nil
			}
			return results.OperationResult[bool, error]{}, fmt.Errorf("failed to get competition: %w", err)
		}
		if strings.TrimSpace(displayName) == "" {
			displayName = userID.String()
		}
		participant := &competitiondb.Participant{
			CompetitionUUID: competitionID,
			UserID:          userID,
			DisplayName:     strings.TrimSpace(displayName),
		}
		if err := s.repo.AddParticipant(ctx, db, participant); err != nil {
			return results.OperationResult[bool, error]{}, fmt.Errorf("failed to add participant: %w", err)
		}
		return results.SuccessResult[bool, error](true), nil
	}

	result, err := withTelemetry(s, ctx, "AddParticipant", userID.String(), func(ctx context.Context) (results.OperationResult[bool, error], error) {
		return runInTx(s, ctx, addTx)
	})
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return results.AsError(*result.Failure)
	}
	return nil
}

// ScheduleFixture creates a fixture between two teams of the competition.
func (s *CompetitionService) ScheduleFixture(ctx context.Context, req ScheduleFixtureRequest) (*FixtureInfo, error) {
	scheduleTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*FixtureInfo, error], error) {
		return s.scheduleFixtureLogic(ctx, db, req)
	}

	result, err := withTelemetry(s, ctx, "ScheduleFixture", req.CompetitionID.String(), func(ctx context.Context) (results.OperationResult[*FixtureInfo, error], error) {
		return runInTx(s, ctx, scheduleTx)
	})
	return unwrap(result, err)
}

func (s *CompetitionService) scheduleFixtureLogic(ctx context.Context, db bun.IDB, req ScheduleFixtureRequest) (results.OperationResult[*FixtureInfo, error], error) {
	if req.HomeTeamID == req.AwayTeamID {
		return results.FailureResult[*FixtureInfo, error](competitiondomain.ErrSameTeam), nil
	}

	teams, err := s.repo.ListTeams(ctx, db, req.CompetitionID)
	if err != nil {
		return results.OperationResult[*FixtureInfo, error]{}, fmt.Errorf("failed to list teams: %w", err)
	}
	members := make(map[sharedtypes.TeamID]struct{}, len(teams))
	for _, t := range teams {
		members[t.ID] = struct{}{}
	}
	for _, id := range []sharedtypes.TeamID{req.HomeTeamID, req.AwayTeamID} {
		if _, ok := members[id]; !ok {
			return results.FailureResult[*FixtureInfo, error](fmt.Errorf("%w: team %d", competitiondomain.ErrTeamNotInCompetition, id)), nil
		}
	}

	fixture := &competitiondb.Fixture{
		UUID:            uuid.New(),
		CompetitionUUID: req.CompetitionID,
		HomeTeamID:      req.HomeTeamID,
		AwayTeamID:      req.AwayTeamID,
		StartTime:       req.StartTime.UTC(),
	}
	if err := s.repo.CreateFixture(ctx, db, fixture); err != nil {
		return results.OperationResult[*FixtureInfo, error]{}, fmt.Errorf("failed to create fixture: %w", err)
	}

	info := toFixtureInfo(fixture)
	return results.SuccessResult[*FixtureInfo, error](&info), nil
}

// GetFixture retrieves a fixture.
func (s *CompetitionService) GetFixture(ctx context.Context, fixtureID uuid.UUID) (*FixtureInfo, error) {
	getTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*FixtureInfo, error], error) {
		fixture, err := s.repo.GetFixture(ctx, db, fixtureID)
		if err != nil {
			if errors.Is(err, competitiondb.ErrNotFound) {
				return results.FailureResult[*FixtureInfo, error](err), nil
			}
			return results.OperationResult[*FixtureInfo, error]{}, fmt.Errorf("failed to get fixture: %w", err)
		}
		info := toFixtureInfo(fixture)
		return results.SuccessResult[*FixtureInfo, error](&info), nil
	}

	result, err := withTelemetry(s, ctx, "GetFixture", fixtureID.String(), func(ctx context.Context) (results.OperationResult[*FixtureInfo, error], error) {
		return runInTx(s, ctx, getTx)
	})
	return unwrap(result, err)
}

// ListFixtures lists a competition's fixtures in kickoff order.
func (s *CompetitionService) ListFixtures(ctx context.Context, competitionID uuid.UUID) ([]FixtureInfo, error) {
	listTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]FixtureInfo, error], error) {
		fixtures, err := s.repo.ListFixtures(ctx, db, competitionID, competitiondb.FixtureFilter{})
		if err != nil {
			return results.OperationResult[[]FixtureInfo, error]{}, fmt.Errorf("failed to list fixtures: %w", err)
		}
		out := make([]FixtureInfo, 0, len(fixtures))
		for i := range fixtures {
			out = append(out, toFixtureInfo(&fixtures[i]))
		}
		return results.SuccessResult[[]FixtureInfo, error](out), nil
	}

	result, err := withTelemetry(s, ctx, "ListFixtures", competitionID.String(), func(ctx context.Context) (results.OperationResult[[]FixtureInfo, error], error) {
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

type recordedResult struct {
	fixture   *competitiondb.Fixture
	corrected bool
}

// RecordFixtureResult stores the goals of a fixture. The change is announced
// on the competition-scoped result topic once committed.
func (s *CompetitionService) RecordFixtureResult(ctx context.Context, fixtureID uuid.UUID, homeGoals, awayGoals int, now time.Time) (*FixtureInfo, error) {
	recordTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*recordedResult, error], error) {
		if err := competitiondomain.ValidateGoals(homeGoals, awayGoals); err != nil {
			return results.FailureResult[*recordedResult, error](err), nil
		}

		fixture, err := s.repo.GetFixture(ctx, db, fixtureID)
		if err != nil {
			if errors.Is(err, competitiondb.ErrNotFound) {
				return results.FailureResult[*recordedResult, error](err), nil
			}
			return results.OperationResult[*recordedResult, error]{}, fmt.Errorf("failed to get fixture: %w", err)
		}
		corrected := fixture.ToDomain().Concluded()

		recordedAt := now.UTC()
		if err := s.repo.UpdateFixtureResult(ctx, db, fixtureID, homeGoals, awayGoals, recordedAt); err != nil {
			return results.OperationResult[*recordedResult, error]{}, fmt.Errorf("failed to store result: %w", err)
		}
		fixture.HomeGoals = &homeGoals
		fixture.AwayGoals = &awayGoals
		fixture.ResultRecordedAt = &recordedAt

		return results.SuccessResult[*recordedResult, error](&recordedResult{fixture: fixture, corrected: corrected}), nil
	}

	result, err := withTelemetry(s, ctx, "RecordFixtureResult", fixtureID.String(), func(ctx context.Context) (results.OperationResult[*recordedResult, error], error) {
		return runInTx(s, ctx, recordTx)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, results.AsError(*result.Failure)
	}

	recorded := *result.Success
	if err := s.announceResult(ctx, recorded); err != nil {
		return nil, err
	}

	info := toFixtureInfo(recorded.fixture)
	return &info, nil
}

// announceResult publishes the committed result. When publishing fails the
// recompute is enqueued on the fallback scheduler instead; if that fails too
// ErrResultNotAnnounced is returned. A service without a publisher or a
// fallback leaves recomputes to the caller.
func (s *CompetitionService) announceResult(ctx context.Context, recorded *recordedResult) error {
	if s.publisher == nil && s.fallback == nil {
		return nil
	}
	f := recorded.fixture

	err := errors.New("no publisher configured")
	if s.publisher != nil {
		err = s.publishResult(ctx, recorded)
		if err == nil {
			s.logger.InfoContext(ctx, "Fixture result announced",
				attr.ExtractCorrelationID(ctx),
				attr.UUID("fixture_id", f.UUID),
				attr.Bool("corrected", recorded.corrected),
			)
			return nil
		}
		s.logger.ErrorContext(ctx, "Failed to announce fixture result",
			attr.ExtractCorrelationID(ctx),
			attr.UUID("fixture_id", f.UUID),
			attr.Error(err),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, "AnnounceFixtureResult", serviceName)
		}
	}

	if s.fallback == nil {
		return fmt.Errorf("%w: %w", ErrResultNotAnnounced, err)
	}
	jobID, enqueueErr := s.fallback.EnqueueRecompute(ctx, f.CompetitionUUID, f.UUID, *f.ResultRecordedAt)
	if enqueueErr != nil {
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, "EnqueueRecomputeFallback", serviceName)
		}
		return fmt.Errorf("%w: %w", ErrResultNotAnnounced, errors.Join(err, enqueueErr))
	}
	s.logger.WarnContext(ctx, "Fixture recompute enqueued directly",
		attr.ExtractCorrelationID(ctx),
		attr.UUID("fixture_id", f.UUID),
		attr.Int64("job_id", jobID),
	)
	return nil
}

func (s *CompetitionService) publishResult(ctx context.Context, recorded *recordedResult) error {
	f := recorded.fixture
	payload := competitiondomain.FixtureResultRecordedPayloadV1{
		CompetitionID: f.CompetitionUUID,
		FixtureID:     f.UUID,
		HomeGoals:     *f.HomeGoals,
		AwayGoals:     *f.AwayGoals,
		Corrected:     recorded.corrected,
		RecordedAt:    *f.ResultRecordedAt,
	}
	msg, err := eventbus.NewMessage(ctx, payload)
	if err != nil {
		return err
	}
	return eventbus.PublishWithCompetitionScope(s.publisher, competitiondomain.FixtureResultRecordedV1, f.CompetitionUUID.String(), msg)
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
	s *CompetitionService,
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
	s *CompetitionService,
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
