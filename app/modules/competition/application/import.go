package competitionservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	"github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/parsers"
	competitiondb "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories"
	"github.com/Black-And-White-Club/betting-pool/pkg/results"
	"github.com/Black-And-White-Club/betting-pool/pkg/teamnames"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type importOutcome struct {
	summary  ImportSummary
	recorded []*recordedResult
}

// ImportFixtures implements Service.
func (s *CompetitionService) ImportFixtures(ctx context.Context, competitionID uuid.UUID, fileName string, data []byte, now time.Time) (*ImportSummary, error) {
	importTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*importOutcome, error], error) {
		return s.importFixturesLogic(ctx, db, competitionID, fileName, data, now)
	}

	result, err := withTelemetry(s, ctx, "ImportFixtures", competitionID.String(), func(ctx context.Context) (results.OperationResult[*importOutcome, error], error) {
		return runInTx(s, ctx, importTx)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, results.AsError(*result.Failure)
	}

	outcome := *result.Success
	if s.metrics != nil {
		s.metrics.RecordBatchSize(ctx, "ImportFixtures", serviceName, outcome.summary.Created)
	}
	var errs []error
	for _, recorded := range outcome.recorded {
		if err := s.announceResult(ctx, recorded); err != nil {
			errs = append(errs, err)
		}
	}
	// the fixtures are committed either way, so the summary is returned with
	// the error
	return &outcome.summary, errors.Join(errs...)
}

func (s *CompetitionService) importFixturesLogic(ctx context.Context, db bun.IDB, competitionID uuid.UUID, fileName string, data []byte, now time.Time) (results.OperationResult[*importOutcome, error], error) {
	parser, err := parsers.NewFactory(parsers.NewKickoffParser(s.location, now)).GetParser(fileName)
	if err != nil {
		return results.FailureResult[*importOutcome, error](err), nil
	}
	parsed, err := parser.Parse(data, fileName)
	if err != nil {
		return results.FailureResult[*importOutcome, error](err), nil
	}

	teams, err := s.repo.ListTeams(ctx, db, competitionID)
	if err != nil {
		return results.OperationResult[*importOutcome, error]{}, fmt.Errorf("failed to list teams: %w", err)
	}
	if len(teams) == 0 {
		return results.FailureResult[*importOutcome, error](fmt.Errorf("%w: competition has no teams", competitiondomain.ErrTeamNotInCompetition)), nil
	}
	candidates := make([]teamnames.Team, 0, len(teams))
	for _, t := range teams {
		candidates = append(candidates, teamnames.Team{ID: t.ID, Name: t.Name, Short: t.Short})
	}
	resolver := teamnames.NewResolver(candidates)

	fixtures := make([]*competitiondb.Fixture, 0, len(parsed.Rows))
	var errs []error
	for _, row := range parsed.Rows {
		ids, err := resolver.ResolveAll([]string{row.Home, row.Away})
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", row.Line, err))
			continue
		}
		if ids[0] == ids[1] {
			errs = append(errs, fmt.Errorf("line %d: %w", row.Line, competitiondomain.ErrSameTeam))
			continue
		}
		fixture := &competitiondb.Fixture{
			UUID:            uuid.New(),
			CompetitionUUID: competitionID,
			HomeTeamID:      ids[0],
			AwayTeamID:      ids[1],
			StartTime:       row.Kickoff,
			HomeGoals:       row.HomeGoals,
			AwayGoals:       row.AwayGoals,
		}
		if row.HomeGoals != nil && row.AwayGoals != nil {
			recordedAt := now.UTC()
			fixture.ResultRecordedAt = &recordedAt
		}
		fixtures = append(fixtures, fixture)
	}
	if len(errs) > 0 {
		return results.FailureResult[*importOutcome, error](errors.Join(errs...)), nil
	}

	outcome := &importOutcome{}
	for _, fixture := range fixtures {
		if err := s.repo.CreateFixture(ctx, db, fixture); err != nil {
			return results.OperationResult[*importOutcome, error]{}, fmt.Errorf("failed to create fixture: %w", err)
		}
		outcome.summary.Created++
		if fixture.ResultRecordedAt != nil {
			outcome.summary.WithResults++
			outcome.recorded = append(outcome.recorded, &recordedResult{fixture: fixture})
		}
	}
	return results.SuccessResult[*importOutcome, error](outcome), nil
}
