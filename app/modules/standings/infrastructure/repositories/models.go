package standingsdb

import (
	"time"

	standingsdomain "github.com/Black-And-White-Club/betting-pool/app/modules/standings/domain"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Snapshot is the stored league table of a competition after a round.
type Snapshot struct {
	bun.BaseModel `bun:"table:standings_snapshots,alias:ss"`

	UUID            uuid.UUID           `bun:"uuid,pk,type:uuid"`
	CompetitionUUID uuid.UUID           `bun:"competition_uuid,type:uuid,notnull"`
	Round           int                 `bun:"round,notnull"`
	TopScorers      []string            `bun:"top_scorers,array"`
	MostAssists     []string            `bun:"most_assists,array"`
	RecordedAt      time.Time           `bun:"recorded_at,nullzero,notnull,default:current_timestamp"`
	Positions       []*SnapshotPosition `bun:"rel:has-many,join:uuid=snapshot_uuid"`
}

// SnapshotPosition is one row of a stored table.
type SnapshotPosition struct {
	bun.BaseModel `bun:"table:standings_snapshot_positions,alias:ssp"`

	SnapshotUUID uuid.UUID          `bun:"snapshot_uuid,pk,type:uuid"`
	Position     int                `bun:"position,pk"`
	TeamID       sharedtypes.TeamID `bun:"team_id,notnull"`
}

// ToDomain converts the snapshot and its positions.
func (s *Snapshot) ToDomain() *standingsdomain.Snapshot {
	out := &standingsdomain.Snapshot{
		ID:            s.UUID,
		CompetitionID: s.CompetitionUUID,
		Round:         s.Round,
		TopScorers:    s.TopScorers,
		MostAssists:   s.MostAssists,
		RecordedAt:    s.RecordedAt,
		Positions:     make([]standingsdomain.Position, 0, len(s.Positions)),
	}
	for _, p := range s.Positions {
		out.Positions = append(out.Positions, standingsdomain.Position{Position: p.Position, TeamID: p.TeamID})
	}
	out.Normalize()
	return out
}

// FromDomain builds the stored form of a snapshot.
func FromDomain(s *standingsdomain.Snapshot) *Snapshot {
	out := &Snapshot{
		UUID:            s.ID,
		CompetitionUUID: s.CompetitionID,
		Round:           s.Round,
		TopScorers:      s.TopScorers,
		MostAssists:     s.MostAssists,
		RecordedAt:      s.RecordedAt,
		Positions:       make([]*SnapshotPosition, 0, len(s.Positions)),
	}
	for _, p := range s.Positions {
		out.Positions = append(out.Positions, &SnapshotPosition{SnapshotUUID: s.ID, Position: p.Position, TeamID: p.TeamID})
	}
	return out
}
