package standingsservice

import (
	standingsdomain "github.com/Black-And-White-Club/betting-pool/app/modules/standings/domain"
	"github.com/google/uuid"
)

// RecordSnapshotRequest stores the table after a round. Designations may
// hold comma separated names.
type RecordSnapshotRequest struct {
	CompetitionID uuid.UUID                  `json:"competition_id"`
	Round         int                        `json:"round"`
	Positions     []standingsdomain.Position `json:"positions"`
	TopScorers    []string                   `json:"top_scorers"`
	MostAssists   []string                   `json:"most_assists"`
}
