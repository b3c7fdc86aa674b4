package predictionhandlers

import (
	"context"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	"github.com/Black-And-White-Club/betting-pool/pkg/handlerwrapper"
)

// Handlers defines the contract for prediction event handlers.
type Handlers interface {
	HandleFixtureResultRecorded(ctx context.Context, payload *competitiondomain.FixtureResultRecordedPayloadV1) ([]handlerwrapper.Result, error)
}
