package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Black-And-White-Club/betting-pool/pkg/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Metadata keys carried on every message.
const (
	CorrelationIDKey = "correlation_id"
	CompetitionIDKey = "competition_id"
	TopicKey         = "topic"
)

// Publisher is the publishing half of a watermill pub/sub.
type Publisher interface {
	Publish(topic string, messages ...*message.Message) error
}

// NewMessage encodes payload as JSON and stamps the correlation ID from ctx.
func NewMessage(ctx context.Context, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	if id := attr.CorrelationID(ctx); id != "" {
		msg.Metadata.Set(CorrelationIDKey, id)
	}
	return msg, nil
}

// PublishWithCompetitionScope publishes msg on {baseTopic}.{competitionID}.
//
// Consumers subscribe with a wildcard to follow every competition:
//   - "betting.fixture.result.recorded.v1.*" catches all competitions
//   - "betting.fixture.result.recorded.v1.<uuid>" catches one
func PublishWithCompetitionScope(bus Publisher, baseTopic string, competitionID string, msg *message.Message) error {
	if competitionID == "" {
		return fmt.Errorf("competitionID cannot be empty for competition-scoped publish")
	}

	topic := FormatCompetitionScopedTopic(baseTopic, competitionID)
	msg.Metadata.Set(CompetitionIDKey, competitionID)
	msg.Metadata.Set(TopicKey, topic)
	return bus.Publish(topic, msg)
}

// FormatCompetitionScopedTopic formats a topic with the competition suffix without publishing.
func FormatCompetitionScopedTopic(baseTopic string, competitionID string) string {
	return fmt.Sprintf("%s.%s", baseTopic, competitionID)
}

// WildcardTopic returns the subscription pattern matching every competition.
func WildcardTopic(baseTopic string) string {
	return baseTopic + ".*"
}
