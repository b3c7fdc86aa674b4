// Package handlerwrapper adapts typed event handlers to watermill.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/betting-pool/pkg/attr"
	"github.com/Black-And-White-Club/betting-pool/pkg/eventbus"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Result is one outgoing message produced by a handler. Topic is the full
// topic; use eventbus.FormatCompetitionScopedTopic for scoped events.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// ReturningMetrics records handler outcomes. It may be nil.
type ReturningMetrics interface {
	RecordHandlerAttempt(ctx context.Context, handler string)
	RecordHandlerSuccess(ctx context.Context, handler string)
	RecordHandlerFailure(ctx context.Context, handler string)
	RecordHandlerDuration(ctx context.Context, handler string, d time.Duration)
}

// WrapTransformingTyped decodes the JSON payload into T, runs handler and
// encodes every Result as an outgoing message carrying the correlation ID.
// The outgoing topic is stored in metadata for eventbus.TopicRouter.
func WrapTransformingTyped[T any](
	name string,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics ReturningMetrics,
	handler func(context.Context, *T) ([]Result, error),
) message.HandlerFunc {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(name)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := msg.Context()
		if id := msg.Metadata.Get(eventbus.CorrelationIDKey); id != "" {
			ctx = attr.WithCorrelationID(ctx, id)
		}
		ctx, span := tracer.Start(ctx, name, trace.WithAttributes(
			attribute.String("message.uuid", msg.UUID),
			attribute.String("message.topic", msg.Metadata.Get(eventbus.TopicKey)),
		))
		defer span.End()

		start := time.Now()
		if metrics != nil {
			metrics.RecordHandlerAttempt(ctx, name)
			defer func() { metrics.RecordHandlerDuration(ctx, name, time.Since(start)) }()
		}

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Dropping undecodable message",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", name),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			span.SetStatus(codes.Error, "decode")
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, name)
			}
			// redelivery would fail the same way
			return nil, nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Handler failed",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", name),
				attr.Error(err),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, name)
			}
			return nil, err
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			m, err := eventbus.NewMessage(ctx, r.Payload)
			if err != nil {
				return nil, fmt.Errorf("%s: encode %s: %w", name, r.Topic, err)
			}
			for k, v := range r.Metadata {
				m.Metadata.Set(k, v)
			}
			m.Metadata.Set(eventbus.TopicKey, r.Topic)
			out = append(out, m)
		}

		if metrics != nil {
			metrics.RecordHandlerSuccess(ctx, name)
		}
		return out, nil
	}
}
