package predictionrouter

import (
	"context"
	"log/slog"

	competitiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/competition/domain"
	predictionhandlers "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/infrastructure/handlers"
	"github.com/Black-And-White-Club/betting-pool/pkg/eventbus"
	"github.com/Black-And-White-Club/betting-pool/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// PredictionRouter wires prediction handlers onto a watermill router.
type PredictionRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer

	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewPredictionRouter creates a PredictionRouter. A nil registry disables
// router metrics.
func NewPredictionRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	registry prometheus.Registerer,
) *PredictionRouter {
	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if registry != nil {
		b := metrics.NewPrometheusMetricsBuilder(registry, "betting_pool", "prediction")
		metricsBuilder = &b
	}

	return &PredictionRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      eventbus.TopicRouter{Publisher: publisher},
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
	}
}

// Configure registers middleware and handlers.
func (r *PredictionRouter) Configure(_ context.Context, handlers predictionhandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}
	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)
	r.registerHandlers(handlers)
	return nil
}

type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
}

// registerHandler registers a transformation-pattern handler with typed payload
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "prediction." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"", // TopicRouter reads the topic from message metadata
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			nil,
			handler,
		),
	)
}

func (r *PredictionRouter) registerHandlers(h predictionhandlers.Handlers) {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	// results of every competition
	registerHandler(deps, eventbus.WildcardTopic(competitiondomain.FixtureResultRecordedV1), h.HandleFixtureResultRecorded)
}

// Close closes the underlying router.
func (r *PredictionRouter) Close() error {
	return r.Router.Close()
}
