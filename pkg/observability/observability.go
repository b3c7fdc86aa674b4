package observability

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/Black-And-White-Club/betting-pool/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const serviceName = "betting-pool"

// Config selects the log output and level.
type Config struct {
	Environment string
	LogLevel    string
	Output      io.Writer
}

// Observability bundles the logger, tracer and metrics shared by modules.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Metrics  metrics.OperationMetrics
	Registry *prometheus.Registry
}

// New builds structured logging, a tracer from the global otel provider
// and a Prometheus registry with runtime collectors.
func New(cfg Config) (*Observability, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var handler slog.Handler
	if cfg.Environment == "development" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	logger := slog.New(handler).With(
		slog.String("service", serviceName),
		slog.String("environment", cfg.Environment),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.NewPrometheus(reg, "betting_pool")
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	return &Observability{
		Logger:   logger,
		Tracer:   otel.Tracer(serviceName),
		Metrics:  m,
		Registry: reg,
	}, nil
}

// NewNoop returns observability that discards everything. Used by tests and
// one-shot CLI commands.
func NewNoop() *Observability {
	return &Observability{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tracer:   noop.NewTracerProvider().Tracer(serviceName),
		Metrics:  metrics.NewNoop(),
		Registry: prometheus.NewRegistry(),
	}
}

// MetricsHandler serves the registry in the Prometheus exposition format.
func (o *Observability) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(o.Registry, promhttp.HandlerOpts{Registry: o.Registry})
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
