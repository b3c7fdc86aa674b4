package api

import (
	"net/http"

	"github.com/Black-And-White-Club/betting-pool/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Tokens         jwt.Service
	Tracer         trace.Tracer
	AllowedOrigins []string
	// RateLimitRPS is the sustained per-IP rate; zero disables limiting.
	RateLimitRPS float64
}

// NewRouter builds the chi router with the full middleware stack and routes.
func NewRouter(h *Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(CorrelationMiddleware)
	r.Use(middleware.Recoverer)
	if opts.Tracer != nil {
		r.Use(TracingMiddleware(opts.Tracer))
	}

	c := corslib.New(corslib.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-Id"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	if opts.RateLimitRPS > 0 {
		burst := max(int(opts.RateLimitRPS*2), 1)
		r.Use(RateLimitMiddleware(NewIPRateLimiter(rate.Limit(opts.RateLimitRPS), burst)))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(opts.Tokens))

		// Public routes
		r.Get("/competitions", h.ListCompetitions)
		r.Route("/competitions/{id}", func(r chi.Router) {
			r.Get("/", h.GetCompetition)
			r.Get("/fixtures", h.ListFixtures)
			r.Get("/standings", h.GetStandings)
			r.Get("/standings/rounds", h.ListStandingRounds)
			r.Get("/leaderboard", h.GetLeaderboard)
			r.Get("/leaderboard/history", h.GetPointsHistory)
			r.Get("/leaderboard/chart.png", h.GetPointsChart)
			r.Get("/leaderboard/export.xlsx", h.ExportLeaderboard)

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(jwt.RoleUser))
				r.Get("/predictions/me", h.ListMyPredictions)
				r.Get("/table-prediction", h.GetTablePrediction)
				r.Put("/table-prediction", h.PutTablePrediction)
				r.Get("/table-prediction/score", h.GetTableScore)
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(jwt.RoleAdmin))
				r.Post("/participants", h.AddParticipant)
				r.Post("/fixtures", h.ScheduleFixture)
				r.Post("/fixtures/import", h.ImportFixtures)
				r.Post("/standings", h.RecordStandings)
				r.Post("/standings/import", h.ImportStandings)
				r.Post("/recompute", h.RecomputeCompetition)
			})
		})
		r.With(RequireRole(jwt.RoleAdmin)).Post("/competitions", h.CreateCompetition)

		r.Route("/fixtures/{id}", func(r chi.Router) {
			r.Get("/", h.GetFixture)
			r.Get("/deadline", h.GetDeadline)

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(jwt.RoleUser))
				r.Put("/prediction", h.PutPrediction)
				r.Delete("/prediction", h.DeletePrediction)
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(jwt.RoleAdmin))
				r.Post("/result", h.RecordResult)
				r.Post("/recompute", h.RecomputeFixture)
				r.Get("/deadlines", h.ListDeadlines)
			})
		})
	})

	return r
}

// TracingMiddleware opens a span per request, named after the matched route.
func TracingMiddleware(tracer trace.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			if rc := chi.RouteContext(r.Context()); rc != nil {
				if pattern := rc.RoutePattern(); pattern != "" {
					span.SetName(r.Method + " " + pattern)
				}
			}
			span.SetAttributes(
				attribute.String("http.method", r.Method),
				attribute.Int("http.status_code", ww.Status()),
			)
		})
	}
}
