package api

import (
	"net/http"
	"time"

	"reelspin/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RequestRecorder receives one observation per served request
type RequestRecorder interface {
	RecordHTTPRequest(route string, status int, duration time.Duration)
}

// Deps are the services the HTTP surface is built on
type Deps struct {
	Ledger     service.LedgerService
	Policy     service.PolicyService
	Decisions  service.DecisionProvider
	Controller service.SpinController
	SpinLog    service.SpinLogService
	Metrics    RequestRecorder
}

// NewRouter builds the HTTP router
func NewRouter(deps Deps) http.Handler {
	h := &handler{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", AccountHeader},
		MaxAge:         300,
	}))
	if deps.Metrics != nil {
		r.Use(recordRequests(deps.Metrics))
	}

	r.Get("/healthz", h.health)

	r.Route("/api", func(rr chi.Router) {
		rr.Get("/settings", h.getSettings)
		rr.Post("/settings", h.setSettings)
		rr.Post("/decision", h.requestDecision)
		rr.Get("/stats", h.stats)

		rr.Group(func(ar chi.Router) {
			ar.Use(requireAccount)

			ar.Get("/balance", h.getBalance)
			ar.Post("/balance", h.setBalance)
			ar.Post("/spin", h.spin)
			ar.Post("/autospin", h.startAutoSpin)
			ar.Delete("/autospin", h.stopAutoSpin)
			ar.Post("/turbo", h.setTurbo)
			ar.Get("/session", h.session)
			ar.Post("/log", h.logSpin)
		})
	})

	return r
}

type handler struct {
	deps Deps
}

func recordRequests(rec RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			rec.RecordHTTPRequest(route, ww.Status(), time.Since(start))
		})
	}
}
