package router

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kalenderium/internal/http/errs"
	"kalenderium/internal/http/handlers"
	"kalenderium/internal/http/middleware"
	"kalenderium/internal/policy"
	"kalenderium/internal/route"
)

type Options struct {
	RateLimit   float64
	RateBurst   int
	CORSOrigins []string
	// Registry receives the API metrics and is served at /v1/metrics. A nil
	// registry gets a fresh one with the Go and process collectors.
	Registry *prometheus.Registry
	// Quiet drops the request logger, for tests.
	Quiet bool
}

// NewRouter mounts the page routes from h.Routes and the /v1 API. The rate
// limiter's sweeper stops when ctx ends.
func NewRouter(ctx context.Context, h *handlers.Handler, opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RedirectSlashes)
	if !opts.Quiet {
		r.Use(chimiddleware.Logger)
	}
	r.Use(chimiddleware.Recoverer)

	r.NotFound(notFound)
	r.MethodNotAllowed(errs.MethodNotAllowedResponse)

	// Pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.SecureHeaders)
		r.Use(middleware.Session(h.Sessions))
		r.Use(middleware.SanitizeForm)
		r.Use(middleware.CSRF(h.Sessions))

		for _, e := range h.Routes.Entries() {
			r.With(middleware.Guard(e.Name, e.Guard)).Get(e.Path, h.Page(e))
		}

		r.With(middleware.Guard("login", policy.LoggedInRedirectDashboard)).Post("/login", h.PostLogin)
		r.With(middleware.Guard("signup", policy.LoggedInRedirectDashboard)).Post("/signup", h.PostSignup)
		r.Post("/logout", h.PostLogout)

		r.Route("/calendar/events", func(r chi.Router) {
			r.Use(middleware.Guard("calendar", policy.IsLoggedIn))
			r.Post("/", h.PostCreateEvent)
			r.Post("/{id}/delete", h.PostDeleteEvent)
		})
	})

	// API
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	metrics := middleware.NewMetrics(reg)
	limiter := middleware.NewRateLimiter(ctx, opts.RateLimit, opts.RateBurst)
	r.Route("/v1", func(r chi.Router) {
		r.Use(metrics.Handler)
		r.Use(middleware.SecureHeaders)
		r.Use(middleware.CORS(opts.CORSOrigins))
		r.Use(limiter.Handler)
		r.Use(middleware.Authenticate(h.Accounts))

		r.NotFound(errs.NotFoundResponse)
		r.MethodNotAllowed(errs.MethodNotAllowedResponse)

		r.Get("/healthcheck", h.Healthcheck)
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		r.Post("/signup", h.APISignUp)
		r.Post("/login", h.APILogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Post("/logout", h.APILogout)
			r.Get("/calendar", h.APIListEvents)
			r.Post("/calendar", h.APIAddEvent)
			r.Get("/calendar/export", h.APIExportEvents)
			r.Delete("/calendar/{id}", h.APIDeleteEvent)
		})
	})

	return r
}

// notFound sends unknown page navigations to the fallback route. Anything
// that is not a plain navigation gets a JSON 404.
func notFound(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet && !strings.HasPrefix(r.URL.Path, "/v1/") {
		middleware.Redirect(w, r, route.FallbackPath)
		return
	}
	errs.NotFoundResponse(w, r)
}
