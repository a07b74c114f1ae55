package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cafe-delivery-service/internal/http/handlers"
)

const requestTimeout = 5 * time.Second

// New constructs a chi-based http.Handler with base middleware and routes.
// Extra middlewares (observability, rate limiting) run after the base chain
// in the order given.
func New(h *handlers.Handlers, del *handlers.DeliveryHandler, mws ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	for _, mw := range mws {
		if mw != nil {
			r.Use(mw)
		}
	}
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/ping", h.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.HealthcheckHead))

	r.Route("/deliveries", func(r chi.Router) {
		r.Get("/", del.List)
		r.Get("/{id}", del.Get)
		r.Patch("/{id}/status", del.UpdateStatus)
		r.Patch("/{id}/time", del.UpdateTime)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
