package api

import (
	"net/http"

	"supply-route-service/internal/api/handlers"
	"supply-route-service/internal/domain"
	"supply-route-service/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers only see the order service and ports, never concrete adapters.
func NewRouter(orders *services.OrderService, defaultOrigin domain.Coordinates, health handlers.Pinger) http.Handler {
	supply := &handlers.SupplyHandler{Orders: orders}
	sessions := &handlers.SessionHandler{Orders: orders, DefaultOrigin: defaultOrigin}
	status := &handlers.HealthHandler{DB: health}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(requestContext)

	r.Get("/health", status.Health)
	r.Get("/materials", supply.Materials)
	r.Get("/supply", supply.List)
	r.Get("/supply/{id}", supply.Get)

	r.Route("/sessions", func(sr chi.Router) {
		sr.Post("/", sessions.Create)
		sr.Route("/{id}", func(s chi.Router) {
			s.Get("/", sessions.Get)
			s.Delete("/", sessions.Delete)
			s.Put("/origin", sessions.SetOrigin)
			s.Post("/routes", sessions.PlanRoute)
			s.Get("/overlays", sessions.Overlays)
			s.Get("/layers", sessions.Layers)
			s.Post("/layers/{layerID}/click", sessions.Click)
			s.Post("/layers/{layerID}/{action}", sessions.LayerAction)
			s.Post("/share", sessions.Share)
		})
	})

	return r
}
