/*
server.go - Router setup for the operations API

PURPOSE:
  Wires handlers, middleware, and routes into one chi router. Everything
  except /api/login and the scenario endpoints requires a bearer token.

MIDDLEWARE STACK:
  - RequestID: Tags every request
  - Logger: Request logging
  - Recoverer: Panic recovery
  - CORS: The admin SPA runs on a different origin in development

SEE ALSO:
  - handlers.go: The handlers being routed
  - cmd/server/main.go: Process entry point
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the full API router.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)

		// Scenario endpoints stay open so a fresh database can be
		// seeded before the first login.
		r.Get("/scenarios", h.ListScenarios)
		r.Post("/scenarios/load", h.LoadScenario)
		r.Post("/scenarios/reset", h.ResetScenario)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Route("/hotels", func(r chi.Router) {
				r.Get("/", h.ListHotels)
				r.Post("/", h.CreateHotel)
				r.Get("/{id}", h.GetHotel)
				r.Get("/{id}/prices", h.ListHotelPrices)
				r.Post("/{id}/prices", h.CreateHotelPrice)
			})
			r.Get("/room-types", h.ListRoomTypes)
			r.Get("/meal-plans", h.ListMealPlans)

			r.Route("/cabs", func(r chi.Router) {
				r.Get("/", h.ListCabs)
				r.Post("/", h.CreateCab)
				r.Get("/{id}", h.GetCab)
				r.Get("/{id}/prices", h.ListCabPrices)
				r.Post("/{id}/prices", h.CreateCabPrice)
			})
			r.Get("/cab-types", h.ListCabTypes)
			r.Get("/locations", h.ListLocations)

			r.Route("/trips", func(r chi.Router) {
				r.Get("/", h.ListTrips)
				r.Post("/", h.CreateTrip)
				r.Get("/{id}", h.GetTrip)
				r.Get("/{id}/quotes", h.ListQuotes)
				r.Post("/{id}/quotes", h.CreateQuote)
			})

			r.Get("/tenants", h.ListTenants)
			r.Post("/tenants", h.CreateTenant)
			r.Get("/users", h.ListUsers)

			r.Get("/notifications", h.ListNotifications)
			r.Post("/notifications/{id}/read", h.MarkNotificationRead)

			r.Get("/prices", h.BulkPrices)
		})
	})

	return r
}
