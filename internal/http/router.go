package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/gcpanel/costcore/internal/http/budget"
	"github.com/gcpanel/costcore/internal/http/changeorder"
	"github.com/gcpanel/costcore/internal/http/contracts"
	"github.com/gcpanel/costcore/internal/http/forecast"
	"github.com/gcpanel/costcore/internal/http/payapp"
	"github.com/gcpanel/costcore/internal/http/summary"
)

func New(
	budgetsV1 *budget.Handler,
	forecastsV1 *forecast.Handler,
	payappsV1 *payapp.Handler,
	changeOrdersV1 *changeorder.Handler,
	contractsV1 *contracts.Handler,
	summaryV1 *summary.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/budget/items", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			budgetsV1.Routes(r)
		})

		r.Route("/forecasts", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			forecastsV1.Routes(r)
		})

		r.Route("/payment-applications", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			payappsV1.Routes(r)
		})

		r.Route("/change-orders", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			changeOrdersV1.Routes(r)
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			contractsV1.Routes(r)
		})

		r.Route("/summary", summaryV1.Routes)
	})

	return router
}
