package api

import (
	_ "countryrates/docs"
	"countryrates/internal/country/handler"
	"countryrates/internal/metrics"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swagger "github.com/swaggo/http-swagger"
)

func NewRouter(countryHandler *handler.Handler, m *metrics.Metrics, metricsHandler http.Handler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if m != nil {
		router.Use(m.Middleware)
	}

	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	router.Method(http.MethodGet, "/metrics", metricsHandler)

	// Swagger UI
	router.Get("/swagger/*", swagger.WrapHandler)

	router.Post("/countries/refresh", countryHandler.Refresh)
	router.Get("/countries/image", countryHandler.Image)
	router.Get("/countries", countryHandler.List)
	router.Get("/countries/{name}", countryHandler.GetByName)
	router.Delete("/countries/{name}", countryHandler.DeleteByName)
	router.Get("/status", countryHandler.Status)
	return router
}
