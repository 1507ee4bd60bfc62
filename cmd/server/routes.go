package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	metrics "github.com/slok/go-http-metrics/metrics/prometheus"
	metricsmiddleware "github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"
	"github.com/tendant/simple-attractions/pkg/attractions"
	"github.com/tendant/simple-attractions/pkg/attractions/api"
	"github.com/tendant/simple-attractions/pkg/attractions/config"
)

// HTTPServer wires the attractions service into an HTTP router
type HTTPServer struct {
	service  attractions.Service
	config   *config.ServerConfig
	registry *prometheus.Registry
}

// NewHTTPServer creates a new HTTP server wrapper
func NewHTTPServer(service attractions.Service, serverConfig *config.ServerConfig) *HTTPServer {
	return &HTTPServer{
		service:  service,
		config:   serverConfig,
		registry: prometheus.NewRegistry(),
	}
}

// Routes sets up the HTTP routes
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()

	recorder := metrics.NewRecorder(metrics.Config{Registry: s.registry})
	mdlw := metricsmiddleware.New(metricsmiddleware.Config{Recorder: recorder})

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Authorization"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	handler := api.NewAttractionHandler(
		s.service,
		api.NewAuthGate(s.config.JWTSecret),
		api.NewLinks(s.config.PublicBaseURL),
	)

	// Fixed handler ids keep attraction ids out of metric labels.
	r.With(std.HandlerProvider("attractions", mdlw)).Mount("/attractions", handler.Routes())
	r.With(std.HandlerProvider("uploads", mdlw)).Mount("/uploads", handler.UploadRoutes())

	return r
}

// Health check endpoint
func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"status":      "healthy",
		"environment": s.config.Environment,
	})
}
