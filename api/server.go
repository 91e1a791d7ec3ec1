package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"weather-widget/collector"
	"weather-widget/render"
	"weather-widget/widget"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// maxBodyBytes bounds POST bodies
const maxBodyBytes = 1 << 12

// Server exposes the widget's lookup and favorites over HTTP
type Server struct {
	fetcher widget.Fetcher
	widget  *widget.Widget
	log     logrus.FieldLogger
	metrics *metrics
	now     func() time.Time
	server  *http.Server
}

// NewServer creates a new API server. Lookups go straight to fetcher;
// favorites are shared with w.
func NewServer(fetcher widget.Fetcher, w *widget.Widget, port int, log logrus.FieldLogger) *Server {
	s := &Server{
		fetcher: fetcher,
		widget:  w,
		log:     log,
		metrics: newMetrics(),
		now:     time.Now,
	}
	s.metrics.favorites.Set(float64(len(w.Favorites())))
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealthCheck)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/weather", s.handleWeather)
		r.Get("/favorites", s.handleListFavorites)
		r.Post("/favorites", s.handleAddFavorite)
	})
	return r
}

// Start begins the API server
func (s *Server) Start() error {
	s.log.WithField("addr", s.server.Addr).Info("starting API server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// handleWeather runs a joint lookup and returns the rendered view
func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		s.metrics.searchesTotal.WithLabelValues(outcomeInvalid).Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameter 'city' is required"})
		return
	}

	res, err := s.fetcher.Fetch(r.Context(), city)
	if err != nil {
		if errors.Is(err, collector.ErrEmptyCity) {
			s.metrics.searchesTotal.WithLabelValues(outcomeInvalid).Inc()
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameter 'city' is required"})
			return
		}
		s.metrics.searchesTotal.WithLabelValues(outcomeNotFound).Inc()
		s.log.WithError(err).WithField("city", city).Info("weather lookup failed")
		view := render.Build(widget.State{Error: true, Favorites: s.widget.Favorites()}, s.now())
		writeJSON(w, http.StatusNotFound, view)
		return
	}

	s.metrics.searchesTotal.WithLabelValues(outcomeOK).Inc()
	weather := res.Weather
	view := render.Build(widget.State{
		Weather:   &weather,
		Forecast:  res.Forecast,
		Favorites: s.widget.Favorites(),
	}, s.now())
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"favorites": s.widget.Favorites()})
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		City string `json:"city"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	if err := s.widget.AddFavorite(r.Context(), body.City); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save favorites"})
		return
	}

	favorites := s.widget.Favorites()
	s.metrics.favorites.Set(float64(len(favorites)))
	writeJSON(w, http.StatusOK, map[string]any{"favorites": favorites})
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
	})
}

// logRequests logs each request with logrus and counts it per route
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.metrics.requestsTotal.WithLabelValues(route, r.Method).Inc()

		s.log.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"route":      route,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).Round(time.Microsecond).String(),
		}).Debug("request")
	})
}
