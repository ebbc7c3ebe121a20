package api

import (
	"context"
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
	"github.com/andrescamacho/glp-fleet-go/internal/infrastructure/config"
)

// Server is the HTTP control surface of the daemon.
type Server struct {
	httpServer *http.Server
	logger     common.Logger
}

// NewServer builds the router and wraps it in an http.Server. registry
// and feed may be nil to disable /metrics and /ws.
func NewServer(
	cfg *config.APIConfig,
	h *Handlers,
	feed *SnapshotFeed,
	registry *prometheus.Registry,
	logger common.Logger,
) *Server {
	r := mux.NewRouter()
	r.NotFoundHandler = notFoundHandler()
	r.MethodNotAllowedHandler = methodNotAllowedHandler()

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	r.HandleFunc("/environment", h.Environment).Methods(http.MethodGet)
	r.HandleFunc("/vehicles", h.Vehicles).Methods(http.MethodGet)
	r.HandleFunc("/vehicles/{id}", h.Vehicle).Methods(http.MethodGet)
	r.HandleFunc("/orders", h.Orders).Methods(http.MethodGet)
	r.HandleFunc("/orders", h.CreateOrder).Methods(http.MethodPost)
	r.HandleFunc("/blockages", h.Blockages).Methods(http.MethodGet)

	r.HandleFunc("/simulation/status", h.SimulationStatus).Methods(http.MethodGet)
	r.HandleFunc("/simulation/start", h.StartSimulation).Methods(http.MethodPost)
	r.HandleFunc("/simulation/pause", h.PauseSimulation).Methods(http.MethodPost)
	r.HandleFunc("/simulation/speed", h.GetSpeed).Methods(http.MethodGet)
	r.HandleFunc("/simulation/speed", h.SetSpeed).Methods(http.MethodPost)

	r.HandleFunc("/vehicle/breakdown", h.ReportBreakdown).Methods(http.MethodPost)
	r.HandleFunc("/vehicle/repair", h.RepairVehicle).Methods(http.MethodPost)

	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	if feed != nil {
		r.Handle("/ws", feed).Methods(http.MethodGet)
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit.Requests), cfg.RateLimit.Burst)
	var handler http.Handler = r
	handler = rateLimitMiddleware(limiter)(handler)
	handler = loggingMiddleware(logger)(handler)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	handler = gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(origins),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type"}),
	)(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Address,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logger,
	}
}

// Start listens and serves until Shutdown.
func (s *Server) Start() error {
	s.logger.Log("INFO", "http server listening", map[string]interface{}{
		"address": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
