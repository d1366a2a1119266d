// Package api implements the External HTTP API (C10): the REST + WebSocket
// surface binding every other component to the outside world.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/sentineldesk/signalhub/internal/domain"
	"github.com/sentineldesk/signalhub/internal/enrichment"
	"github.com/sentineldesk/signalhub/internal/fanout"
	"github.com/sentineldesk/signalhub/internal/pollers"
	"github.com/sentineldesk/signalhub/internal/store"
	"github.com/sentineldesk/signalhub/internal/trading"
	"github.com/sentineldesk/signalhub/internal/tts"
)

// AlertRepository is the subset of internal/alerts.Repository the API
// surface needs for the alerts CRUD endpoints.
type AlertRepository interface {
	List(symbol string) ([]domain.Alert, error)
	Get(id string) (domain.Alert, error)
	Create(a domain.Alert) (domain.Alert, error)
	SetEnabled(id string, enabled bool) error
	UpdateThreshold(id string, priceThreshold, indicatorValue *float64) error
	Delete(id string) error
}

// Config wires every collaborator the API surface delegates to.
type Config struct {
	Log                zerolog.Logger
	CORSAllowedOrigins []string
	DevMode            bool

	Notifications *store.Store
	Alerts        AlertRepository
	Enrichment    *enrichment.Service
	Broker        trading.Broker
	Pollers       *pollers.Controller
	TTS           *tts.Service
	Hub           *fanout.Hub

	ToastVisibleDuration time.Duration
	SystemStatus         SystemStatusProvider
}

// Server is the HTTP + WebSocket server for C10.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger

	notifications *notificationHandlers
	alerts        *alertHandlers
	tradingH      *tradingHandlers
	system        *systemHandlers
	voice         *voiceHandlers
	ws            *websocketHandlers
}

// New builds a Server and wires every route.
func New(cfg Config, port int) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "api").Logger(),
	}

	s.notifications = &notificationHandlers{store: cfg.Notifications, enrichment: cfg.Enrichment, log: s.log}
	s.alerts = &alertHandlers{repo: cfg.Alerts, log: s.log}
	s.tradingH = &tradingHandlers{broker: cfg.Broker, log: s.log}
	s.system = &systemHandlers{pollers: cfg.Pollers, enrichment: cfg.Enrichment, status: cfg.SystemStatus, log: s.log, startedAt: time.Now()}
	s.voice = &voiceHandlers{tts: cfg.TTS, log: s.log}
	s.ws = &websocketHandlers{hub: cfg.Hub, toastDuration: cfg.ToastVisibleDuration, log: s.log}

	s.setupMiddleware(cfg.DevMode, cfg.CORSAllowedOrigins)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:    httpAddr(port),
		Handler: s.router,
	}
	return s
}

func httpAddr(port int) string {
	return ":" + strconv.Itoa(port)
}

func (s *Server) setupMiddleware(devMode bool, allowedOrigins []string) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Route("/notifications", func(r chi.Router) {
		r.Get("/", s.notifications.list)
		r.Get("/stats/summary", s.notifications.summary)
		r.Get("/{id}", s.notifications.get)
		r.Post("/", s.notifications.create)
		r.Patch("/{id}", s.notifications.update)
		r.Post("/{id}/respond", s.notifications.respond)
		r.Delete("/{id}", s.notifications.delete)
	})

	s.router.Route("/alerts", func(r chi.Router) {
		r.Get("/", s.alerts.list)
		r.Post("/", s.alerts.create)
		r.Patch("/{id}", s.alerts.update)
		r.Delete("/{id}", s.alerts.delete)
	})

	s.router.Route("/trading", func(r chi.Router) {
		r.Get("/balance", s.tradingH.balance)
		r.Get("/positions", s.tradingH.listPositions)
		r.Post("/positions", s.tradingH.openPosition)
		r.Delete("/positions/{id}", s.tradingH.closePosition)
		r.Patch("/positions/{id}/stop-loss", s.tradingH.setStopLoss)
		r.Patch("/positions/{id}/trailing-stop", s.tradingH.setTrailingStop)
	})

	s.router.Route("/system", func(r chi.Router) {
		r.Get("/status", s.system.status)
		r.Post("/sources/{name}/start", s.system.startSource)
		r.Post("/sources/{name}/stop", s.system.stopSource)
	})

	s.router.Route("/voice", func(r chi.Router) {
		r.Get("/providers", s.voice.providers)
		r.Post("/synthesize", s.voice.synthesize)
	})

	s.router.Get("/ws/notifications", s.ws.notifications)
	s.router.Get("/ws/prices", s.ws.prices)
	s.router.Get("/ws/market-data", s.ws.marketData)
}

// Start begins serving HTTP.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("starting HTTP server")
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server, bounded by ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
