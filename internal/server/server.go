// Package server provides the HTTP API: streaming translation,
// model discovery, history, settings and a global SSE event feed.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/lingoflow-ai/lingoflow/internal/event"
	"github.com/lingoflow-ai/lingoflow/internal/logging"
	"github.com/lingoflow-ai/lingoflow/internal/history"
	"github.com/lingoflow-ai/lingoflow/internal/settings"
	"github.com/lingoflow-ai/lingoflow/internal/translator"
	"github.com/lingoflow-ai/lingoflow/pkg/types"
)

// Config holds server configuration.
type Config struct {
	Port         int
	EnableCORS   bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:         4517,
		EnableCORS:   true,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // no write timeout, SSE responses are open-ended
	}
}

// Server is the HTTP server.
type Server struct {
	config     *Config
	router     *chi.Mux
	httpSrv    *http.Server
	appConfig  *types.Config
	translator *translator.Service
	store      *history.Store
	settings   *settings.Store
	bus        *event.Bus
	log        zerolog.Logger
}

// New creates a Server. store and settingsStore may be nil; the
// matching endpoints then answer 404.
func New(cfg *Config, appConfig *types.Config, svc *translator.Service, store *history.Store, settingsStore *settings.Store, bus *event.Bus) *Server {
	s := &Server{
		config:     cfg,
		router:     chi.NewRouter(),
		appConfig:  appConfig,
		translator: svc,
		store:      store,
		settings:   settingsStore,
		bus:        bus,
		log:        logging.Component("server"),
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RealIP)

	if s.config.EnableCORS {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Link", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Post("/translate", s.translate)
	r.Post("/translate/cancel", s.cancelTranslation)

	r.Get("/models", s.listModels)

	r.Route("/history", func(r chi.Router) {
		r.Get("/", s.listHistory)
		r.Delete("/", s.clearHistory)
		r.Get("/{recordID}", s.getHistoryRecord)
		r.Delete("/{recordID}", s.deleteHistoryRecord)
	})

	r.Route("/settings", func(r chi.Router) {
		r.Get("/", s.getSettings)
		r.Put("/", s.putSetting)
	})

	r.Get("/config", s.getConfig)
	r.Get("/event", s.events)
	r.Get("/health", s.health)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Router returns the chi router, used by tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}
