package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"autopostq/internal/constants"
	"autopostq/internal/metrics"
	"autopostq/internal/middleware"
	"autopostq/internal/models"
	"autopostq/internal/service"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// QueueAPI is the slice of the queue service the HTTP layer depends on.
type QueueAPI interface {
	List(ctx context.Context, status string, cursor int64, limit int) (*service.ListResult, error)
	CreateGeneric(ctx context.Context, input service.CreateAutopostInput) (*models.Autopost, error)
	CreateCampaign(ctx context.Context, brief service.CampaignBrief) (*models.Autopost, error)
	Publish(ctx context.Context, id int64, publishedAt time.Time) (*models.Autopost, error)
	ReleaseDue(ctx context.Context, until time.Time) ([]models.Autopost, error)
	Ping(ctx context.Context) error
}

type Server struct {
	router  *mux.Router
	logger  *logrus.Logger
	queue   QueueAPI
	metrics *metrics.Metrics
	config  *models.Config
	server  *http.Server
}

func NewServer(cfg *models.Config, queue QueueAPI, m *metrics.Metrics, logger *logrus.Logger) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		logger:  logger,
		queue:   queue,
		metrics: m,
		config:  cfg,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Observability(s.logger, s.metrics))

	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	api := s.router.PathPrefix("/api/autoposts").Subrouter()
	api.HandleFunc("", s.handleList()).Methods(http.MethodGet)
	api.HandleFunc("", s.handleCreate()).Methods(http.MethodPost)
	api.HandleFunc("/creative", s.handleCreateCampaign()).Methods(http.MethodPost)
	api.HandleFunc("/release-due", s.handleReleaseDue()).Methods(http.MethodPost)
	api.HandleFunc("/{id}/publish", s.handlePublish()).Methods(http.MethodPost)
}

func (s *Server) Start() error {
	port := s.config.Server.Port
	if port <= 0 {
		port = constants.DefaultServerPort
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  serverTimeout(s.config.Server.ReadTimeoutSec, constants.DefaultServerReadTimeout),
		WriteTimeout: serverTimeout(s.config.Server.WriteTimeoutSec, constants.DefaultServerWriteTimeout),
		IdleTimeout:  serverTimeout(s.config.Server.IdleTimeoutSec, constants.DefaultServerIdleTimeout),
	}

	s.logger.Infof("Starting server on port %d", port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func serverTimeout(configured, fallback int) time.Duration {
	if configured <= 0 {
		configured = fallback
	}
	return time.Duration(configured) * time.Second
}
