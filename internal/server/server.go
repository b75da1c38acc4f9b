// Package server wires configuration, storage, transport and routes into
// a runnable HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/maalgodam/app/controllers"
	"github.com/shashiranjanraj/maalgodam/app/repositories"
	"github.com/shashiranjanraj/maalgodam/app/routes"
	"github.com/shashiranjanraj/maalgodam/app/services"
	"github.com/shashiranjanraj/maalgodam/config"
	"github.com/shashiranjanraj/maalgodam/database"
	"github.com/shashiranjanraj/maalgodam/pkg/broker"
	"github.com/shashiranjanraj/maalgodam/pkg/cache"
	"github.com/shashiranjanraj/maalgodam/pkg/logger"
	"github.com/shashiranjanraj/maalgodam/pkg/metrics"
	"github.com/shashiranjanraj/maalgodam/pkg/middleware"
	"github.com/shashiranjanraj/maalgodam/pkg/reqid"
	"github.com/shashiranjanraj/maalgodam/pkg/router"
	"github.com/shashiranjanraj/maalgodam/pkg/storage"
)

// Server holds the process-wide dependencies for one running instance.
type Server struct {
	router *router.Router
	http   *http.Server

	mongoClose func(context.Context) error
	redis      *cache.Cache
	events     broker.Publisher
}

// New assembles the full dependency graph. MongoDB is mandatory; Redis
// and Kafka degrade gracefully when unreachable or unconfigured.
func New(ctx context.Context) (*Server, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("server: load config: %w", err)
	}

	client, err := database.Connect(ctx)
	if err != nil {
		return nil, err
	}

	// Redis is an accelerator, not a dependency. Run without it if it
	// cannot be reached.
	redis, err := cache.Connect(ctx, config.RedisAddr(), config.RedisPassword())
	if err != nil {
		logger.Warn("redis unavailable, item cache disabled", "error", err)
		redis = nil
	}

	repo := repositories.NewItemRepository(database.ItemsCollection(client), redis)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	disk, err := storage.FromConfig()
	if err != nil {
		return nil, err
	}

	var events broker.Publisher
	if brokers := config.KafkaBrokers(); len(brokers) > 0 {
		events = broker.NewKafkaPublisher(brokers, config.KafkaTopic())
		logger.Info("stock event publication enabled",
			"brokers", brokers, "topic", config.KafkaTopic())
	} else {
		logger.Info("KAFKA_BROKERS not set, stock event publication disabled")
	}

	inventory := services.NewInventoryService(repo, events)
	uploads := services.NewUploadService(disk, config.UploadFolder())

	r := router.New()
	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(200, time.Minute),
	)

	routes.RegisterAPI(r, controllers.NewInventoryController(inventory, uploads))
	routes.RegisterHealth(r)
	r.HandleFunc("/metrics", metrics.Handler())

	return &Server{
		router: r,
		http: &http.Server{
			Addr:              ":" + config.AppPort(),
			Handler:           r.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		mongoClose: client.Disconnect,
		redis:      redis,
		events:     events,
	}, nil
}

// Router exposes the route table for the route:list command.
func (s *Server) Router() *router.Router {
	return s.router
}

// Run serves HTTP until ctx is cancelled or a shutdown signal arrives,
// then drains in-flight requests and closes every connection.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", s.http.Addr, "env", config.AppEnv())
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.closeDeps()
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := s.http.Shutdown(shutdownCtx)
	s.closeDeps()
	if err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) closeDeps() {
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			logger.Error("close kafka writer", "error", err)
		}
	}
	if err := s.redis.Close(); err != nil {
		logger.Error("close redis", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.mongoClose(ctx); err != nil {
		logger.Error("close mongo", "error", err)
	}
}
