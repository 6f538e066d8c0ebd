package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"medicine-inventory-service/internal/api"
	"medicine-inventory-service/internal/config"
	"medicine-inventory-service/internal/domain"
	"medicine-inventory-service/internal/logger"
	"medicine-inventory-service/internal/metrics"
	"medicine-inventory-service/internal/store"
)

const (
	defaultAppName = "MedicineInventoryService"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").Fatalf("Error loading configuration: %v", err)
	}
	log := logger.New(cfg.LogLevel)
	log.Infof("Starting %s (APP_ENV: %s, LogLevel: %s, store: %s)", defaultAppName, cfg.AppEnv, cfg.LogLevel, cfg.Store.Driver)

	// --- Record Store ---
	dataStore, err := openStore(cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize %s store: %v", cfg.Store.Driver, err)
	}

	if cfg.Store.SeedCategories {
		seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		created, err := store.SeedCategories(seedCtx, dataStore, domain.DefaultCategories())
		cancel()
		if err != nil {
			log.Fatalf("Failed to seed default categories: %v", err)
		}
		log.Infof("Seeded %d default categories", created)
	}

	limits := api.Limits{DefaultLimit: cfg.Query.DefaultLimit, MaxLimit: cfg.Query.MaxLimit}

	// --- Initialize API Handlers ---
	httpAPIHandler := api.NewHTTPHandler(dataStore, dataStore, log, limits)
	grpcAPIHandler := api.NewGRPCHandler(dataStore, dataStore, log, limits)

	// --- Setup & Start HTTP Server ---
	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter, log)
	if cfg.Metrics.Enabled {
		m := metrics.New(dataStore, time.Now, log)
		httpRouter.Use(m.Middleware)
		httpRouter.Method(http.MethodGet, "/metrics", m.Handler())
		log.Infof("Prometheus metrics registered at /metrics")
	}
	httpRouter.Get("/api/health", api.HealthCheck(defaultAppName, dataStore, log))
	httpAPIHandler.RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
		ErrorLog:     log.Std(),
	}

	go func() {
		log.Infof("HTTP server listening on port %s", cfg.HttpServer.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server ListenAndServe error: %v", err)
		}
		log.Infof("HTTP server has stopped.")
	}()

	// --- Setup & Start gRPC Server ---
	var grpcServer *grpc.Server
	if cfg.GrpcServer.Enabled {
		grpcServer = setupGRPCServer(log, grpcAPIHandler)
		grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
		if err != nil {
			log.Fatalf("Failed to listen for gRPC on port %s: %v", cfg.GrpcServer.Port, err)
		}

		go func() {
			log.Infof("gRPC server listening on port %s", cfg.GrpcServer.Port)
			if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				log.Fatalf("gRPC server Serve error: %v", err)
			}
			log.Infof("gRPC server has stopped.")
		}()
	}

	// --- Graceful Shutdown ---
	shutdownComplete := make(chan struct{})
	go waitForShutdown(log, httpServer, grpcServer, dataStore, shutdownComplete)

	<-shutdownComplete
	log.Infof("Service shutdown sequence finished.")
}

// openStore builds the configured backend. The postgres backend creates its schema if absent.
func openStore(cfg *config.Config, log *logger.Logger) (store.Store, error) {
	if cfg.Store.Driver != config.StoreDriverPostgres {
		log.Infof("Using in-memory store; records are lost on restart.")
		return store.NewMemoryStore(), nil
	}

	db, err := sql.Open("postgres", cfg.Postgres.DSN())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	pg := store.NewPostgresStore(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.Infof("Database connection established and schema ensured.")
	return pg, nil
}

func setupBaseMiddleware(router *chi.Mux, log *logger.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Std(), NoColor: true}))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	log.Debugf("Base HTTP middleware registered.")
}

func setupGRPCServer(log *logger.Logger, grpcAPIHandler *api.GRPCHandler) *grpc.Server {
	s := grpc.NewServer()

	api.RegisterInventoryServiceServer(s, grpcAPIHandler)
	log.Infof("%s gRPC service registered.", api.InventoryServiceName)

	// Register gRPC Health Checking Protocol service.
	grpc_health_v1.RegisterHealthServer(s, health.NewServer())

	// Enable gRPC server reflection (useful for tools like grpcurl).
	reflection.Register(s)
	log.Debugf("gRPC health and reflection services registered.")

	return s
}

func waitForShutdown(
	log *logger.Logger,
	httpServer *http.Server,
	grpcServer *grpc.Server,
	dataStore store.Store,
	shutdownComplete chan struct{},
) {
	defer close(shutdownComplete)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	receivedSignal := <-sigChan
	log.Infof("Received signal: %s. Starting graceful shutdown...", receivedSignal)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	stoppedGrpc := make(chan struct{})
	if grpcServer != nil {
		go func() {
			grpcServer.GracefulStop()
			close(stoppedGrpc)
		}()
	} else {
		close(stoppedGrpc)
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warnf("HTTP server graceful shutdown failed: %v", err)
	} else {
		log.Infof("HTTP server gracefully shut down.")
	}

	select {
	case <-stoppedGrpc:
		if grpcServer != nil {
			log.Infof("gRPC server gracefully shut down.")
		}
	case <-shutdownCtx.Done():
		if grpcServer != nil {
			log.Warnf("gRPC server graceful shutdown timed out: %v", shutdownCtx.Err())
			grpcServer.Stop()
			log.Infof("gRPC server forced stop.")
		}
	}

	// The store goes last so in-flight requests can finish against it.
	if err := dataStore.Close(); err != nil {
		log.Warnf("Error closing store: %v", err)
	}

	log.Infof("Graceful shutdown sequence completed.")
}
