package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rocketshoes-cart/internal/config"
	"rocketshoes-cart/internal/database"
	handler "rocketshoes-cart/internal/handler/http"
	"rocketshoes-cart/internal/logger"
	middleware_http "rocketshoes-cart/internal/middleware/http"
	"rocketshoes-cart/internal/repository"
	"rocketshoes-cart/internal/service"
	"rocketshoes-cart/internal/tracer"
	"rocketshoes-cart/internal/version"

	"github.com/gorilla/mux"
)

// catalogBackend is satisfied by both the Mongo and in-memory catalogs.
type catalogBackend interface {
	service.CatalogRepository
	service.Pinger
}

func main() {
	globalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.Instance()
	cfg := config.Instance()

	log.Info(cfg.AppName+"-catalog",
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
	)

	shutdown, err := tracer.Instance(globalCtx, cfg)
	if err != nil {
		log.Warn("Tracing disabled", slog.String("error", err.Error()))
	}
	defer shutdown()

	var backend catalogBackend
	if cfg.MongoURI != "" && cfg.MongoDBName != "" {
		db, err := database.Instance(globalCtx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			log.Error("Failed to connect to MongoDB", slog.String("error", err.Error()))
			os.Exit(1)
		}
		backend = repository.NewCatalogRepository(db.Database)
	} else {
		log.Warn("MONGO_URI not set, serving catalog from memory")
		backend = repository.NewMemoryCatalog()
	}

	catalogService := service.NewCatalogService(backend)

	if cfg.CatalogSeedFile != "" {
		catalog, err := repository.ReadCatalogFile(cfg.CatalogSeedFile)
		if err != nil {
			log.Error("Failed to read catalog seed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := catalogService.Seed(globalCtx, catalog); err != nil {
			log.Error("Failed to seed catalog", slog.String("error", err.Error()))
			os.Exit(1)
		}
		log.Info("Catalog seeded",
			slog.String("file", cfg.CatalogSeedFile),
			slog.Int("products", len(catalog.Products)),
			slog.Int("stock", len(catalog.Stock)),
		)
	}

	healthService := service.NewHealthService(map[string]service.Pinger{"catalog": backend})

	router := mux.NewRouter()
	router.Use(middleware_http.TraceMiddleware)
	handler.RegisterCatalogRoutes(router,
		handler.NewCatalogHandler(catalogService),
		handler.NewHealthHandler(healthService),
	)

	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-globalCtx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}()

	log.Info("Catalog server running", slog.String("addr", server.Addr))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("Server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
