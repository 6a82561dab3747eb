package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rocketshoes-cart/internal/client"
	"rocketshoes-cart/internal/config"
	"rocketshoes-cart/internal/database"
	handler "rocketshoes-cart/internal/handler/http"
	"rocketshoes-cart/internal/logger"
	middleware_http "rocketshoes-cart/internal/middleware/http"
	"rocketshoes-cart/internal/notifier"
	"rocketshoes-cart/internal/repository"
	"rocketshoes-cart/internal/service"
	"rocketshoes-cart/internal/tracer"
	"rocketshoes-cart/internal/version"

	"github.com/gorilla/mux"
)

func openStore(ctx context.Context, cfg *config.Config) (repository.KeyValueStore, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return repository.NewMemoryStore(), nil
	case config.StorageFile:
		return repository.NewFileStore(cfg.StorageFilePath)
	case config.StorageMongo:
		db, err := database.Instance(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		return repository.NewMongoStore(db.Database), nil
	case config.StorageRedis:
		rdb, err := database.RedisInstance(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		return repository.NewRedisStore(rdb), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func main() {
	globalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.Instance()
	cfg := config.Instance()

	log.Info(cfg.AppName,
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
	)

	if cfg.CatalogHTTP == "" {
		log.Error("Missing required environment variables", slog.Any("missing", []string{"CATALOG_HTTP"}))
		os.Exit(1)
	}

	shutdown, err := tracer.Instance(globalCtx, cfg)
	if err != nil {
		log.Warn("Tracing disabled", slog.String("error", err.Error()))
	}
	defer shutdown()

	store, err := openStore(globalCtx, cfg)
	if err != nil {
		log.Error("Failed to open cart storage",
			slog.String("driver", cfg.StorageDriver),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// Wiring
	feed := notifier.NewFeed(int(cfg.NotificationBuffer))
	catalogClient := client.NewCatalogClient(cfg.CatalogHTTP, time.Duration(cfg.CatalogTimeoutMs)*time.Millisecond)
	cartRepo := repository.NewCartRepository(store, cfg.CartStorageKey)
	cartService := service.NewCartService(catalogClient, cartRepo, notifier.Multi{notifier.LogNotifier{}, feed})

	if err := cartService.Load(globalCtx); err != nil {
		log.Error("Stored cart is unreadable, starting empty", slog.String("error", err.Error()))
	}

	healthService := service.NewHealthService(map[string]service.Pinger{
		"storage": store,
		"catalog": catalogClient,
	})

	// Routing
	router := mux.NewRouter()
	router.Use(middleware_http.TraceMiddleware)
	handler.RegisterCartRoutes(router,
		handler.NewCartHandler(cartService),
		handler.NewNotificationHandler(feed),
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
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Graceful shutdown failed", slog.String("error", err.Error()))
		}
	}()

	log.Info("HTTP server running",
		slog.String("addr", server.Addr),
		slog.String("storage", cfg.StorageDriver),
		slog.String("cart_key", cartRepo.Key()),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("Server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("HTTP server stopped")
}
