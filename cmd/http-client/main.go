package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"rocketshoes-cart/internal/client"
	"rocketshoes-cart/internal/config"
	"rocketshoes-cart/internal/logger"
	"rocketshoes-cart/internal/model"
	"rocketshoes-cart/internal/utils"
	"rocketshoes-cart/internal/version"
)

// Drives the cart API with random add / update / remove calls against the
// products the catalog advertises, logging the resulting cart summary.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.Instance()
	cfg := config.Instance()

	log.Info(cfg.AppName+"-client",
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
	)

	var missing []string
	if cfg.CartHTTP == "" {
		missing = append(missing, "CART_HTTP")
	}
	if cfg.CatalogHTTP == "" {
		missing = append(missing, "CATALOG_HTTP")
	}
	if len(missing) > 0 {
		log.Error("Missing required environment variables", slog.Any("missing", missing))
		os.Exit(1)
	}

	delay := time.Duration(cfg.ClientDelayMs) * time.Millisecond
	catalog := client.NewCatalogClient(cfg.CatalogHTTP, 2*time.Second)
	cart := client.NewHTTPClient(cfg.CartHTTP, 2*time.Second)

	log.Info("HTTP client started",
		slog.String("cart", cfg.CartHTTP),
		slog.String("catalog", cfg.CatalogHTTP),
		slog.Int64("delay_ms", cfg.ClientDelayMs),
	)

	for {
		select {
		case <-ctx.Done():
			log.Info("HTTP client stopped")
			return
		case <-time.After(delay):
		}

		products, err := catalog.ListProducts(ctx)
		if err != nil || len(products) == 0 {
			logger.Warn(ctx, "No products available", slog.Any("error", err))
			continue
		}
		productID := products[rand.Intn(len(products))].ID
		path := "cart/products/" + strconv.Itoa(productID)
		opts := client.RequestOptions{Context: ctx}

		var current []model.Product
		switch rand.Intn(4) {
		case 0:
			err = cart.Delete(path, &current, opts)
		case 1:
			err = cart.Put(path, map[string]int{"amount": 1 + rand.Intn(3)}, &current, opts)
		default:
			err = cart.Post("cart/products", map[string]int{"productId": productID}, &current, opts)
		}

		var statusErr *client.StatusError
		if errors.As(err, &statusErr) {
			logger.Info(ctx, "Cart rejected operation",
				slog.Int("product_id", productID),
				slog.Int("status", statusErr.StatusCode),
				slog.String("body", string(statusErr.Body)),
			)
			continue
		}
		if err != nil {
			logger.Error(ctx, "Cart request failed", slog.String("error", err.Error()))
			continue
		}

		summary := model.Summarize(current)
		logger.Info(ctx, "Cart updated",
			slog.Int("size", summary.Size),
			slog.Int("units", summary.Units),
			slog.Float64("total", summary.Total),
			slog.String("cart", utils.ToJSONString(current)),
		)
	}
}
