package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"rocketshoes-cart/internal/logger"
	"rocketshoes-cart/internal/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var CartRepositoryTracer = otel.Tracer("CartRepository")

// CartRepository serializes the whole cart under a single storage key.
type CartRepository struct {
	store KeyValueStore
	key   string
}

func NewCartRepository(store KeyValueStore, key string) *CartRepository {
	return &CartRepository{store: store, key: key}
}

func (r *CartRepository) Key() string {
	return r.key
}

// Load returns the persisted cart, or an empty cart when nothing was stored yet.
func (r *CartRepository) Load(ctx context.Context) ([]model.Product, error) {
	ctx, span := CartRepositoryTracer.Start(ctx, "CartRepository.Load")
	defer span.End()
	span.SetAttributes(attribute.String("cart.key", r.key))

	raw, found, err := r.store.Get(ctx, r.key)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("read cart %q: %w", r.key, err)
	}
	if !found || raw == "" {
		return []model.Product{}, nil
	}

	var cart []model.Product
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("decode cart %q: %w", r.key, err)
	}
	if cart == nil {
		cart = []model.Product{}
	}

	logger.Debug(ctx, "Cart loaded", slog.Int("entries", len(cart)))
	return cart, nil
}

func (r *CartRepository) Save(ctx context.Context, cart []model.Product) error {
	ctx, span := CartRepositoryTracer.Start(ctx, "CartRepository.Save")
	defer span.End()
	span.SetAttributes(
		attribute.String("cart.key", r.key),
		attribute.Int("cart.entries", len(cart)),
	)

	if cart == nil {
		cart = []model.Product{}
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := r.store.Set(ctx, r.key, string(raw)); err != nil {
		span.RecordError(err)
		return fmt.Errorf("write cart %q: %w", r.key, err)
	}
	return nil
}
