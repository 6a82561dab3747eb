package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"rocketshoes-cart/internal/logger"
	"rocketshoes-cart/internal/model"
	"rocketshoes-cart/internal/notifier"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrOutOfStock      = errors.New("requested amount exceeds available stock")
	ErrProductNotFound = errors.New("product is not in the cart")
	ErrUnexpected      = errors.New("unexpected cart failure")
)

// User-facing notification texts.
const (
	MsgOutOfStock   = "Requested quantity is out of stock"
	MsgAddFailed    = "Could not add product to cart"
	MsgRemoveFailed = "Could not remove product from cart"
	MsgUpdateFailed = "Could not update product amount"
)

// CatalogReader is the remote stock/product lookup.
type CatalogReader interface {
	GetStock(ctx context.Context, productID int) (*model.Stock, error)
	GetProduct(ctx context.Context, productID int) (*model.Product, error)
}

// CartStore persists the whole cart.
type CartStore interface {
	Load(ctx context.Context) ([]model.Product, error)
	Save(ctx context.Context, cart []model.Product) error
}

var CartServiceTracer = otel.Tracer("CartService")

// CartService is the cart state container. Every mutation either commits the
// complete new list to the store and to memory, or changes nothing.
// Mutations are serialized; each holds the lock across its catalog call.
type CartService struct {
	mu       sync.Mutex
	catalog  CatalogReader
	store    CartStore
	notifier notifier.Notifier
	cart     []model.Product
}

func NewCartService(catalog CatalogReader, store CartStore, n notifier.Notifier) *CartService {
	return &CartService{
		catalog:  catalog,
		store:    store,
		notifier: n,
		cart:     []model.Product{},
	}
}

// Load replaces the in-memory cart with the persisted one.
func (s *CartService) Load(ctx context.Context) error {
	ctx, span := CartServiceTracer.Start(ctx, "CartService.Load")
	defer span.End()

	cart, err := s.store.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return err
	}

	s.mu.Lock()
	s.cart = cart
	s.mu.Unlock()

	logger.Info(ctx, "Cart restored", slog.Int("entries", len(cart)))
	return nil
}

// Cart returns a snapshot of the entries in insertion order.
func (s *CartService) Cart() []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneCart(s.cart)
}

func (s *CartService) Summary() model.CartSummary {
	return model.Summarize(s.Cart())
}

// AddProduct increments productID by one, or inserts it with amount 1 after
// fetching its details. The prospective amount must not exceed stock.
func (s *CartService) AddProduct(ctx context.Context, productID int) error {
	ctx, span := CartServiceTracer.Start(ctx, "CartService.AddProduct",
		trace.WithAttributes(attribute.Int("product.id", productID)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	next := model.CloneCart(s.cart)
	idx := model.IndexOf(next, productID)

	amount := 1
	if idx >= 0 {
		amount = next[idx].Amount + 1
	}

	stock, err := s.catalog.GetStock(ctx, productID)
	if err != nil {
		return s.unexpected(ctx, span, MsgAddFailed, err)
	}
	if amount > stock.Amount {
		return s.outOfStock(ctx, span, productID, amount, stock.Amount)
	}

	if idx >= 0 {
		next[idx].Amount = amount
	} else {
		product, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return s.unexpected(ctx, span, MsgAddFailed, err)
		}
		entry := *product
		entry.ID = productID
		entry.Amount = 1
		next = append(next, entry)
	}

	if err := s.commit(ctx, next); err != nil {
		return s.unexpected(ctx, span, MsgAddFailed, err)
	}
	logger.Info(ctx, "Product added to cart", slog.Int("product_id", productID), slog.Int("amount", amount))
	return nil
}

// RemoveProduct drops productID from the cart.
func (s *CartService) RemoveProduct(ctx context.Context, productID int) error {
	ctx, span := CartServiceTracer.Start(ctx, "CartService.RemoveProduct",
		trace.WithAttributes(attribute.Int("product.id", productID)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := model.IndexOf(s.cart, productID)
	if idx < 0 {
		return s.notFound(ctx, span, MsgRemoveFailed, productID)
	}

	next := make([]model.Product, 0, len(s.cart)-1)
	next = append(next, s.cart[:idx]...)
	next = append(next, s.cart[idx+1:]...)

	if err := s.commit(ctx, next); err != nil {
		return s.unexpected(ctx, span, MsgRemoveFailed, err)
	}
	logger.Info(ctx, "Product removed from cart", slog.Int("product_id", productID))
	return nil
}

// UpdateProductAmount sets the amount of a product already in the cart.
// Non-positive amounts are ignored.
func (s *CartService) UpdateProductAmount(ctx context.Context, req model.UpdateProductAmount) error {
	ctx, span := CartServiceTracer.Start(ctx, "CartService.UpdateProductAmount",
		trace.WithAttributes(
			attribute.Int("product.id", req.ProductID),
			attribute.Int("product.amount", req.Amount),
		))
	defer span.End()

	if req.Amount <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stock, err := s.catalog.GetStock(ctx, req.ProductID)
	if err != nil {
		return s.unexpected(ctx, span, MsgUpdateFailed, err)
	}
	if req.Amount > stock.Amount {
		return s.outOfStock(ctx, span, req.ProductID, req.Amount, stock.Amount)
	}

	next := model.CloneCart(s.cart)
	idx := model.IndexOf(next, req.ProductID)
	if idx < 0 {
		return s.notFound(ctx, span, MsgUpdateFailed, req.ProductID)
	}
	next[idx].Amount = req.Amount

	if err := s.commit(ctx, next); err != nil {
		return s.unexpected(ctx, span, MsgUpdateFailed, err)
	}
	logger.Info(ctx, "Product amount updated", slog.Int("product_id", req.ProductID), slog.Int("amount", req.Amount))
	return nil
}

// commit persists next and only then swaps it in. Caller holds s.mu.
func (s *CartService) commit(ctx context.Context, next []model.Product) error {
	if err := s.store.Save(ctx, next); err != nil {
		return err
	}
	s.cart = next
	return nil
}

func (s *CartService) outOfStock(ctx context.Context, span trace.Span, productID, requested, available int) error {
	span.SetStatus(codes.Error, ErrOutOfStock.Error())
	logger.Warn(ctx, "Requested amount exceeds stock",
		slog.Int("product_id", productID),
		slog.Int("requested", requested),
		slog.Int("available", available),
	)
	s.notifier.Warn(ctx, MsgOutOfStock)
	return fmt.Errorf("product %d: %w (requested %d, available %d)", productID, ErrOutOfStock, requested, available)
}

func (s *CartService) notFound(ctx context.Context, span trace.Span, msg string, productID int) error {
	span.SetStatus(codes.Error, ErrProductNotFound.Error())
	logger.Warn(ctx, "Product not in cart", slog.Int("product_id", productID))
	s.notifier.Error(ctx, msg)
	return fmt.Errorf("product %d: %w", productID, ErrProductNotFound)
}

func (s *CartService) unexpected(ctx context.Context, span trace.Span, msg string, cause error) error {
	span.RecordError(cause)
	span.SetStatus(codes.Error, ErrUnexpected.Error())
	logger.Error(ctx, msg, slog.String("error", cause.Error()))
	s.notifier.Error(ctx, msg)
	return fmt.Errorf("%w: %w", ErrUnexpected, cause)
}
