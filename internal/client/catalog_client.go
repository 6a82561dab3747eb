package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"rocketshoes-cart/internal/logger"
	"rocketshoes-cart/internal/model"
)

// ErrEmptyBody is returned when the catalog answers 2xx without a payload.
var ErrEmptyBody = errors.New("empty response body")

// CatalogClient talks to the storefront API that serves `products/:id` and
// `stock/:id`.
type CatalogClient struct {
	http *HTTPClient
}

func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{http: NewHTTPClient(baseURL, timeout)}
}

// getRecord fetches a single JSON object. A missing or null body is a parse
// failure rather than a zero value.
func (c *CatalogClient) getRecord(ctx context.Context, path string, out interface{}) error {
	resp, err := c.http.GetWithResponse(path, RequestOptions{Context: ctx})
	if err != nil {
		return err
	}
	raw := bytes.TrimSpace(resp.RawBody)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fmt.Errorf("parse response: %w", ErrEmptyBody)
	}
	if err := decodeBody(raw, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *CatalogClient) GetStock(ctx context.Context, productID int) (*model.Stock, error) {
	var stock model.Stock
	err := c.getRecord(ctx, "stock/"+strconv.Itoa(productID), &stock)
	if err != nil {
		return nil, fmt.Errorf("get stock %d: %w", productID, err)
	}
	logger.Debug(ctx, "Stock fetched", slog.Int("product_id", productID), slog.Int("amount", stock.Amount))
	return &stock, nil
}

func (c *CatalogClient) GetProduct(ctx context.Context, productID int) (*model.Product, error) {
	var product model.Product
	err := c.getRecord(ctx, "products/"+strconv.Itoa(productID), &product)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}
	if product.ID == 0 {
		product.ID = productID
	}
	return &product, nil
}

func (c *CatalogClient) ListProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := c.http.Get("products", &products, RequestOptions{Context: ctx}); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Ping checks that the catalog answers at all.
func (c *CatalogClient) Ping(ctx context.Context) error {
	_, err := c.http.GetWithResponse("products", RequestOptions{Context: ctx, Timeout: 2 * time.Second})
	return err
}
