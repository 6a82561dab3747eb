package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"rocketshoes-cart/internal/model"
)

// MemoryCatalog is the in-process catalog used when no MongoDB is configured.
type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[int]model.Product
	stock    map[int]model.Stock
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		products: make(map[int]model.Product),
		stock:    make(map[int]model.Stock),
	}
}

// ReadCatalogFile decodes a `{"products": [...], "stock": [...]}` seed file.
func ReadCatalogFile(path string) (model.Catalog, error) {
	var catalog model.Catalog
	raw, err := os.ReadFile(path)
	if err != nil {
		return catalog, fmt.Errorf("read catalog %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return catalog, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return catalog, nil
}

func (c *MemoryCatalog) Seed(ctx context.Context, catalog model.Catalog) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range catalog.Products {
		p.Amount = 0
		c.products[p.ID] = p
	}
	for _, s := range catalog.Stock {
		c.stock[s.ID] = s
	}
	return nil
}

func (c *MemoryCatalog) FindAllProducts(ctx context.Context) ([]model.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *MemoryCatalog) FindProductByID(ctx context.Context, id int) (*model.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (c *MemoryCatalog) FindStockByID(ctx context.Context, id int) (*model.Stock, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.stock[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (c *MemoryCatalog) Ping(ctx context.Context) error {
	return nil
}
