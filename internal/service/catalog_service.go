package service

import (
	"context"
	"errors"
	"strconv"

	"rocketshoes-cart/internal/model"
	"rocketshoes-cart/internal/repository"
)

var ErrInvalidID = errors.New("invalid ID format")

// CatalogRepository is implemented by the Mongo and in-memory catalogs.
type CatalogRepository interface {
	FindAllProducts(ctx context.Context) ([]model.Product, error)
	FindProductByID(ctx context.Context, id int) (*model.Product, error)
	FindStockByID(ctx context.Context, id int) (*model.Stock, error)
	Seed(ctx context.Context, catalog model.Catalog) error
}

// CatalogService backs the `products` and `stock` endpoints the cart reads.
type CatalogService struct {
	repo CatalogRepository
}

func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

func parseID(id string) (int, error) {
	n, err := strconv.Atoi(id)
	if err != nil || n <= 0 {
		return 0, ErrInvalidID
	}
	return n, nil
}

func (s *CatalogService) GetAll(ctx context.Context) ([]model.Product, error) {
	return s.repo.FindAllProducts(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	n, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindProductByID(ctx, n)
}

func (s *CatalogService) GetStock(ctx context.Context, id string) (*model.Stock, error) {
	n, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindStockByID(ctx, n)
}

func (s *CatalogService) Seed(ctx context.Context, catalog model.Catalog) error {
	for _, st := range catalog.Stock {
		if st.Amount < 0 {
			return errors.New("invalid stock data")
		}
	}
	return s.repo.Seed(ctx, catalog)
}

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
