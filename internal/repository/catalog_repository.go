package repository

import (
	"context"
	"errors"

	"rocketshoes-cart/internal/logger"
	"rocketshoes-cart/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
)

var ErrNotFound = errors.New("not found")

var CatalogRepositoryTracer = otel.Tracer("CatalogRepository")

// CatalogRepository serves products and stock levels from MongoDB.
type CatalogRepository struct {
	products *mongo.Collection
	stock    *mongo.Collection
}

func NewCatalogRepository(db *mongo.Database) *CatalogRepository {
	return &CatalogRepository{
		products: db.Collection("products"),
		stock:    db.Collection("stock"),
	}
}

func (r *CatalogRepository) FindAllProducts(ctx context.Context) ([]model.Product, error) {
	ctx, span := CatalogRepositoryTracer.Start(ctx, "CatalogRepository.FindAllProducts")
	defer span.End()
	logger.Info(ctx, "Repository")

	cursor, err := r.products.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []model.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *CatalogRepository) FindProductByID(ctx context.Context, id int) (*model.Product, error) {
	ctx, span := CatalogRepositoryTracer.Start(ctx, "CatalogRepository.FindProductByID")
	defer span.End()
	logger.Info(ctx, "Repository")

	var product model.Product
	err := r.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *CatalogRepository) FindStockByID(ctx context.Context, id int) (*model.Stock, error) {
	ctx, span := CatalogRepositoryTracer.Start(ctx, "CatalogRepository.FindStockByID")
	defer span.End()
	logger.Info(ctx, "Repository")

	var stock model.Stock
	err := r.stock.FindOne(ctx, bson.M{"_id": id}).Decode(&stock)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

// Seed upserts every product and stock record of catalog.
func (r *CatalogRepository) Seed(ctx context.Context, catalog model.Catalog) error {
	ctx, span := CatalogRepositoryTracer.Start(ctx, "CatalogRepository.Seed")
	defer span.End()

	upsert := options.Replace().SetUpsert(true)
	for _, p := range catalog.Products {
		if _, err := r.products.ReplaceOne(ctx, bson.M{"_id": p.ID}, p, upsert); err != nil {
			return err
		}
	}
	for _, s := range catalog.Stock {
		if _, err := r.stock.ReplaceOne(ctx, bson.M{"_id": s.ID}, s, upsert); err != nil {
			return err
		}
	}
	return nil
}

func (r *CatalogRepository) Ping(ctx context.Context) error {
	return r.products.Database().Client().Ping(ctx, nil)
}
