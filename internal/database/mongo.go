package database

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"rocketshoes-cart/internal/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

var (
	mongoInstance *Mongo
	mongoOnce     sync.Once
	mongoErr      error
)

// Instance connects once per process and returns the shared handle.
func Instance(globalCtx context.Context, uri, dbName string) (*Mongo, error) {
	mongoOnce.Do(func() {
		log := logger.Instance()

		opts := options.Client().
			ApplyURI(uri).
			SetMonitor(otelmongo.NewMonitor())

		client, err := mongo.Connect(globalCtx, opts)
		if err != nil {
			log.Error("Failed to connect to MongoDB", slog.String("error", err.Error()))
			mongoErr = err
			return
		}

		pingCtx, cancel := context.WithTimeout(globalCtx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			log.Error("MongoDB ping failed", slog.String("error", err.Error()))
			mongoErr = err
			return
		}

		log.Info("Connected to MongoDB successfully", slog.String("database", dbName))

		mongoInstance = &Mongo{
			Client:   client,
			Database: client.Database(dbName),
		}
	})

	return mongoInstance, mongoErr
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
