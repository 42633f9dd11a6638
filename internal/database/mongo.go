package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// NewMongoConnector returns a Connector that yields the configured database
// once the primary has answered a ping.
func NewMongoConnector(opts Options, logger *zap.Logger) *Connector[*mongo.Database] {
	dial := func(ctx context.Context) (*mongo.Database, error) {
		if opts.ConnectTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.ConnectTimeout)
			defer cancel()
		}

		clientOpts := options.Client().
			ApplyURI(opts.URI).
			SetAppName("jobboard")
		if opts.MaxPoolSize > 0 {
			clientOpts.SetMaxPoolSize(uint64(opts.MaxPoolSize))
		}
		if opts.ConnectTimeout > 0 {
			clientOpts.SetConnectTimeout(opts.ConnectTimeout)
		}

		client, err := mongo.Connect(ctx, clientOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to create mongo client: %w", err)
		}

		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("failed to ping mongo: %w", err)
		}

		return client.Database(opts.Database), nil
	}

	closeFn := func(ctx context.Context, db *mongo.Database) error {
		return db.Client().Disconnect(ctx)
	}

	return NewConnector("mongodb", dial, closeFn, logger)
}
