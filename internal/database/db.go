package database

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Options struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    int
}

// DialFunc opens and verifies a connection. It must return only once the
// handle is usable or the attempt has definitively failed.
type DialFunc[T any] func(ctx context.Context) (T, error)

// Connector memoizes a single connection handle for the process lifetime.
// The first Connect dials; concurrent callers wait on the same attempt
// instead of opening their own. A failed dial is not cached.
type Connector[T any] struct {
	name   string
	dial   DialFunc[T]
	close  func(context.Context, T) error
	logger *zap.Logger

	mu    sync.Mutex
	conn  T
	ready bool
}

func NewConnector[T any](name string, dial DialFunc[T], closeFn func(context.Context, T) error, logger *zap.Logger) *Connector[T] {
	return &Connector[T]{
		name:   name,
		dial:   dial,
		close:  closeFn,
		logger: logger,
	}
}

func (c *Connector[T]) Connect(ctx context.Context) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready {
		return c.conn, nil
	}

	conn, err := c.dial(ctx)
	if err != nil {
		c.logger.Error("Error connecting to database", zap.String("driver", c.name), zap.Error(err))
		var zero T
		return zero, err
	}

	c.conn = conn
	c.ready = true
	c.logger.Info("Database connection established", zap.String("driver", c.name))
	return conn, nil
}

// Ready reports whether a connection has been established.
func (c *Connector[T]) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

func (c *Connector[T]) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready {
		return nil
	}
	c.ready = false
	var zero T
	conn := c.conn
	c.conn = zero
	if c.close == nil {
		return nil
	}
	return c.close(ctx, conn)
}
