package postgres

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/logger"
	"go.uber.org/fx"
)

// IClient defines the interface for postgres client operations
type IClient interface {
	// WithTx wraps the given function in a transaction. Nested calls join the
	// outer transaction through a savepoint.
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

// RetryPolicy bounds how often a transaction is replayed after a
// serialization failure or deadlock
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy is used by the fx module
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:      3,
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     time.Second,
}

// Client runs transactions on DB and replays the outermost one when postgres
// reports a concurrency conflict. fn must therefore be safe to re-run, or the
// caller must opt out with WithoutRetry.
type Client struct {
	db     *DB
	logger *logger.Logger
	retry  RetryPolicy
}

// Module provides the sqlx connection and transaction client
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			NewDB,
			NewClient,
			NewSentryClient,
		),
	)
}

// NewClient creates a new transaction client
func NewClient(db *DB, logger *logger.Logger) *Client {
	return NewClientWithRetry(db, logger, DefaultRetryPolicy)
}

func NewClientWithRetry(db *DB, logger *logger.Logger, retry RetryPolicy) *Client {
	return &Client{
		db:     db,
		logger: logger,
		retry:  retry,
	}
}

// WithTx wraps the given function in a transaction
func (c *Client) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	// inner calls must not replay on their own, the outer retry owns the whole unit
	if InTx(ctx) || !retryAllowed(ctx) {
		return c.db.WithTx(ctx, fn)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retry.InitialInterval
	b.MaxInterval = c.retry.MaxInterval
	b.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++
		err := c.db.WithTx(ctx, fn)
		if err == nil {
			return nil
		}
		if ierr.IsConcurrencyConflict(err) {
			c.logger.Warnw("transaction conflicted, retrying",
				"attempt", attempt,
				"error", err,
			)
			return err
		}
		return backoff.Permanent(err)
	}

	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, c.retry.MaxRetries), ctx))
}

type noRetryKey struct{}

// WithoutRetry marks ctx so the outermost transaction runs exactly once.
// Use it when fn has side effects outside the database, such as opening a
// payment with a provider.
func WithoutRetry(ctx context.Context) context.Context {
	return context.WithValue(ctx, noRetryKey{}, true)
}

func retryAllowed(ctx context.Context) bool {
	off, _ := ctx.Value(noRetryKey{}).(bool)
	return !off
}

// RetryDisabled reports whether ctx was marked by WithoutRetry
func RetryDisabled(ctx context.Context) bool {
	return !retryAllowed(ctx)
}
