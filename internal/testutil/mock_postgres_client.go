package testutil

import (
	"context"
	"sync"

	"github.com/ihsanfund/donations/internal/postgres"
	"github.com/ihsanfund/donations/internal/types"
)

var _ postgres.IClient = (*MockPostgresClient)(nil)

// Snapshotter is a store whose contents can be rolled back
type Snapshotter interface {
	Snapshot() func()
}

type mockTx struct{}

// MockPostgresClient runs transactions one at a time and restores every
// registered store when fn fails. Serializing transactions stands in for
// row locks, so concurrent tests see the same outcomes as postgres would.
type MockPostgresClient struct {
	mu     sync.Mutex
	stores []Snapshotter

	// FailCommit makes the next outermost transaction fail after fn ran
	FailCommit error
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(stores ...Snapshotter) *MockPostgresClient {
	return &MockPostgresClient{stores: stores}
}

// WithTx executes the given function within a transaction
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	// nested calls join the outer transaction
	if _, ok := ctx.Value(types.CtxDBTransaction).(*mockTx); ok {
		return fn(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	restores := make([]func(), 0, len(c.stores))
	for _, s := range c.stores {
		restores = append(restores, s.Snapshot())
	}

	err := fn(context.WithValue(ctx, types.CtxDBTransaction, &mockTx{}))
	if err == nil && c.FailCommit != nil {
		err, c.FailCommit = c.FailCommit, nil
	}
	if err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}
