package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ihsanfund/donations/internal/logger"
)

// slowQueryThreshold is where a query is logged at warn. Row locks taken by
// webhook reconciliation show up here when deliveries for one donation pile up.
const slowQueryThreshold = 250 * time.Millisecond

// TracedQuerier logs every statement with its duration. Argument values are
// never logged since they carry donor contact details.
type TracedQuerier struct {
	Querier
	logger *logger.Logger
	txID   string
}

func NewTracedQuerier(q Querier, logger *logger.Logger, txID string) *TracedQuerier {
	return &TracedQuerier{
		Querier: q,
		logger:  logger,
		txID:    txID,
	}
}

func (tq *TracedQuerier) trace(ctx context.Context, query string, nargs int, run func() error) error {
	start := time.Now()
	err := run()
	elapsed := time.Since(start)

	fields := []interface{}{
		"duration_ms", elapsed.Milliseconds(),
		"query", compactQuery(query),
		"args", nargs,
	}
	if tq.txID != "" {
		fields = append(fields, "tx_id", tq.txID)
	}

	log := tq.logger.WithContext(ctx)
	switch {
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		log.Errorw("database query failed", append(fields, "error", err)...)
	case elapsed >= slowQueryThreshold:
		log.Warnw("slow database query", fields...)
	default:
		log.Debugw("database query completed", fields...)
	}
	return err
}

func (tq *TracedQuerier) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	var result sql.Result
	err := tq.trace(ctx, query, len(args), func() (err error) {
		result, err = tq.Querier.ExecContext(ctx, query, args...)
		return err
	})
	return result, err
}

func (tq *TracedQuerier) NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error) {
	var result sql.Result
	err := tq.trace(ctx, query, 1, func() (err error) {
		result, err = tq.Querier.NamedExecContext(ctx, query, arg)
		return err
	})
	return result, err
}

func (tq *TracedQuerier) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	var rows *sql.Rows
	err := tq.trace(ctx, query, len(args), func() (err error) {
		rows, err = tq.Querier.QueryContext(ctx, query, args...)
		return err
	})
	return rows, err
}

func (tq *TracedQuerier) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return tq.trace(ctx, query, len(args), func() error {
		return tq.Querier.GetContext(ctx, dest, query, args...)
	})
}

func (tq *TracedQuerier) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return tq.trace(ctx, query, len(args), func() error {
		return tq.Querier.SelectContext(ctx, dest, query, args...)
	})
}

// compactQuery folds the indented multi-line SQL used by the repositories onto one line
func compactQuery(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
