package postgres

import (
	"context"
	"time"

	"github.com/ihsanfund/donations/internal/domain/project"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/internal/postgres"
	"github.com/shopspring/decimal"
)

type projectRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewProjectRepository creates a new instance of project repository
func NewProjectRepository(db *postgres.DB, logger *logger.Logger) project.Repository {
	return &projectRepository{
		db:     db,
		logger: logger,
	}
}

func (r *projectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	query := `
		SELECT id, title, is_donation_active, current_amount, donation_count, created_at, updated_at
		FROM projects
		WHERE id = $1`

	var p project.Project
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, id); err != nil {
		err = postgres.TranslateError(err, "failed to get project")
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHintf("Project %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// IncrementDonationTotals updates the aggregate in a single statement so the
// addition happens under the row lock postgres takes for the UPDATE
func (r *projectRepository) IncrementDonationTotals(ctx context.Context, id string, amount decimal.Decimal) error {
	query := `
		UPDATE projects
		SET current_amount = current_amount + $2,
			donation_count = donation_count + 1,
			updated_at = $3
		WHERE id = $1`

	r.logger.Debugw("incrementing project donation totals",
		"project_id", id,
		"amount", amount.String(),
	)

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, id, amount, time.Now().UTC())
	if err != nil {
		return postgres.TranslateError(err, "failed to increment project totals")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return postgres.TranslateError(err, "failed to read affected rows")
	}
	if rows == 0 {
		return ierr.NewErrorf("project %s not found", id).
			WithHintf("Project %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
