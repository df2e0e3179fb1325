package postgres

import (
	"context"

	"github.com/ihsanfund/donations/internal/domain/donor"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/internal/postgres"
)

type donorRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewDonorRepository(db *postgres.DB, logger *logger.Logger) donor.Repository {
	return &donorRepository{
		db:     db,
		logger: logger,
	}
}

func (r *donorRepository) Get(ctx context.Context, id string) (*donor.Donor, error) {
	query := `SELECT id, name, email, phone, created_at FROM donors WHERE id = $1`

	var d donor.Donor
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &d, query, id); err != nil {
		err = postgres.TranslateError(err, "failed to get donor")
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHintf("Donor %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}
	return &d, nil
}
