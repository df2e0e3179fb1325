package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ihsanfund/donations/internal/domain/donation"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/internal/postgres"
	"github.com/ihsanfund/donations/internal/types"
	"github.com/lib/pq"
)

const donationColumns = `id, project_id, donor_id, amount, currency, payment_method, status,
	payment_id, payment_details, paid_at, created_at, updated_at`

type donationRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewDonationRepository creates a new instance of donation repository
func NewDonationRepository(db *postgres.DB, logger *logger.Logger) donation.Repository {
	return &donationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *donationRepository) Create(ctx context.Context, d *donation.Donation) error {
	query := `
		INSERT INTO donations (` + donationColumns + `)
		VALUES (:id, :project_id, :donor_id, :amount, :currency, :payment_method, :status,
			:payment_id, :payment_details, :paid_at, :created_at, :updated_at)`

	r.logger.Debugw("creating donation",
		"donation_id", d.ID,
		"project_id", d.ProjectID,
		"payment_method", d.PaymentMethod,
	)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, d); err != nil {
		return postgres.TranslateError(err, "failed to insert donation")
	}
	return nil
}

func (r *donationRepository) Get(ctx context.Context, id string) (*donation.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *donationRepository) GetForUpdate(ctx context.Context, id string) (*donation.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *donationRepository) GetByPaymentIDForUpdate(ctx context.Context, method types.PaymentMethod, paymentID string) (*donation.Donation, error) {
	query := `SELECT ` + donationColumns + `
		FROM donations
		WHERE payment_method = $1 AND payment_id = $2
		FOR UPDATE`

	r.logger.Debugw("locking donation by payment id",
		"payment_method", method,
		"payment_id", paymentID,
	)

	return r.getOne(ctx, query, method, paymentID)
}

func (r *donationRepository) getOne(ctx context.Context, query string, args ...interface{}) (*donation.Donation, error) {
	var d donation.Donation
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &d, query, args...); err != nil {
		err = postgres.TranslateError(err, "failed to get donation")
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHint("Donation not found").
				WithReportableDetails(map[string]any{"lookup": fmt.Sprint(args...)}).
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}
	return &d, nil
}

func (r *donationRepository) AttachPayment(ctx context.Context, id string, paymentID string, details types.JSONB) error {
	query := `
		UPDATE donations
		SET payment_id = $2, payment_details = $3, updated_at = $4
		WHERE id = $1`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, id, paymentID, details, time.Now().UTC())
	if err != nil {
		return postgres.TranslateError(err, "failed to attach payment to donation")
	}
	return r.expectOneRow(result, id)
}

func (r *donationRepository) UpdateStatus(ctx context.Context, id string, status types.DonationStatus, paidAt *time.Time) error {
	// paid_at is written once, later updates keep the first value
	query := `
		UPDATE donations
		SET status = $2, paid_at = COALESCE(paid_at, $3), updated_at = $4
		WHERE id = $1`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, id, status, paidAt, time.Now().UTC())
	if err != nil {
		return postgres.TranslateError(err, "failed to update donation status")
	}
	return r.expectOneRow(result, id)
}

func (r *donationRepository) expectOneRow(result interface{ RowsAffected() (int64, error) }, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return postgres.TranslateError(err, "failed to read affected rows")
	}
	if rows == 0 {
		return ierr.NewErrorf("donation %s not found", id).
			WithHint("Donation not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *donationRepository) List(ctx context.Context, filter *types.DonationFilter) ([]*donation.Donation, error) {
	where, args := donationWhere(filter)
	args = append(args, filter.GetLimit(), filter.GetOffset())
	query := fmt.Sprintf(`SELECT %s FROM donations %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		donationColumns, where, len(args)-1, len(args))

	var out []*donation.Donation
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &out, query, args...); err != nil {
		return nil, postgres.TranslateError(err, "failed to list donations")
	}
	return out, nil
}

func (r *donationRepository) Count(ctx context.Context, filter *types.DonationFilter) (int, error) {
	where, args := donationWhere(filter)
	query := `SELECT COUNT(*) FROM donations ` + where

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, query, args...); err != nil {
		return 0, postgres.TranslateError(err, "failed to count donations")
	}
	return count, nil
}

func donationWhere(filter *types.DonationFilter) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}

	var clauses []string
	var args []interface{}
	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		clauses = append(clauses, fmt.Sprintf("project_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}
