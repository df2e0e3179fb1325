package testutil

import (
	"context"
	"time"

	"github.com/ihsanfund/donations/internal/domain/donation"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/types"
	"github.com/samber/lo"
)

// InMemoryDonationStore implements donation.Repository
type InMemoryDonationStore struct {
	*InMemoryStore[*donation.Donation]
}

var _ donation.Repository = (*InMemoryDonationStore)(nil)

func NewInMemoryDonationStore() *InMemoryDonationStore {
	return &InMemoryDonationStore{
		InMemoryStore: NewInMemoryStore(copyDonation),
	}
}

func copyDonation(d *donation.Donation) *donation.Donation {
	if d == nil {
		return nil
	}
	c := *d
	if d.DonorID != nil {
		c.DonorID = lo.ToPtr(*d.DonorID)
	}
	if d.PaymentID != nil {
		c.PaymentID = lo.ToPtr(*d.PaymentID)
	}
	if d.PaidAt != nil {
		c.PaidAt = lo.ToPtr(*d.PaidAt)
	}
	if d.PaymentDetails != nil {
		c.PaymentDetails = append(types.JSONB(nil), d.PaymentDetails...)
	}
	return &c
}

func (s *InMemoryDonationStore) Create(ctx context.Context, d *donation.Donation) error {
	if d == nil {
		return ierr.NewError("donation cannot be nil").Mark(ierr.ErrValidation)
	}
	if err := d.Validate(); err != nil {
		return err
	}
	if d.PaymentID != nil && s.paymentTaken(ctx, d.PaymentMethod, *d.PaymentID, d.ID) {
		return ierr.NewError("payment already attached to a donation").Mark(ierr.ErrAlreadyExists)
	}
	return s.InMemoryStore.Create(ctx, d.ID, d)
}

func (s *InMemoryDonationStore) Get(ctx context.Context, id string) (*donation.Donation, error) {
	d, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Donation not found").
			WithReportableDetails(map[string]any{"donation_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return d, nil
}

// GetForUpdate relies on MockPostgresClient serializing transactions
func (s *InMemoryDonationStore) GetForUpdate(ctx context.Context, id string) (*donation.Donation, error) {
	return s.Get(ctx, id)
}

func (s *InMemoryDonationStore) GetByPaymentIDForUpdate(ctx context.Context, method types.PaymentMethod, paymentID string) (*donation.Donation, error) {
	d, ok := s.Find(ctx, func(d *donation.Donation) bool {
		return d.PaymentMethod == method && d.GetPaymentID() == paymentID
	})
	if !ok {
		return nil, ierr.NewError("donation not found").
			WithHint("Donation not found").
			WithReportableDetails(map[string]any{"payment_method": method, "payment_id": paymentID}).
			Mark(ierr.ErrNotFound)
	}
	return d, nil
}

func (s *InMemoryDonationStore) AttachPayment(ctx context.Context, id string, paymentID string, details types.JSONB) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.paymentTaken(ctx, existing.PaymentMethod, paymentID, id) {
		return ierr.NewError("payment already attached to a donation").Mark(ierr.ErrAlreadyExists)
	}
	return s.Mutate(ctx, id, func(d *donation.Donation) (*donation.Donation, error) {
		d.PaymentID = lo.ToPtr(paymentID)
		d.PaymentDetails = details
		d.UpdatedAt = time.Now().UTC()
		return d, nil
	})
}

func (s *InMemoryDonationStore) UpdateStatus(ctx context.Context, id string, status types.DonationStatus, paidAt *time.Time) error {
	return s.Mutate(ctx, id, func(d *donation.Donation) (*donation.Donation, error) {
		d.Status = status
		if d.PaidAt == nil && paidAt != nil {
			d.PaidAt = lo.ToPtr(*paidAt)
		}
		d.UpdatedAt = time.Now().UTC()
		return d, nil
	})
}

func (s *InMemoryDonationStore) List(ctx context.Context, filter *types.DonationFilter) ([]*donation.Donation, error) {
	if filter == nil {
		filter = &types.DonationFilter{}
	}
	return s.InMemoryStore.List(ctx, filter, donationFilterFn, donationSortFn)
}

func (s *InMemoryDonationStore) Count(ctx context.Context, filter *types.DonationFilter) (int, error) {
	if filter == nil {
		filter = &types.DonationFilter{}
	}
	return s.InMemoryStore.Count(ctx, filter, donationFilterFn)
}

func (s *InMemoryDonationStore) paymentTaken(ctx context.Context, method types.PaymentMethod, paymentID, exceptID string) bool {
	_, ok := s.Find(ctx, func(d *donation.Donation) bool {
		return d.ID != exceptID && d.PaymentMethod == method && d.GetPaymentID() == paymentID
	})
	return ok
}

func donationFilterFn(ctx context.Context, d *donation.Donation, filter interface{}) bool {
	f, ok := filter.(*types.DonationFilter)
	if !ok {
		return true
	}
	if f.ProjectID != "" && d.ProjectID != f.ProjectID {
		return false
	}
	if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, d.Status) {
		return false
	}
	return true
}

func donationSortFn(i, j *donation.Donation) bool {
	if i.CreatedAt.Equal(j.CreatedAt) {
		return i.ID > j.ID
	}
	return i.CreatedAt.After(j.CreatedAt)
}
