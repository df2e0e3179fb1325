package testutil

import (
	"context"

	"github.com/ihsanfund/donations/internal/domain/donor"
	ierr "github.com/ihsanfund/donations/internal/errors"
)

// InMemoryDonorStore implements donor.Repository
type InMemoryDonorStore struct {
	*InMemoryStore[*donor.Donor]
}

var _ donor.Repository = (*InMemoryDonorStore)(nil)

func NewInMemoryDonorStore() *InMemoryDonorStore {
	return &InMemoryDonorStore{
		InMemoryStore: NewInMemoryStore(func(d *donor.Donor) *donor.Donor {
			c := *d
			return &c
		}),
	}
}

func (s *InMemoryDonorStore) Seed(ctx context.Context, d *donor.Donor) error {
	return s.InMemoryStore.Create(ctx, d.ID, d)
}

func (s *InMemoryDonorStore) Get(ctx context.Context, id string) (*donor.Donor, error) {
	d, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Donor not found").
			WithReportableDetails(map[string]any{"donor_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return d, nil
}
