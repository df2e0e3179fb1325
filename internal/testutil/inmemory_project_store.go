package testutil

import (
	"context"
	"time"

	"github.com/ihsanfund/donations/internal/domain/project"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/shopspring/decimal"
)

// InMemoryProjectStore implements project.Repository
type InMemoryProjectStore struct {
	*InMemoryStore[*project.Project]

	// FailIncrement makes the next IncrementDonationTotals call return it
	FailIncrement error
}

var _ project.Repository = (*InMemoryProjectStore)(nil)

func NewInMemoryProjectStore() *InMemoryProjectStore {
	return &InMemoryProjectStore{
		InMemoryStore: NewInMemoryStore(func(p *project.Project) *project.Project {
			c := *p
			return &c
		}),
	}
}

// Seed inserts a project directly. Projects are managed outside this service.
func (s *InMemoryProjectStore) Seed(ctx context.Context, p *project.Project) error {
	return s.InMemoryStore.Create(ctx, p.ID, p)
}

func (s *InMemoryProjectStore) Get(ctx context.Context, id string) (*project.Project, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Project not found").
			WithReportableDetails(map[string]any{"project_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return p, nil
}

func (s *InMemoryProjectStore) IncrementDonationTotals(ctx context.Context, id string, amount decimal.Decimal) error {
	if err := s.FailIncrement; err != nil {
		s.FailIncrement = nil
		return err
	}
	return s.Mutate(ctx, id, func(p *project.Project) (*project.Project, error) {
		p.CurrentAmount = p.CurrentAmount.Add(amount)
		p.DonationCount++
		p.UpdatedAt = time.Now().UTC()
		return p, nil
	})
}
