package project

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository defines the interface for project persistence
type Repository interface {
	Get(ctx context.Context, id string) (*Project, error)
	// IncrementDonationTotals adds amount to current_amount and one to donation_count
	IncrementDonationTotals(ctx context.Context, id string, amount decimal.Decimal) error
}
