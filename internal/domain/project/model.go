package project

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project is the fundraising target a donation belongs to. Only the donation
// totals are owned by this service; the rest is managed by the content admin.
type Project struct {
	ID               string          `db:"id" json:"id"`
	Title            string          `db:"title" json:"title"`
	IsDonationActive bool            `db:"is_donation_active" json:"is_donation_active"`
	CurrentAmount    decimal.Decimal `db:"current_amount" json:"current_amount"`
	DonationCount    int             `db:"donation_count" json:"donation_count"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}
