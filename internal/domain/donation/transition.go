package donation

import (
	"time"

	"github.com/ihsanfund/donations/internal/types"
)

// Transition describes the effect of applying a canonical status to a donation
type Transition struct {
	From types.DonationStatus
	To   types.DonationStatus
	// Changed is false when the target was ignored
	Changed bool
	// Completed is true only for the transition into COMPLETED. It is the
	// single condition under which project totals are incremented.
	Completed bool
	PaidAt    *time.Time
}

// stage orders the non-terminal statuses. Terminal statuses share the top stage.
func stage(s types.DonationStatus) int {
	switch s {
	case types.DonationStatusPending:
		return 0
	case types.DonationStatusProcessing:
		return 1
	default:
		return 2
	}
}

// Resolve decides how target applies to the donation's current status.
// Terminal statuses are sticky and status never moves backwards, so
// duplicate or out of order provider events resolve to no change.
func (d *Donation) Resolve(target types.DonationStatus, now time.Time) Transition {
	t := Transition{From: d.Status, To: d.Status}

	if d.Status.IsTerminal() || target == d.Status {
		return t
	}
	if stage(target) < stage(d.Status) {
		return t
	}

	t.To = target
	t.Changed = true
	if target == types.DonationStatusCompleted {
		paidAt := now
		t.Completed = true
		t.PaidAt = &paidAt
	}
	return t
}

// Apply copies the transition onto the donation
func (d *Donation) Apply(t Transition, now time.Time) {
	if !t.Changed {
		return
	}
	d.Status = t.To
	if t.PaidAt != nil && d.PaidAt == nil {
		d.PaidAt = t.PaidAt
	}
	d.UpdatedAt = now
}
