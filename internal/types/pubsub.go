package types

// DonationEventName identifies messages published on the donation events topic
type DonationEventName string

const (
	DonationEventCompleted DonationEventName = "donation.completed"
	DonationEventFailed    DonationEventName = "donation.failed"
	DonationEventCancelled DonationEventName = "donation.cancelled"
)

// DonationEvent is published after a donation status change commits
type DonationEvent struct {
	ID             string            `json:"id"`
	EventName      DonationEventName `json:"event_name"`
	DonationID     string            `json:"donation_id"`
	ProjectID      string            `json:"project_id"`
	DonorID        string            `json:"donor_id,omitempty"`
	PaymentMethod  PaymentMethod     `json:"payment_method"`
	PaymentID      string            `json:"payment_id,omitempty"`
	Amount         string            `json:"amount"`
	Currency       string            `json:"currency"`
	Status         DonationStatus    `json:"status"`
	PreviousStatus DonationStatus    `json:"previous_status"`
	RequestID      string            `json:"request_id,omitempty"`
}

// DonationEventNameFor returns the event published for a transition into status
func DonationEventNameFor(status DonationStatus) (DonationEventName, bool) {
	switch status {
	case DonationStatusCompleted:
		return DonationEventCompleted, true
	case DonationStatusFailed:
		return DonationEventFailed, true
	case DonationStatusCancelled:
		return DonationEventCancelled, true
	}
	return "", false
}
