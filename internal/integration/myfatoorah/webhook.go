package myfatoorah

import (
	"strings"

	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/tidwall/gjson"
)

// ParseWebhook extracts the invoice id and status from a webhook body.
// v2 payloads carry Data.InvoiceStatus, v1 payloads Data.TransactionStatus.
func ParseWebhook(payload []byte) (*WebhookEvent, error) {
	if !gjson.ValidBytes(payload) {
		return nil, ierr.NewError("webhook payload is not valid json").
			WithHint("Invalid webhook payload").
			Mark(ierr.ErrMalformedEvent)
	}

	data := gjson.GetBytes(payload, "Data")
	if !data.Exists() {
		return nil, ierr.NewError("webhook payload has no Data object").
			WithHint("Invalid webhook payload").
			Mark(ierr.ErrMalformedEvent)
	}

	event := &WebhookEvent{
		EventType:         gjson.GetBytes(payload, "Event").String(),
		InvoiceID:         data.Get("InvoiceId").String(),
		CustomerReference: data.Get("CustomerReference").String(),
	}

	status := data.Get("InvoiceStatus")
	if !status.Exists() {
		status = data.Get("TransactionStatus")
		event.IsTransaction = status.Exists()
	}
	event.Status = status.String()
	event.Handled = status.Exists() && isPaymentStatusEvent(event.EventType)

	if event.InvoiceID == "" {
		return nil, ierr.NewError("webhook payload has no invoice id").
			WithHint("Invalid webhook payload").
			WithReportableDetails(map[string]any{"event": event.EventType}).
			Mark(ierr.ErrMalformedEvent)
	}

	return event, nil
}

// Event names of deliveries that report a payment status. Older payloads
// carry no Event name at all.
var paymentStatusEvents = map[string]bool{
	"":                          true,
	"transactionsstatuschanged": true,
	"invoicestatuschanged":      true,
	"paymentstatuschanged":      true,
}

func isPaymentStatusEvent(name string) bool {
	return paymentStatusEvents[strings.ToLower(strings.TrimSpace(name))]
}
