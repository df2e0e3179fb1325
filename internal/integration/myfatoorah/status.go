package myfatoorah

import (
	"strings"

	"github.com/ihsanfund/donations/internal/types"
)

// Invoice statuses reported by GetPaymentStatus and webhook v2 payloads
const (
	InvoiceStatusPaid    = "Paid"
	InvoiceStatusPending = "Pending"
	InvoiceStatusFailed  = "Failed"
	InvoiceStatusExpired = "Expired"
)

// Transaction statuses reported by webhook v1 payloads
const (
	TransactionStatusSuccess    = "SUCCESS"
	TransactionStatusInProgress = "INPROGRESS"
	TransactionStatusFailed     = "FAILED"
	TransactionStatusCanceled   = "CANCELED"
)

var invoiceStatuses = map[string]types.DonationStatus{
	strings.ToLower(InvoiceStatusPaid):    types.DonationStatusCompleted,
	strings.ToLower(InvoiceStatusPending): types.DonationStatusPending,
	strings.ToLower(InvoiceStatusFailed):  types.DonationStatusFailed,
	strings.ToLower(InvoiceStatusExpired): types.DonationStatusFailed,
}

var transactionStatuses = map[string]types.DonationStatus{
	strings.ToLower(TransactionStatusSuccess):    types.DonationStatusCompleted,
	strings.ToLower(TransactionStatusInProgress): types.DonationStatusPending,
	strings.ToLower(TransactionStatusFailed):     types.DonationStatusFailed,
	strings.ToLower(TransactionStatusCanceled):   types.DonationStatusFailed,
}

// MapInvoiceStatus translates an invoice status. Unknown values map to FAILED.
func MapInvoiceStatus(status string) types.DonationStatus {
	if s, ok := invoiceStatuses[strings.ToLower(strings.TrimSpace(status))]; ok {
		return s
	}
	return types.DonationStatusFailed
}

// MapTransactionStatus translates a transaction status. Unknown values map to FAILED.
func MapTransactionStatus(status string) types.DonationStatus {
	if s, ok := transactionStatuses[strings.ToLower(strings.TrimSpace(status))]; ok {
		return s
	}
	return types.DonationStatusFailed
}

// MapWebhookStatus picks the table matching the payload version
func MapWebhookStatus(event *WebhookEvent) types.DonationStatus {
	if event.IsTransaction {
		return MapTransactionStatus(event.Status)
	}
	return MapInvoiceStatus(event.Status)
}
