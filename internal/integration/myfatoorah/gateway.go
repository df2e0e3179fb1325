package myfatoorah

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ihsanfund/donations/internal/config"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/integration/base"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/internal/types"
)

const anonymousCustomerName = "Anonymous Donor"

// Gateway is the invoice/redirect provider. The donor pays on the MyFatoorah
// hosted page and is sent back to the success or error callback.
type Gateway struct {
	client   *Client
	payments config.PaymentsConfig
	logger   *logger.Logger
}

var _ base.Gateway = (*Gateway)(nil)

func NewGateway(client *Client, cfg *config.Configuration, logger *logger.Logger) *Gateway {
	return &Gateway{
		client:   client,
		payments: cfg.Payments,
		logger:   logger,
	}
}

func (g *Gateway) Method() types.PaymentMethod {
	return types.PaymentMethodMyFatoorah
}

// CallbackURL is where MyFatoorah sends the donor after a successful payment
func (g *Gateway) CallbackURL(donationID string) string {
	return fmt.Sprintf("%s/v1/payments/myfatoorah/success/%s", strings.TrimRight(g.payments.PublicBaseURL, "/"), donationID)
}

// ErrorURL is where MyFatoorah sends the donor after a failed or abandoned payment
func (g *Gateway) ErrorURL(donationID string) string {
	return fmt.Sprintf("%s/v1/payments/myfatoorah/error/%s", strings.TrimRight(g.payments.PublicBaseURL, "/"), donationID)
}

func (g *Gateway) CreatePayment(ctx context.Context, req *base.CreatePaymentRequest) (*base.PaymentResult, error) {
	customerName := req.CustomerName
	if customerName == "" {
		customerName = anonymousCustomerName
	}

	invoiceValue := req.Amount.StringFixed(2)
	sendReq := &SendPaymentRequest{
		CustomerName:       customerName,
		NotificationOption: NotificationOptionLink,
		InvoiceValue:       toNumber(invoiceValue),
		DisplayCurrencyIso: req.Currency,
		CustomerEmail:      req.CustomerEmail,
		CustomerMobile:     req.CustomerPhone,
		CallBackURL:        g.CallbackURL(req.DonationID),
		ErrorURL:           g.ErrorURL(req.DonationID),
		CustomerReference:  req.DonationID,
		InvoiceItems: []InvoiceItem{{
			ItemName:  req.ProjectTitle,
			Quantity:  1,
			UnitPrice: toNumber(invoiceValue),
		}},
	}

	g.logger.Infow("creating myfatoorah invoice",
		"donation_id", req.DonationID,
		"amount", invoiceValue,
		"currency", req.Currency,
	)

	data, raw, err := g.client.SendPayment(ctx, sendReq)
	if err != nil {
		return nil, err
	}

	invoiceID := data.InvoiceID.String()
	if invoiceID == "" || data.InvoiceURL == "" {
		return nil, ierr.NewError("myfatoorah response has no invoice id or url").
			WithHint("MyFatoorah returned an incomplete payment").
			WithReportableDetails(map[string]any{"donation_id": req.DonationID}).
			Mark(ierr.ErrPaymentGateway)
	}

	amount := req.Amount
	return &base.PaymentResult{
		ID:             invoiceID,
		URL:            data.InvoiceURL,
		Status:         types.DonationStatusPending,
		ProviderStatus: InvoiceStatusPending,
		Amount:         &amount,
		Currency:       req.Currency,
		Metadata: map[string]string{
			"customer_reference": req.DonationID,
		},
		Raw: types.JSONB(raw),
	}, nil
}

func (g *Gateway) GetPaymentStatus(ctx context.Context, providerID string) (*base.PaymentResult, error) {
	data, raw, err := g.client.GetPaymentStatus(ctx, providerID)
	if err != nil {
		return nil, err
	}

	amount := data.InvoiceValue
	result := &base.PaymentResult{
		ID:             data.InvoiceID.String(),
		Status:         MapInvoiceStatus(data.InvoiceStatus),
		ProviderStatus: data.InvoiceStatus,
		Amount:         &amount,
		Metadata: map[string]string{
			"customer_reference": data.CustomerReference,
			"invoice_reference":  data.InvoiceReference,
		},
		Raw: types.JSONB(raw),
	}
	if result.ID == "" {
		result.ID = providerID
	}
	return result, nil
}

// VerifyWebhook checks the signature header when both a secret is configured
// and the header is present. Otherwise it returns verified=false and no error.
func (g *Gateway) VerifyWebhook(payload []byte, signature string) (verified bool, err error) {
	secret := g.client.WebhookSecret()
	if secret == "" || signature == "" {
		return false, nil
	}
	if !VerifySignature(payload, signature, secret) {
		return false, ierr.NewError("myfatoorah webhook signature mismatch").
			WithHint("Invalid webhook signature").
			Mark(ierr.ErrInvalidSignature)
	}
	return true, nil
}

func toNumber(s string) json.Number {
	return json.Number(s)
}
