package myfatoorah

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ihsanfund/donations/internal/config"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/httpclient"
	"github.com/ihsanfund/donations/internal/logger"
)

// Client talks to the MyFatoorah v2 REST API
type Client struct {
	config config.MyFatoorahConfig
	// httpClient sends non-idempotent calls, statusClient retries on 5xx
	httpClient   httpclient.Client
	statusClient httpclient.Client
	logger       *logger.Logger
}

// NewClient creates a client from the application config
func NewClient(cfg *config.Configuration, logger *logger.Logger) *Client {
	return NewClientWithHTTP(
		cfg.MyFatoorah,
		httpclient.NewClient(httpclient.ClientConfig{Timeout: cfg.Payments.RequestTimeout}, logger),
		httpclient.NewClient(httpclient.ClientConfig{
			Timeout:  cfg.Payments.RequestTimeout,
			RetryMax: cfg.Payments.StatusRetries,
		}, logger),
		logger,
	)
}

// NewClientWithHTTP creates a client on explicit transports
func NewClientWithHTTP(cfg config.MyFatoorahConfig, send, status httpclient.Client, logger *logger.Logger) *Client {
	if status == nil {
		status = send
	}
	return &Client{
		config:       cfg,
		httpClient:   send,
		statusClient: status,
		logger:       logger,
	}
}

// SendPayment creates an invoice and returns its payment URL
func (c *Client) SendPayment(ctx context.Context, req *SendPaymentRequest) (*SendPaymentData, []byte, error) {
	var resp Envelope[SendPaymentData]
	raw, err := c.makeRequest(ctx, c.httpClient, sendPaymentPath, req, &resp)
	if err != nil {
		return nil, raw, err
	}
	if err := c.checkEnvelope(sendPaymentPath, resp.IsSuccess, resp.Message, resp.ValidationErrors, resp.Data == nil); err != nil {
		return nil, raw, err
	}
	return resp.Data, raw, nil
}

// GetPaymentStatus looks an invoice up by its id
func (c *Client) GetPaymentStatus(ctx context.Context, invoiceID string) (*PaymentStatusData, []byte, error) {
	req := &GetPaymentStatusRequest{Key: invoiceID, KeyType: KeyTypeInvoiceID}

	var resp Envelope[PaymentStatusData]
	raw, err := c.makeRequest(ctx, c.statusClient, getPaymentStatusPath, req, &resp)
	if err != nil {
		return nil, raw, err
	}
	if err := c.checkEnvelope(getPaymentStatusPath, resp.IsSuccess, resp.Message, resp.ValidationErrors, resp.Data == nil); err != nil {
		return nil, raw, err
	}
	return resp.Data, raw, nil
}

// WebhookSecret returns the configured secret, empty when verification is off
func (c *Client) WebhookSecret() string {
	return c.config.WebhookSecret
}

func (c *Client) makeRequest(ctx context.Context, hc httpclient.Client, endpoint string, body interface{}, response interface{}) ([]byte, error) {
	fullURL := fmt.Sprintf("%s%s", strings.TrimRight(c.config.BaseURL, "/"), endpoint)

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid request data").
			Mark(ierr.ErrInternal)
	}

	httpReq := &httpclient.Request{
		Method: http.MethodPost,
		URL:    fullURL,
		Headers: map[string]string{
			"Authorization": "Bearer " + c.config.APIKey,
			"Content-Type":  "application/json",
			"Accept":        "application/json",
		},
		Body: jsonBody,
	}

	resp, err := hc.Send(ctx, httpReq)
	if err != nil {
		details := map[string]interface{}{
			"endpoint": endpoint,
		}
		var raw []byte
		if httpErr, ok := httpclient.IsHTTPError(err); ok {
			details["status_code"] = httpErr.StatusCode
			details["response_body"] = string(httpErr.Response)
			raw = httpErr.Response
		}
		c.logger.Errorw("myfatoorah API request failed",
			"error", err,
			"endpoint", endpoint,
		)
		return raw, ierr.WithError(err).
			WithHint("Unable to reach MyFatoorah").
			WithReportableDetails(details).
			Mark(ierr.ErrPaymentGateway)
	}

	if err := json.Unmarshal(resp.Body, response); err != nil {
		c.logger.Errorw("failed to unmarshal myfatoorah response",
			"error", err,
			"endpoint", endpoint,
			"body", string(resp.Body),
		)
		return resp.Body, ierr.WithError(err).
			WithHint("Invalid response from MyFatoorah").
			Mark(ierr.ErrPaymentGateway)
	}

	return resp.Body, nil
}

func (c *Client) checkEnvelope(endpoint string, success bool, message string, validation []ValidationError, noData bool) error {
	if success && !noData {
		return nil
	}

	c.logger.Errorw("myfatoorah API returned failure",
		"endpoint", endpoint,
		"message", message,
		"validation_errors", validation,
	)

	details := map[string]interface{}{
		"endpoint": endpoint,
		"message":  message,
	}
	if len(validation) > 0 {
		details["validation_errors"] = validation
	}

	return ierr.NewErrorf("myfatoorah %s failed: %s", endpoint, message).
		WithHint("MyFatoorah rejected the payment request").
		WithReportableDetails(details).
		Mark(ierr.ErrPaymentGateway)
}
