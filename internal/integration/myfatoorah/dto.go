package myfatoorah

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	// SignatureHeader carries the hex HMAC of the raw webhook body
	SignatureHeader = "MyFatoorah-Signature"

	// NotificationOptionLink returns an invoice URL without MyFatoorah emailing or texting the customer
	NotificationOptionLink = "LNK"

	// KeyTypeInvoiceID tells GetPaymentStatus the key is an invoice id
	KeyTypeInvoiceID = "InvoiceId"

	sendPaymentPath      = "/v2/SendPayment"
	getPaymentStatusPath = "/v2/GetPaymentStatus"
)

// SendPaymentRequest is the body of POST /v2/SendPayment
type SendPaymentRequest struct {
	CustomerName       string      `json:"CustomerName"`
	NotificationOption string      `json:"NotificationOption"`
	InvoiceValue       json.Number `json:"InvoiceValue"`
	DisplayCurrencyIso string      `json:"DisplayCurrencyIso"`
	CustomerEmail      string      `json:"CustomerEmail,omitempty"`
	CustomerMobile     string      `json:"CustomerMobile,omitempty"`
	CallBackURL        string      `json:"CallBackUrl"`
	ErrorURL           string      `json:"ErrorUrl"`
	Language           string      `json:"Language,omitempty"`
	// CustomerReference is set to the donation id so invoices can be traced back
	CustomerReference string        `json:"CustomerReference"`
	InvoiceItems      []InvoiceItem `json:"InvoiceItems,omitempty"`
}

type InvoiceItem struct {
	ItemName  string      `json:"ItemName"`
	Quantity  int         `json:"Quantity"`
	UnitPrice json.Number `json:"UnitPrice"`
}

// Envelope wraps every MyFatoorah API response
type Envelope[T any] struct {
	IsSuccess        bool              `json:"IsSuccess"`
	Message          string            `json:"Message"`
	ValidationErrors []ValidationError `json:"ValidationErrors"`
	Data             *T                `json:"Data"`
}

type ValidationError struct {
	Name  string `json:"Name"`
	Error string `json:"Error"`
}

type SendPaymentData struct {
	InvoiceID         json.Number `json:"InvoiceId"`
	InvoiceURL        string      `json:"InvoiceURL"`
	CustomerReference string      `json:"CustomerReference"`
	UserDefinedField  string      `json:"UserDefinedField"`
}

// GetPaymentStatusRequest is the body of POST /v2/GetPaymentStatus
type GetPaymentStatusRequest struct {
	Key     string `json:"Key"`
	KeyType string `json:"KeyType"`
}

type PaymentStatusData struct {
	InvoiceID           json.Number          `json:"InvoiceId"`
	InvoiceStatus       string               `json:"InvoiceStatus"`
	InvoiceReference    string               `json:"InvoiceReference"`
	CustomerReference   string               `json:"CustomerReference"`
	InvoiceValue        decimal.Decimal      `json:"InvoiceValue"`
	InvoiceDisplayValue string               `json:"InvoiceDisplayValue"`
	CreatedDate         string               `json:"CreatedDate"`
	ExpiryDate          string               `json:"ExpiryDate"`
	InvoiceTransactions []InvoiceTransaction `json:"InvoiceTransactions"`
}

type InvoiceTransaction struct {
	TransactionID     string `json:"TransactionId"`
	TransactionStatus string `json:"TransactionStatus"`
	PaymentGateway    string `json:"PaymentGateway"`
	PaidCurrency      string `json:"PaidCurrency"`
	Error             string `json:"Error"`
}

// WebhookEvent is the part of a webhook delivery reconciliation needs
type WebhookEvent struct {
	EventType         string
	InvoiceID         string
	CustomerReference string
	// Status is InvoiceStatus when present, else the transaction status of older payload versions
	Status        string
	IsTransaction bool
	// Handled is false for refund, transfer and other notifications that
	// say nothing about whether the donor paid
	Handled bool
}
