package testutil

import (
	"context"
	"fmt"
	"sync"

	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/integration/base"
	"github.com/ihsanfund/donations/internal/types"
)

var _ base.Gateway = (*MockGateway)(nil)

// MockGateway is a scriptable payment provider
type MockGateway struct {
	mu     sync.Mutex
	method types.PaymentMethod

	// CreateErr fails CreatePayment when set
	CreateErr error
	// Statuses is what GetPaymentStatus reports per provider id
	Statuses map[string]types.DonationStatus

	created  []*base.CreatePaymentRequest
	counter  int
	statusQs int
}

func NewMockGateway(method types.PaymentMethod) *MockGateway {
	return &MockGateway{
		method:   method,
		Statuses: make(map[string]types.DonationStatus),
	}
}

func (g *MockGateway) Method() types.PaymentMethod {
	return g.method
}

func (g *MockGateway) CreatePayment(ctx context.Context, req *base.CreatePaymentRequest) (*base.PaymentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.CreateErr != nil {
		return nil, g.CreateErr
	}

	g.counter++
	c := *req
	g.created = append(g.created, &c)
	id := fmt.Sprintf("%s_pay_%d", g.method, g.counter)
	return &base.PaymentResult{
		ID:     id,
		URL:    "https://pay.example.com/" + id,
		Status: types.DonationStatusPending,
		Raw:    types.JSONB(fmt.Sprintf(`{"id":%q}`, id)),
	}, nil
}

func (g *MockGateway) GetPaymentStatus(ctx context.Context, providerID string) (*base.PaymentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.statusQs++
	status, ok := g.Statuses[providerID]
	if !ok {
		return nil, ierr.NewErrorf("unknown payment %s", providerID).
			WithHint("Payment not found at provider").
			Mark(ierr.ErrPaymentGateway)
	}
	return &base.PaymentResult{
		ID:             providerID,
		Status:         status,
		ProviderStatus: string(status),
	}, nil
}

// SetStatus scripts the provider's answer for a payment
func (g *MockGateway) SetStatus(providerID string, status types.DonationStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Statuses[providerID] = status
}

// Created returns the payment requests received so far
func (g *MockGateway) Created() []*base.CreatePaymentRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*base.CreatePaymentRequest(nil), g.created...)
}

// StatusQueries counts GetPaymentStatus calls
func (g *MockGateway) StatusQueries() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.statusQs
}
