package base

import (
	"sort"
	"sync"

	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/types"
	"github.com/samber/lo"
)

// Registry resolves the gateway for a payment method
type Registry struct {
	gateways map[types.PaymentMethod]Gateway
	mu       sync.RWMutex
}

// NewRegistry registers the given gateways. A later gateway for the same method replaces an earlier one.
func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[types.PaymentMethod]Gateway, len(gateways))}
	for _, g := range gateways {
		if g != nil {
			r.gateways[g.Method()] = g
		}
	}
	return r
}

// Register adds or replaces the gateway for its method
func (r *Registry) Register(g Gateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[g.Method()] = g
}

// Get returns the gateway for method or an error marked ErrInvalidPaymentMethod
func (r *Registry) Get(method types.PaymentMethod) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.gateways[method]
	if !ok {
		return nil, ierr.NewErrorf("no payment gateway registered for %q", method).
			WithHintf("Payment method %s is not supported", method).
			WithReportableDetails(map[string]any{
				"payment_method":    method,
				"supported_methods": r.methodsLocked(),
			}).
			Mark(ierr.ErrInvalidPaymentMethod)
	}
	return g, nil
}

// Methods lists the registered payment methods in a stable order
func (r *Registry) Methods() []types.PaymentMethod {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.methodsLocked()
}

func (r *Registry) methodsLocked() []types.PaymentMethod {
	methods := lo.Keys(r.gateways)
	sort.Slice(methods, func(i, j int) bool { return methods[i] < methods[j] })
	return methods
}
