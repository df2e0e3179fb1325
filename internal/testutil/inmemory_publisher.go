package testutil

import (
	"context"
	"sync"

	"github.com/ihsanfund/donations/internal/publisher"
	"github.com/ihsanfund/donations/internal/types"
)

var _ publisher.DonationEventPublisher = (*InMemoryPublisher)(nil)

// InMemoryPublisher records published donation events
type InMemoryPublisher struct {
	mu     sync.RWMutex
	events []*types.DonationEvent
}

func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

func (p *InMemoryPublisher) Publish(ctx context.Context, event *types.DonationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := *event
	p.events = append(p.events, &c)
	return nil
}

// Events returns the events published so far
func (p *InMemoryPublisher) Events() []*types.DonationEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*types.DonationEvent(nil), p.events...)
}

// EventsFor returns the events published for one donation
func (p *InMemoryPublisher) EventsFor(donationID string) []*types.DonationEvent {
	var out []*types.DonationEvent
	for _, e := range p.Events() {
		if e.DonationID == donationID {
			out = append(out, e)
		}
	}
	return out
}

func (p *InMemoryPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
