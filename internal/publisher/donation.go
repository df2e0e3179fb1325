package publisher

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ihsanfund/donations/internal/config"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/internal/pubsub"
	"github.com/ihsanfund/donations/internal/types"
)

// DonationEventPublisher publishes committed donation status changes
type DonationEventPublisher interface {
	Publish(ctx context.Context, event *types.DonationEvent) error
}

type donationEventPublisher struct {
	pubSub pubsub.PubSub
	topic  string
	logger *logger.Logger
}

func NewDonationEventPublisher(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	logger *logger.Logger,
) DonationEventPublisher {
	return &donationEventPublisher{
		pubSub: pubSub,
		topic:  cfg.Events.Topic,
		logger: logger,
	}
}

func (p *donationEventPublisher) Publish(ctx context.Context, event *types.DonationEvent) error {
	if event.ID == "" {
		event.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_name", string(event.EventName))
	msg.Metadata.Set("donation_id", event.DonationID)
	if event.RequestID != "" {
		msg.Metadata.Set("request_id", event.RequestID)
	}

	p.logger.Debugw("publishing donation event",
		"event_id", event.ID,
		"event_name", event.EventName,
		"donation_id", event.DonationID,
		"topic", p.topic,
	)

	if err := p.pubSub.Publish(ctx, p.topic, msg); err != nil {
		p.logger.Errorw("failed to publish donation event",
			"error", err,
			"event_id", event.ID,
			"event_name", event.EventName,
			"donation_id", event.DonationID,
		)
		return err
	}

	return nil
}
