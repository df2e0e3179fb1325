package receipt

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ihsanfund/donations/internal/config"
	"github.com/ihsanfund/donations/internal/domain/donor"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/internal/pubsub"
	"github.com/ihsanfund/donations/internal/pubsub/router"
	"github.com/ihsanfund/donations/internal/types"
)

// Receipt is what a donor is sent once a donation completes
type Receipt struct {
	DonationID string
	ProjectID  string
	DonorName  string
	DonorEmail string
	Amount     string
	Currency   string
}

// Sender delivers receipts. The default sender only logs them.
type Sender interface {
	Send(ctx context.Context, r *Receipt) error
}

type logSender struct {
	logger *logger.Logger
}

func NewLogSender(logger *logger.Logger) Sender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(ctx context.Context, r *Receipt) error {
	s.logger.WithContext(ctx).Infow("donation receipt issued",
		"donation_id", r.DonationID,
		"project_id", r.ProjectID,
		"donor_email", r.DonorEmail,
		"amount", r.Amount,
		"currency", r.Currency,
	)
	return nil
}

// Handler consumes donation events and issues receipts for completed ones
type Handler struct {
	subscriber pubsub.Subscriber
	donorRepo  donor.Repository
	sender     Sender
	topic      string
	logger     *logger.Logger
}

func NewHandler(
	subscriber pubsub.PubSub,
	donorRepo donor.Repository,
	sender Sender,
	cfg *config.Configuration,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		subscriber: subscriber,
		donorRepo:  donorRepo,
		sender:     sender,
		topic:      cfg.Events.Topic,
		logger:     logger,
	}
}

// RegisterHandler attaches the receipt consumer to the event router
func (h *Handler) RegisterHandler(r *router.Router) {
	r.AddNoPublishHandler(
		"donation_receipts",
		h.topic,
		h.subscriber,
		h.HandleMessage,
	)
}

// HandleMessage processes one donation event
func (h *Handler) HandleMessage(msg *message.Message) error {
	var event types.DonationEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		// not retryable; ack and move on
		h.logger.Errorw("failed to unmarshal donation event",
			"error", err,
			"message_uuid", msg.UUID,
		)
		return nil
	}

	if event.EventName != types.DonationEventCompleted {
		h.logger.Debugw("ignoring donation event",
			"event_name", event.EventName,
			"donation_id", event.DonationID,
		)
		return nil
	}

	ctx := msg.Context()
	if event.RequestID != "" {
		ctx = types.SetRequestID(ctx, event.RequestID)
	}

	r := &Receipt{
		DonationID: event.DonationID,
		ProjectID:  event.ProjectID,
		Amount:     event.Amount,
		Currency:   event.Currency,
	}

	if event.DonorID != "" {
		d, err := h.donorRepo.Get(ctx, event.DonorID)
		if err != nil && !ierr.IsNotFound(err) {
			return err
		}
		if d != nil {
			r.DonorName = d.Name
			r.DonorEmail = d.Email
		}
	}

	return h.sender.Send(ctx, r)
}

