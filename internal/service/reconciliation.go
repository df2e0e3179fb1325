package service

import (
	"context"
	"sync"
	"time"

	"github.com/ihsanfund/donations/internal/api/dto"
	"github.com/ihsanfund/donations/internal/cache"
	"github.com/ihsanfund/donations/internal/domain/donation"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/integration/myfatoorah"
	"github.com/ihsanfund/donations/internal/types"
	"github.com/sourcegraph/conc/pool"
)

// ReconciliationService moves donations between statuses in response to
// provider notifications, donor callbacks and admin actions. It is the only
// writer of donation status and project totals.
type ReconciliationService interface {
	HandleMyFatoorahWebhook(ctx context.Context, payload []byte, signature string) error
	HandleStripeWebhook(ctx context.Context, payload []byte, signatureHeader string) error
	// HandleCancelCallback marks a donation FAILED after the donor abandoned checkout
	HandleCancelCallback(ctx context.Context, donationID string) (*dto.ReconcileResponse, error)
	// ReconcileDonation re-queries the provider and applies its answer
	ReconcileDonation(ctx context.Context, donationID string) (*dto.ReconcileResponse, error)
	ReconcileBatch(ctx context.Context, req *dto.BatchReconcileRequest) (*dto.BatchReconcileResponse, error)
	CancelDonation(ctx context.Context, donationID string) (*dto.ReconcileResponse, error)
}

type reconciliationService struct {
	ServiceParams
}

func NewReconciliationService(params ServiceParams) ReconciliationService {
	return &reconciliationService{ServiceParams: params}
}

// statusUpdate identifies a donation either by provider payment id or by
// donation id, and the canonical status to apply to it
type statusUpdate struct {
	method     types.PaymentMethod
	paymentID  string
	donationID string
	target     types.DonationStatus
	source     string
}

type outcome struct {
	donation   *donation.Donation
	transition donation.Transition
}

func (o *outcome) response() *dto.ReconcileResponse {
	return &dto.ReconcileResponse{
		DonationID:     o.donation.ID,
		PreviousStatus: o.transition.From,
		Status:         o.donation.Status,
		Changed:        o.transition.Changed,
	}
}

const (
	sourceWebhook        = "webhook"
	sourceCancelCallback = "cancel_callback"
	sourceReconcile      = "reconcile"
	sourceAdminCancel    = "admin_cancel"
)

func (s *reconciliationService) HandleMyFatoorahWebhook(ctx context.Context, payload []byte, signature string) error {
	log := s.Logger.WithContext(ctx)

	verified, err := s.MyFatoorahWebhooks.VerifyWebhook(payload, signature)
	if err != nil {
		s.reportSecurityEvent(ctx, err, types.PaymentMethodMyFatoorah, len(payload))
		return err
	}
	if !verified {
		log.Warnw("myfatoorah webhook accepted without signature verification",
			"signature_present", signature != "",
		)
	}

	event, err := myfatoorah.ParseWebhook(payload)
	if err != nil {
		return err
	}
	if !event.Handled {
		log.Infow("myfatoorah event acknowledged without status change",
			"event", event.EventType,
			"invoice_id", event.InvoiceID,
		)
		return nil
	}

	_, err = s.apply(ctx, statusUpdate{
		method:    types.PaymentMethodMyFatoorah,
		paymentID: event.InvoiceID,
		target:    myfatoorah.MapWebhookStatus(event),
		source:    sourceWebhook,
	})
	return err
}

func (s *reconciliationService) HandleStripeWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	log := s.Logger.WithContext(ctx)

	event, err := s.StripeWebhooks.ParseWebhook(payload, signatureHeader)
	if err != nil {
		if ierr.IsInvalidSignature(err) {
			s.reportSecurityEvent(ctx, err, types.PaymentMethodStripe, len(payload))
		}
		return err
	}

	key := cache.GenerateKey(cache.PrefixStripeEvent, event.ID)
	if event.ID != "" && s.WebhookCache != nil {
		if _, seen := s.WebhookCache.Get(ctx, key); seen {
			log.Debugw("stripe event already processed", "event_id", event.ID)
			return nil
		}
	}

	if !event.Handled {
		log.Debugw("stripe event acknowledged without status change",
			"event_id", event.ID,
			"type", event.Type,
		)
		return nil
	}

	if _, err := s.apply(ctx, statusUpdate{
		method:    types.PaymentMethodStripe,
		paymentID: event.SessionID,
		target:    event.Status,
		source:    sourceWebhook,
	}); err != nil {
		return err
	}

	if event.ID != "" && s.WebhookCache != nil {
		s.WebhookCache.Set(ctx, key, true, 0)
	}
	return nil
}

func (s *reconciliationService) HandleCancelCallback(ctx context.Context, donationID string) (*dto.ReconcileResponse, error) {
	out, err := s.apply(ctx, statusUpdate{
		donationID: donationID,
		target:     types.DonationStatusFailed,
		source:     sourceCancelCallback,
	})
	if err != nil {
		return nil, err
	}
	return out.response(), nil
}

func (s *reconciliationService) CancelDonation(ctx context.Context, donationID string) (*dto.ReconcileResponse, error) {
	out, err := s.apply(ctx, statusUpdate{
		donationID: donationID,
		target:     types.DonationStatusCancelled,
		source:     sourceAdminCancel,
	})
	if err != nil {
		return nil, err
	}
	return out.response(), nil
}

func (s *reconciliationService) ReconcileDonation(ctx context.Context, donationID string) (*dto.ReconcileResponse, error) {
	if donationID == "" {
		return nil, ierr.NewError("donation id is required").
			WithHint("Please provide a donation id").
			Mark(ierr.ErrValidation)
	}

	d, err := s.DonationRepo.Get(ctx, donationID)
	if err != nil {
		return nil, err
	}

	// terminal statuses never change, skip the provider round trip
	if d.Status.IsTerminal() {
		return &dto.ReconcileResponse{
			DonationID:     d.ID,
			PreviousStatus: d.Status,
			Status:         d.Status,
		}, nil
	}

	if d.GetPaymentID() == "" {
		return nil, ierr.NewError("donation has no provider payment").
			WithHint("This donation was never sent to a payment provider").
			WithReportableDetails(map[string]any{"donation_id": d.ID}).
			Mark(ierr.ErrInvalidOperation)
	}

	gateway, err := s.Gateways.Get(d.PaymentMethod)
	if err != nil {
		return nil, err
	}

	result, err := gateway.GetPaymentStatus(ctx, d.GetPaymentID())
	if err != nil {
		return nil, err
	}

	out, err := s.apply(ctx, statusUpdate{
		donationID: d.ID,
		target:     result.Status,
		source:     sourceReconcile,
	})
	if err != nil {
		return nil, err
	}
	return out.response(), nil
}

func (s *reconciliationService) ReconcileBatch(ctx context.Context, req *dto.BatchReconcileRequest) (*dto.BatchReconcileResponse, error) {
	if req == nil {
		req = &dto.BatchReconcileRequest{}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	open, err := s.DonationRepo.List(ctx, &types.DonationFilter{
		ProjectID: req.ProjectID,
		Statuses:  []types.DonationStatus{types.DonationStatusPending, types.DonationStatusProcessing},
		Limit:     req.Limit,
	})
	if err != nil {
		return nil, err
	}

	workers := s.Config.Payments.ReconcileConcurrency
	if workers <= 0 {
		workers = 1
	}

	var mu sync.Mutex
	resp := &dto.BatchReconcileResponse{
		Results: make([]*dto.ReconcileResponse, 0, len(open)),
		Errors:  make(map[string]string),
	}

	p := pool.New().WithMaxGoroutines(workers)
	for _, d := range open {
		if d.GetPaymentID() == "" {
			continue
		}
		id := d.ID
		p.Go(func() {
			r, err := s.ReconcileDonation(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			resp.Checked++
			if err != nil {
				resp.Errors[id] = err.Error()
				return
			}
			if r.Changed {
				resp.Changed++
			}
			resp.Results = append(resp.Results, r)
		})
	}
	p.Wait()

	s.Logger.WithContext(ctx).Infow("batch reconcile finished",
		"checked", resp.Checked,
		"changed", resp.Changed,
		"failed", len(resp.Errors),
	)
	return resp, nil
}

// apply locks the donation, resolves the target status against its current
// one and persists the result together with any project total change. Events
// are published only after the transaction commits.
func (s *reconciliationService) apply(ctx context.Context, u statusUpdate) (*outcome, error) {
	log := s.Logger.WithContext(ctx)

	if err := u.target.Validate(); err != nil {
		return nil, err
	}

	var out *outcome
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		d, err := s.lock(ctx, u)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		t := d.Resolve(u.target, now)
		if !t.Changed {
			out = &outcome{donation: d, transition: t}
			return nil
		}

		if err := s.DonationRepo.UpdateStatus(ctx, d.ID, t.To, t.PaidAt); err != nil {
			return err
		}
		if t.Completed {
			if err := s.ProjectRepo.IncrementDonationTotals(ctx, d.ProjectID, d.Amount); err != nil {
				return err
			}
		}

		d.Apply(t, now)
		out = &outcome{donation: d, transition: t}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !out.transition.Changed {
		if u.target == types.DonationStatusCompleted && out.donation.Status != types.DonationStatusCompleted {
			s.reportLateCompletion(ctx, out.donation, u)
			return out, nil
		}
		log.Infow("donation status unchanged",
			"donation_id", out.donation.ID,
			"status", out.donation.Status,
			"target", u.target,
			"source", u.source,
		)
		return out, nil
	}

	log.Infow("donation status changed",
		"donation_id", out.donation.ID,
		"from", out.transition.From,
		"to", out.transition.To,
		"completed", out.transition.Completed,
		"source", u.source,
	)
	s.publish(ctx, out)
	return out, nil
}

func (s *reconciliationService) lock(ctx context.Context, u statusUpdate) (*donation.Donation, error) {
	if u.paymentID == "" {
		if u.donationID == "" {
			return nil, ierr.NewError("donation reference is required").
				WithHint("Please provide a donation id").
				Mark(ierr.ErrValidation)
		}
		return s.DonationRepo.GetForUpdate(ctx, u.donationID)
	}

	d, err := s.DonationRepo.GetByPaymentIDForUpdate(ctx, u.method, u.paymentID)
	if err != nil {
		if ierr.IsNotFound(err) {
			s.Logger.WithContext(ctx).Errorw("provider event references unknown payment",
				"data_integrity", true,
				"payment_method", u.method,
				"payment_id", u.paymentID,
				"target", u.target,
			)
			return nil, ierr.WithError(err).
				WithHint("No donation matches this payment").
				WithReportableDetails(map[string]any{
					"payment_method": u.method,
					"payment_id":     u.paymentID,
				}).
				Mark(ierr.ErrDonationNotFound)
		}
		return nil, err
	}
	return d, nil
}

func (s *reconciliationService) publish(ctx context.Context, out *outcome) {
	name, ok := types.DonationEventNameFor(out.transition.To)
	if !ok || s.EventPublisher == nil {
		return
	}

	d := out.donation
	event := &types.DonationEvent{
		EventName:      name,
		DonationID:     d.ID,
		ProjectID:      d.ProjectID,
		PaymentMethod:  d.PaymentMethod,
		PaymentID:      d.GetPaymentID(),
		Amount:         d.Amount.StringFixed(2),
		Currency:       d.Currency,
		Status:         d.Status,
		PreviousStatus: out.transition.From,
		RequestID:      types.GetRequestID(ctx),
	}
	if d.DonorID != nil {
		event.DonorID = *d.DonorID
	}

	if err := s.EventPublisher.Publish(ctx, event); err != nil {
		// the status change is committed; a lost event only delays the receipt
		s.Logger.WithContext(ctx).Errorw("failed to publish donation event",
			"donation_id", d.ID,
			"event_name", name,
			"error", err,
		)
	}
}

// reportLateCompletion flags a provider reporting payment for a donation that
// already failed or was cancelled. The money is not counted toward the project.
func (s *reconciliationService) reportLateCompletion(ctx context.Context, d *donation.Donation, u statusUpdate) {
	s.Logger.WithContext(ctx).Warnw("completion ignored on closed donation",
		"data_integrity", true,
		"donation_id", d.ID,
		"status", d.Status,
		"payment_method", d.PaymentMethod,
		"payment_id", d.GetPaymentID(),
		"source", u.source,
	)
	if s.Sentry != nil {
		s.Sentry.CaptureException(ierr.NewError("payment completed after donation closed").
			WithReportableDetails(map[string]any{
				"donation_id": d.ID,
				"status":      d.Status,
			}).
			Mark(ierr.ErrInvalidOperation))
	}
}

func (s *reconciliationService) reportSecurityEvent(ctx context.Context, err error, method types.PaymentMethod, size int) {
	s.Logger.WithContext(ctx).Warnw("webhook signature rejected",
		"security_event", true,
		"provider", method,
		"payload_bytes", size,
		"error", err,
	)
	if s.Sentry != nil {
		s.Sentry.CaptureSecurityEvent(err, string(method), map[string]interface{}{
			"payload_bytes": size,
		})
	}
}
