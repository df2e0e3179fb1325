package service

import (
	"context"
	"time"

	"github.com/ihsanfund/donations/internal/api/dto"
	"github.com/ihsanfund/donations/internal/domain/donation"
	"github.com/ihsanfund/donations/internal/domain/donor"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/integration/base"
	"github.com/ihsanfund/donations/internal/postgres"
	"github.com/ihsanfund/donations/internal/types"
	"github.com/samber/lo"
)

// DonationService creates donations and reads them back
type DonationService interface {
	// CreateDonation records a PENDING donation and opens a payment with its provider.
	// Nothing is persisted unless the provider accepted the payment.
	CreateDonation(ctx context.Context, req *dto.CreateDonationRequest) (*dto.CreateDonationResponse, error)
	GetDonation(ctx context.Context, id string) (*dto.DonationResponse, error)
	ListDonations(ctx context.Context, filter *types.DonationFilter) (*dto.ListDonationsResponse, error)
	// GetPaymentStatus asks the provider for the current state of a payment without touching local state
	GetPaymentStatus(ctx context.Context, method types.PaymentMethod, paymentID string) (*dto.PaymentStatusResponse, error)
}

type donationService struct {
	ServiceParams
}

func NewDonationService(params ServiceParams) DonationService {
	return &donationService{ServiceParams: params}
}

func (s *donationService) CreateDonation(ctx context.Context, req *dto.CreateDonationRequest) (*dto.CreateDonationResponse, error) {
	if req == nil {
		return nil, ierr.NewError("request is required").
			WithHint("Please provide donation details").
			Mark(ierr.ErrValidation)
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	gateway, err := s.Gateways.Get(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	// the provider call is not idempotent, a conflicting transaction must fail
	// rather than open a second remote payment
	var resp *dto.CreateDonationResponse
	err = s.DB.WithTx(postgres.WithoutRetry(ctx), func(ctx context.Context) error {
		p, err := s.ProjectRepo.Get(ctx, req.ProjectID)
		if err != nil {
			return err
		}
		if !p.IsDonationActive {
			return ierr.NewError("project is not accepting donations").
				WithHint("Donations are closed for this project").
				WithReportableDetails(map[string]any{"project_id": p.ID}).
				Mark(ierr.ErrPreconditionFailed)
		}

		var d *donor.Donor
		if req.DonorID != nil {
			d, err = s.DonorRepo.Get(ctx, *req.DonorID)
			if err != nil {
				return err
			}
		}

		draft := donation.NewDraft(p.ID, req.DonorID, req.Amount, req.Currency, req.PaymentMethod, time.Now().UTC())
		if err := s.DonationRepo.Create(ctx, draft.Build()); err != nil {
			return err
		}

		result, err := s.createPayment(ctx, gateway, &base.CreatePaymentRequest{
			Amount:        req.Amount,
			Currency:      req.Currency,
			DonationID:    draft.ID(),
			ProjectTitle:  p.Title,
			CustomerName:  lo.CoalesceOrEmpty(req.CustomerName, donorField(d, func(d *donor.Donor) string { return d.Name })),
			CustomerEmail: lo.CoalesceOrEmpty(req.CustomerEmail, donorField(d, func(d *donor.Donor) string { return d.Email })),
			CustomerPhone: lo.CoalesceOrEmpty(req.CustomerPhone, donorField(d, func(d *donor.Donor) string { return d.Phone })),
		})
		if err != nil {
			return err
		}

		draft = draft.WithPayment(result.ID, result.Raw, time.Now().UTC())
		created := draft.Build()
		if err := s.DonationRepo.AttachPayment(ctx, created.ID, created.GetPaymentID(), created.PaymentDetails); err != nil {
			return err
		}

		resp = &dto.CreateDonationResponse{
			DonationID: created.ID,
			PaymentURL: result.URL,
		}
		return nil
	})
	if err != nil {
		s.Logger.WithContext(ctx).Warnw("donation creation rolled back",
			"project_id", req.ProjectID,
			"payment_method", req.PaymentMethod,
			"error", err,
		)
		return nil, err
	}

	s.Logger.WithContext(ctx).Infow("donation created",
		"donation_id", resp.DonationID,
		"project_id", req.ProjectID,
		"payment_method", req.PaymentMethod,
		"amount", req.Amount.String(),
		"currency", req.Currency,
	)
	return resp, nil
}

func (s *donationService) createPayment(ctx context.Context, gateway base.Gateway, req *base.CreatePaymentRequest) (*base.PaymentResult, error) {
	if s.Sentry != nil {
		span, spanCtx := s.Sentry.StartGatewaySpan(ctx, string(gateway.Method()), "create_payment")
		if span != nil {
			defer span.Finish()
			ctx = spanCtx
		}
	}

	result, err := gateway.CreatePayment(ctx, req)
	if err != nil {
		return nil, err
	}
	if result == nil || result.ID == "" || result.URL == "" {
		return nil, ierr.NewError("provider returned no payment reference").
			WithHint("Payment provider did not return a payment link").
			WithReportableDetails(map[string]any{"payment_method": gateway.Method()}).
			Mark(ierr.ErrPaymentGateway)
	}
	return result, nil
}

func (s *donationService) GetDonation(ctx context.Context, id string) (*dto.DonationResponse, error) {
	if id == "" {
		return nil, ierr.NewError("donation id is required").
			WithHint("Please provide a donation id").
			Mark(ierr.ErrValidation)
	}

	d, err := s.DonationRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewDonationResponse(d), nil
}

func (s *donationService) ListDonations(ctx context.Context, filter *types.DonationFilter) (*dto.ListDonationsResponse, error) {
	if filter == nil {
		filter = &types.DonationFilter{}
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	items, err := s.DonationRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.DonationRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := types.NewListResponse(
		lo.Map(items, func(d *donation.Donation, _ int) *dto.DonationResponse { return dto.NewDonationResponse(d) }),
		total,
		filter.GetLimit(),
		filter.GetOffset(),
	)
	return &resp, nil
}

func (s *donationService) GetPaymentStatus(ctx context.Context, method types.PaymentMethod, paymentID string) (*dto.PaymentStatusResponse, error) {
	if paymentID == "" {
		return nil, ierr.NewError("payment id is required").
			WithHint("Please provide a payment id").
			Mark(ierr.ErrValidation)
	}

	gateway, err := s.Gateways.Get(method)
	if err != nil {
		return nil, err
	}

	result, err := gateway.GetPaymentStatus(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return dto.NewPaymentStatusResponse(method, result), nil
}

func donorField(d *donor.Donor, get func(*donor.Donor) string) string {
	if d == nil {
		return ""
	}
	return get(d)
}
