package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ihsanfund/donations/internal/api/dto"
	v1 "github.com/ihsanfund/donations/internal/api/v1"
	"github.com/ihsanfund/donations/internal/auth"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/integration/myfatoorah"
	"github.com/ihsanfund/donations/internal/service"
	"github.com/ihsanfund/donations/internal/testutil"
	"github.com/ihsanfund/donations/internal/types"
	"github.com/stretchr/testify/suite"
)

const testAuthSecret = "router-test-secret"

type RouterSuite struct {
	testutil.BaseServiceTestSuite
	router *gin.Engine
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	gin.SetMode(gin.TestMode)

	cfg := s.GetConfig()
	cfg.Auth.Secret = testAuthSecret

	gw := s.GetGateways()
	params := service.ServiceParams{
		Logger:             s.GetLogger(),
		Config:             cfg,
		DB:                 s.GetDB(),
		Sentry:             s.GetSentry(),
		DonationRepo:       s.GetStores().DonationRepo,
		ProjectRepo:        s.GetStores().ProjectRepo,
		DonorRepo:          s.GetStores().DonorRepo,
		Gateways:           gw.Registry,
		MyFatoorahWebhooks: gw.MyFatoorahWebhooks,
		StripeWebhooks:     gw.StripeWebhooks,
		WebhookCache:       s.GetCache(),
		EventPublisher:     s.GetPublisher(),
	}
	donations := service.NewDonationService(params)
	reconciliation := service.NewReconciliationService(params)

	s.router = NewRouter(Handlers{
		Health:   v1.NewHealthHandler(s.GetLogger()),
		Donation: v1.NewDonationHandler(donations, s.GetLogger()),
		Webhook:  v1.NewWebhookHandler(reconciliation, s.GetLogger()),
		Callback: v1.NewPaymentCallbackHandler(donations, reconciliation, cfg, s.GetLogger()),
		Admin:    v1.NewAdminHandler(donations, reconciliation, s.GetLogger()),
	}, cfg, s.GetLogger(), auth.NewValidator(cfg))
}

func (s *RouterSuite) do(method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (s *RouterSuite) errorCode(w *httptest.ResponseRecorder) string {
	var resp ierr.ErrorResponse
	s.decode(w, &resp)
	s.False(resp.Success)
	s.NotEmpty(resp.Error.Display)
	return resp.Error.Code
}

func (s *RouterSuite) createDonation(projectID string, method types.PaymentMethod) dto.CreateDonationResponse {
	body := []byte(`{"project_id":"` + projectID + `","amount":"25.00","currency":"usd","payment_method":"` + string(method) + `"}`)
	w := s.do(http.MethodPost, "/v1/donations", body, nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp dto.CreateDonationResponse
	s.decode(w, &resp)
	return resp
}

func (s *RouterSuite) adminToken(role string) map[string]string {
	token, err := auth.GenerateToken(testAuthSecret, "admin_1", role, time.Hour)
	s.Require().NoError(err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func (s *RouterSuite) TestHealthAndRequestID() {
	w := s.do(http.MethodGet, "/health", nil, map[string]string{types.HeaderRequestID: "req-123"})
	s.Equal(http.StatusOK, w.Code)
	s.Equal("req-123", w.Header().Get(types.HeaderRequestID))

	w = s.do(http.MethodGet, "/health", nil, nil)
	s.NotEmpty(w.Header().Get(types.HeaderRequestID))
}

func (s *RouterSuite) TestCreateAndGetDonation() {
	p := s.CreateTestProject("proj_http", true)

	created := s.createDonation(p.ID, types.PaymentMethodStripe)
	s.NotEmpty(created.DonationID)
	s.NotEmpty(created.PaymentURL)

	w := s.do(http.MethodGet, "/v1/donations/"+created.DonationID, nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var got dto.DonationResponse
	s.decode(w, &got)
	s.Equal(types.DonationStatusPending, got.Status)
	s.Equal("USD", got.Currency)
	s.Equal(p.ID, got.ProjectID)
}

func (s *RouterSuite) TestCreateDonationErrors() {
	active := s.CreateTestProject("proj_http_open", true)
	closed := s.CreateTestProject("proj_http_closed", false)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"not json", `{`, http.StatusBadRequest, ierr.ErrCodeValidation},
		{"zero amount", `{"project_id":"` + active.ID + `","amount":0,"currency":"USD","payment_method":"STRIPE"}`, http.StatusBadRequest, ierr.ErrCodeValidation},
		{"unknown method", `{"project_id":"` + active.ID + `","amount":5,"currency":"USD","payment_method":"PAYPAL"}`, http.StatusBadRequest, ierr.ErrCodeInvalidPaymentMethod},
		{"missing project", `{"project_id":"proj_nope","amount":5,"currency":"USD","payment_method":"STRIPE"}`, http.StatusNotFound, ierr.ErrCodeNotFound},
		{"closed project", `{"project_id":"` + closed.ID + `","amount":5,"currency":"USD","payment_method":"STRIPE"}`, http.StatusPreconditionFailed, ierr.ErrCodePreconditionFailed},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := s.do(http.MethodPost, "/v1/donations", []byte(tt.body), nil)
			s.Equal(tt.status, w.Code, w.Body.String())
			s.Equal(tt.code, s.errorCode(w))
		})
	}
}

func (s *RouterSuite) TestGetUnknownDonation() {
	w := s.do(http.MethodGet, "/v1/donations/don_missing", nil, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(ierr.ErrCodeNotFound, s.errorCode(w))
}

func (s *RouterSuite) TestPaymentStatus() {
	s.GetGateways().MyFatoorah.SetStatus("4242", types.DonationStatusCompleted)

	w := s.do(http.MethodGet, "/v1/payments/status/myfatoorah/4242", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.PaymentStatusResponse
	s.decode(w, &resp)
	s.Equal(types.PaymentMethodMyFatoorah, resp.PaymentMethod)
	s.Equal(types.DonationStatusCompleted, resp.Status)

	w = s.do(http.MethodGet, "/v1/payments/status/paypal/4242", nil, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestMyFatoorahWebhook() {
	p := s.CreateTestProject("proj_http_mf", true)
	created := s.createDonation(p.ID, types.PaymentMethodMyFatoorah)
	d, err := s.GetStores().DonationRepo.Get(s.GetContext(), created.DonationID)
	s.Require().NoError(err)

	payload := []byte(`{"EventType":1,"Event":"TransactionsStatusChanged","Data":{"InvoiceId":"` + d.GetPaymentID() + `","InvoiceStatus":"Paid"}}`)

	w := s.do(http.MethodPost, "/v1/webhooks/myfatoorah", payload, map[string]string{
		v1.HeaderMyFatoorahSignature: "deadbeef",
	})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(ierr.ErrCodeInvalidSignature, s.errorCode(w))

	w = s.do(http.MethodPost, "/v1/webhooks/myfatoorah", payload, map[string]string{
		v1.HeaderMyFatoorahSignature: myfatoorah.ComputeSignature(payload, testutil.TestMyFatoorahSecret),
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var ack dto.WebhookAck
	s.decode(w, &ack)
	s.True(ack.Received)

	d, err = s.GetStores().DonationRepo.Get(s.GetContext(), created.DonationID)
	s.Require().NoError(err)
	s.Equal(types.DonationStatusCompleted, d.Status)
}

func (s *RouterSuite) TestWebhookEmptyBody() {
	w := s.do(http.MethodPost, "/v1/webhooks/stripe", []byte{}, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(ierr.ErrCodeMalformedEvent, s.errorCode(w))
}

func (s *RouterSuite) redirectParams(w *httptest.ResponseRecorder) url.Values {
	s.Require().Equal(http.StatusFound, w.Code, w.Body.String())
	loc, err := url.Parse(w.Header().Get("Location"))
	s.Require().NoError(err)
	return loc.Query()
}

func (s *RouterSuite) TestCallbacks() {
	p := s.CreateTestProject("proj_http_cb", true)

	s.Run("stripe cancel fails the donation", func() {
		created := s.createDonation(p.ID, types.PaymentMethodStripe)
		q := s.redirectParams(s.do(http.MethodGet, "/v1/payments/stripe/cancel/"+created.DonationID, nil, nil))
		s.Equal(created.DonationID, q.Get("donation_id"))
		s.Equal(string(types.DonationStatusFailed), q.Get("status"))
	})

	s.Run("stripe success only reports current status", func() {
		created := s.createDonation(p.ID, types.PaymentMethodStripe)
		q := s.redirectParams(s.do(http.MethodGet, "/v1/payments/stripe/success/"+created.DonationID, nil, nil))
		s.Equal(string(types.DonationStatusPending), q.Get("status"))
	})

	s.Run("myfatoorah success confirms with the provider", func() {
		created := s.createDonation(p.ID, types.PaymentMethodMyFatoorah)
		d, err := s.GetStores().DonationRepo.Get(s.GetContext(), created.DonationID)
		s.Require().NoError(err)
		s.GetGateways().MyFatoorah.SetStatus(d.GetPaymentID(), types.DonationStatusCompleted)

		q := s.redirectParams(s.do(http.MethodGet, "/v1/payments/myfatoorah/success/"+created.DonationID, nil, nil))
		s.Equal(string(types.DonationStatusCompleted), q.Get("status"))
	})

	s.Run("unknown donation still redirects", func() {
		q := s.redirectParams(s.do(http.MethodGet, "/v1/payments/myfatoorah/error/don_missing", nil, nil))
		s.Equal(string(types.DonationStatusPending), q.Get("status"))
	})
}

func (s *RouterSuite) TestAdminRequiresAdminRole() {
	w := s.do(http.MethodGet, "/v1/admin/donations", nil, nil)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(ierr.ErrCodePermissionDenied, s.errorCode(w))

	w = s.do(http.MethodGet, "/v1/admin/donations", nil, map[string]string{"Authorization": "Token abc"})
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/v1/admin/donations", nil, s.adminToken("viewer"))
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *RouterSuite) TestAdminRoutes() {
	p := s.CreateTestProject("proj_http_admin", true)
	first := s.createDonation(p.ID, types.PaymentMethodStripe)
	second := s.createDonation(p.ID, types.PaymentMethodStripe)
	headers := s.adminToken(auth.RoleAdmin)

	w := s.do(http.MethodGet, "/v1/admin/donations?project_id="+p.ID+"&status=PENDING&limit=10", nil, headers)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var list dto.ListDonationsResponse
	s.decode(w, &list)
	s.Len(list.Items, 2)
	s.Equal(2, list.Pagination.Total)

	w = s.do(http.MethodPost, "/v1/admin/donations/"+first.DonationID+"/cancel", nil, headers)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var cancelled dto.ReconcileResponse
	s.decode(w, &cancelled)
	s.True(cancelled.Changed)
	s.Equal(types.DonationStatusFailed, cancelled.Status)

	d, err := s.GetStores().DonationRepo.Get(s.GetContext(), second.DonationID)
	s.Require().NoError(err)
	s.GetGateways().Stripe.SetStatus(d.GetPaymentID(), types.DonationStatusCompleted)

	w = s.do(http.MethodPost, "/v1/admin/donations/"+second.DonationID+"/reconcile", nil, headers)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var reconciled dto.ReconcileResponse
	s.decode(w, &reconciled)
	s.Equal(types.DonationStatusCompleted, reconciled.Status)

	w = s.do(http.MethodPost, "/v1/admin/donations/reconcile", nil, headers)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var batch dto.BatchReconcileResponse
	s.decode(w, &batch)
	s.Equal(0, batch.Checked)
}
