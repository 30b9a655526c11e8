package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/http/middleware"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/gig-marketplace/internal/service"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/bid"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/gig"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/payment"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/usecasetest"
	"github.com/ignatzorin/gig-marketplace/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bindingsOnce sync.Once

// stubPayouts принимает только подпись "valid".
type stubPayouts struct {
	repository.PayoutProvider
	event *repository.PayoutEvent
}

func (s *stubPayouts) ParseEvent(_ []byte, signature string) (*repository.PayoutEvent, error) {
	if signature != "valid" {
		return nil, apperror.InvalidRequest("Invalid webhook signature")
	}
	return s.event, nil
}

type testServer struct {
	f      *usecasetest.Fixture
	engine *gin.Engine
	tokens *service.TokenManager
}

func newTestServer(t *testing.T, payouts repository.PayoutProvider) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	bindingsOnce.Do(func() {
		require.NoError(t, validation.RegisterBindings())
	})

	f := usecasetest.New()
	s := f.Store
	tokens := service.NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, time.Hour)

	getUC := gig.NewGetGigUseCase(s.Gigs(), s.Bids(), s.Users())
	gigs := NewGigHandler(
		gig.NewCreateGigUseCase(s.Gigs(), s.Users(), s, f.Quota(), f.Clock),
		getUC,
		gig.NewListGigsUseCase(s.Gigs()),
		gig.NewListMyGigsUseCase(s.Gigs()),
		gig.NewGetHistoryUseCase(getUC),
		gig.NewChangeStatusUseCase(s.Gigs(), s.Bids(), s.Users(), s, f.Notifier, f.Clock),
		gig.NewReverseChangeStatusUseCase(s.Gigs(), s.Bids(), s.Users(), s, f.Quota(), f.Notifier, f.Clock),
		nil,
	)
	bids := NewBidHandler(
		bid.NewPlaceBidUseCase(s.Gigs(), s.Bids(), s.Users(), s, f.Quota(), f.Notifier, f.Clock),
		bid.NewListBidsUseCase(s.Gigs(), s.Bids(), s.Users()),
		bid.NewUpdateBidStatusUseCase(bid.DecisionVocabulary, s.Gigs(), s.Bids(), s.Users(), s, f.Notifier, f.Clock),
		bid.NewUpdateBidStatusUseCase(bid.ReviewVocabulary, s.Gigs(), s.Bids(), s.Users(), s, f.Notifier, f.Clock),
	)
	payments := NewPaymentHandler(nil, nil, nil, nil,
		payment.NewHandleWebhookUseCase(s.PaymentLogs(), s.Transfers(), s.Users(), payouts, f.Clock))

	r := gin.New()
	r.POST("/webhooks/stripe", payments.Webhook)
	api := r.Group("/")
	api.Use(middleware.AuthMiddleware(tokens))
	api.GET("/gigs/:id", gigs.Get)
	api.PUT("/gigs/:id/status", gigs.ChangeStatus)
	api.POST("/gigs/:id/bids", bids.Place)
	api.PUT("/bids/:id/decision", bids.Decision)

	return &testServer{f: f, engine: r, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path string, user *entity.User, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		pair, err := s.tokens.GeneratePair(user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	return w, decoded
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", body)
	return d
}

func errorMessage(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	msg, _ := e["message"].(string)
	return msg
}

func TestBidHandler_Place_Unauthorized(t *testing.T) {
	s := newTestServer(t, nil)

	w, body := s.do(t, http.MethodPost, "/gigs/00000000-0000-0000-0000-000000000001/bids", nil, map[string]any{"bidAmount": 10})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestBidHandler_Place_InvalidGigID(t *testing.T) {
	s := newTestServer(t, nil)
	x := s.f.User(t, "x", valueobject.RoleProvider, valueobject.PlanPro)

	w, body := s.do(t, http.MethodPost, "/gigs/not-a-uuid/bids", x, map[string]any{"bidAmount": 10})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Parameter id must be a valid UUID", errorMessage(body))
}

func TestGigFlow_PlaceBidsAndAssign(t *testing.T) {
	s := newTestServer(t, nil)
	owner := s.f.User(t, "owner", valueobject.RoleUser, valueobject.PlanPro)
	x := s.f.User(t, "x", valueobject.RoleProvider, valueobject.PlanPro)
	y := s.f.User(t, "y", valueobject.RoleProvider, valueobject.PlanPro)
	g := s.f.Gig(t, owner, valueobject.GigStatusOpen)

	w, body := s.do(t, http.MethodPost, "/gigs/"+g.ID.String()+"/bids", x, map[string]any{
		"bidAmount":   50,
		"description": "Ready to start",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bidX := data(t, body)
	assert.Equal(t, "Requested", bidX["status"])

	w, _ = s.do(t, http.MethodPost, "/gigs/"+g.ID.String()+"/bids", y, map[string]any{
		"bidAmount":   "40.00",
		"description": "Cheaper",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, body = s.do(t, http.MethodPut, "/gigs/"+g.ID.String()+"/status", owner, map[string]any{
		"status": "Assigned",
		"bidId":  bidX["id"],
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	gigData := data(t, body)["gig"].(map[string]any)
	assert.Equal(t, "Assigned", gigData["status"])
	assert.Equal(t, bidX["id"], gigData["assignedToBid"])

	w, body = s.do(t, http.MethodGet, "/gigs/"+g.ID.String(), x, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Assigned", data(t, body)["status"])
}

func TestGigHandler_ChangeStatus_Validation(t *testing.T) {
	s := newTestServer(t, nil)
	owner := s.f.User(t, "owner", valueobject.RoleUser, valueobject.PlanPro)
	g := s.f.Gig(t, owner, valueobject.GigStatusRequested)

	w, body := s.do(t, http.MethodPut, "/gigs/"+g.ID.String()+"/status", owner, map[string]any{"status": "Done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(body), "status must be a valid gig status")

	w, body = s.do(t, http.MethodPut, "/gigs/"+g.ID.String()+"/status", owner, map[string]any{"status": "Assigned"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bidId is required", errorMessage(body))
}

func TestBidHandler_Decision_ForbiddenForBidder(t *testing.T) {
	s := newTestServer(t, nil)
	owner := s.f.User(t, "owner", valueobject.RoleUser, valueobject.PlanPro)
	x := s.f.User(t, "x", valueobject.RoleProvider, valueobject.PlanPro)
	g := s.f.Gig(t, owner, valueobject.GigStatusRequested)
	b := s.f.Bid(t, g, x, valueobject.BidStatusRequested)

	w, body := s.do(t, http.MethodPut, "/bids/"+b.ID.String()+"/decision", x, map[string]any{"status": "Accepted"})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", body["error"].(map[string]any)["code"])
}

func TestPaymentHandler_Webhook(t *testing.T) {
	payouts := &stubPayouts{event: &repository.PayoutEvent{ID: "evt_1", Type: "charge.refunded"}}
	s := newTestServer(t, payouts)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewBufferString(`{}`))
	req.Header.Set("Stripe-Signature", "forged")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewBufferString(`{}`))
	req.Header.Set("Stripe-Signature", "valid")
	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
}

