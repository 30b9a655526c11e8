package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/usecasetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPayouts struct {
	mock.Mock
}

func (m *mockPayouts) CreateTransfer(ctx context.Context, req repository.TransferRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockPayouts) CreateConnectedAccount(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *mockPayouts) CreateAccountOnboardingLink(ctx context.Context, accountID string) (string, error) {
	args := m.Called(ctx, accountID)
	return args.String(0), args.Error(1)
}

func (m *mockPayouts) CreatePaymentIntent(ctx context.Context, req repository.PaymentIntentRequest) (*repository.PaymentIntent, error) {
	args := m.Called(ctx, req)
	intent, _ := args.Get(0).(*repository.PaymentIntent)
	return intent, args.Error(1)
}

func (m *mockPayouts) ParseEvent(payload []byte, signature string) (*repository.PayoutEvent, error) {
	args := m.Called(payload, signature)
	event, _ := args.Get(0).(*repository.PayoutEvent)
	return event, args.Error(1)
}

type paymentSetup struct {
	f        *usecasetest.Fixture
	admin    *entity.User
	client   *entity.User
	provider *entity.User
	gig      *entity.Gig
	payouts  *mockPayouts
}

func newPaymentSetup(t *testing.T) *paymentSetup {
	f := usecasetest.New()
	admin := f.User(t, "admin", valueobject.RoleAdmin, valueobject.PlanPro)
	client := f.User(t, "client", valueobject.RoleUser, valueobject.PlanPro)
	provider := f.User(t, "provider", valueobject.RoleProvider, valueobject.PlanPro)

	provider.AttachPayoutAccount("acct_123", valueobject.PayoutAccountActive, f.Now)
	require.NoError(t, f.Store.Users().Update(context.Background(), provider))

	gig := f.Gig(t, client, valueobject.GigStatusRequested)
	bid := f.Bid(t, gig, provider, valueobject.BidStatusAssigned)
	gig = f.Assign(t, gig, bid, valueobject.GigStatusCompleted)

	return &paymentSetup{f: f, admin: admin, client: client, provider: provider, gig: gig, payouts: &mockPayouts{}}
}

func (s *paymentSetup) log(t *testing.T, amount int64, status valueobject.PaymentStatus) {
	t.Helper()
	s.f.Advance(time.Minute)
	require.NoError(t, s.f.Store.PaymentLogs().Create(context.Background(), &entity.PaymentLog{
		ID:              uuid.New(),
		GigID:           s.gig.ID,
		CreatedBy:       s.client.ID,
		ProviderID:      s.provider.ID,
		Amount:          decimal.NewFromInt(amount),
		Status:          status,
		PaymentIntentID: "pi_" + uuid.NewString(),
		CreatedAt:       s.f.Now,
	}))
}

func (s *paymentSetup) approve() *ApprovePaymentUseCase {
	st := s.f.Store
	return NewApprovePaymentUseCase(st.Gigs(), st.PaymentLogs(), st.Transfers(), st.Users(), s.payouts, s.f.Notifier, "usd", s.f.Clock)
}

func TestApprovePayment_SumsSuccessfulOnly(t *testing.T) {
	s := newPaymentSetup(t)
	s.log(t, 100, valueobject.PaymentStatusSuccess)
	s.log(t, 30, valueobject.PaymentStatusFail)
	s.log(t, 50, valueobject.PaymentStatusSuccess)

	s.payouts.On("CreateTransfer", mock.Anything, mock.MatchedBy(func(req repository.TransferRequest) bool {
		return req.AmountMinor == 15000 &&
			req.Currency == "usd" &&
			req.DestinationAccount == "acct_123" &&
			req.Metadata["gig_id"] == s.gig.ID.String() &&
			req.Metadata["payer_name"] == "client"
	})).Return("tr_1", nil).Once()

	res, err := s.approve().Execute(context.Background(), ApprovePaymentInput{
		GigID:      s.gig.ID,
		ProviderID: s.provider.ID,
		ActorID:    s.admin.ID,
	})
	require.NoError(t, err)
	s.payouts.AssertExpectations(t)

	assert.Equal(t, "tr_1", res.ExternalTransferID)
	assert.Equal(t, "acct_123", res.AccountID)
	assert.True(t, decimal.NewFromInt(150).Equal(res.Transfer.Amount))
	assert.Equal(t, valueobject.TransferStatusPending, res.Transfer.Status)

	transfers, err := s.f.Store.Transfers().ListByGig(context.Background(), s.gig.ID)
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.True(t, decimal.NewFromInt(150).Equal(transfers[0].Amount))
	assert.Equal(t, s.admin.ID, transfers[0].CreatedBy)

	events := s.f.Notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, s.provider.ID, events[0].UserID)
}

func TestApprovePayment_Rejections(t *testing.T) {
	s := newPaymentSetup(t)
	ctx := context.Background()
	uc := s.approve()

	_, err := uc.Execute(ctx, ApprovePaymentInput{GigID: s.gig.ID, ProviderID: s.provider.ID, ActorID: s.client.ID})
	assert.True(t, apperror.IsForbidden(err))

	_, err = uc.Execute(ctx, ApprovePaymentInput{GigID: s.gig.ID, ProviderID: s.provider.ID, ActorID: s.admin.ID})
	assert.Equal(t, "No successful payments found for this gig", apperror.MessageOf(err))

	s.log(t, 30, valueobject.PaymentStatusFail)
	_, err = uc.Execute(ctx, ApprovePaymentInput{GigID: s.gig.ID, ProviderID: s.provider.ID, ActorID: s.admin.ID})
	assert.True(t, apperror.IsNotFound(err))

	s.log(t, 20, valueobject.PaymentStatusSuccess)
	_, err = uc.Execute(ctx, ApprovePaymentInput{GigID: s.gig.ID, ProviderID: s.client.ID, ActorID: s.admin.ID})
	assert.Equal(t, "Provider has no connected payout account", apperror.MessageOf(err))

	_, err = uc.Execute(ctx, ApprovePaymentInput{GigID: s.gig.ID, ProviderID: uuid.New(), ActorID: s.admin.ID})
	assert.Equal(t, "Provider not found", apperror.MessageOf(err))

	s.payouts.AssertNotCalled(t, "CreateTransfer", mock.Anything, mock.Anything)
}

func TestApprovePayment_ProviderMustBePayee(t *testing.T) {
	s := newPaymentSetup(t)
	s.log(t, 100, valueobject.PaymentStatusSuccess)

	stranger := s.f.User(t, "stranger", valueobject.RoleProvider, valueobject.PlanPro)
	stranger.AttachPayoutAccount("acct_999", valueobject.PayoutAccountActive, s.f.Now)
	require.NoError(t, s.f.Store.Users().Update(context.Background(), stranger))

	_, err := s.approve().Execute(context.Background(), ApprovePaymentInput{
		GigID:      s.gig.ID,
		ProviderID: stranger.ID,
		ActorID:    s.admin.ID,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidRequest(err))
	assert.Equal(t, "Provider is not the payee of this gig's payments", apperror.MessageOf(err))

	s.payouts.AssertNotCalled(t, "CreateTransfer", mock.Anything, mock.Anything)
	transfers, err := s.f.Store.Transfers().ListByGig(context.Background(), s.gig.ID)
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestApprovePayment_ProviderFailureRecordsNothing(t *testing.T) {
	s := newPaymentSetup(t)
	s.log(t, 100, valueobject.PaymentStatusSuccess)
	s.payouts.On("CreateTransfer", mock.Anything, mock.Anything).
		Return("", errors.New("stripe unavailable")).Once()

	_, err := s.approve().Execute(context.Background(), ApprovePaymentInput{
		GigID:      s.gig.ID,
		ProviderID: s.provider.ID,
		ActorID:    s.admin.ID,
	})
	require.Error(t, err)

	transfers, err := s.f.Store.Transfers().ListByGig(context.Background(), s.gig.ID)
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestCreatePaymentIntent(t *testing.T) {
	s := newPaymentSetup(t)
	st := s.f.Store
	uc := NewCreatePaymentIntentUseCase(st.Gigs(), st.Bids(), st.Users(), s.payouts, "usd")

	s.payouts.On("CreatePaymentIntent", mock.Anything, mock.MatchedBy(func(req repository.PaymentIntentRequest) bool {
		return req.AmountMinor == 4250 &&
			req.Metadata[MetaGigID] == s.gig.ID.String() &&
			req.Metadata[MetaPayerID] == s.client.ID.String() &&
			req.Metadata[MetaProviderID] == s.provider.ID.String()
	})).Return(&repository.PaymentIntent{ID: "pi_1", ClientSecret: "secret"}, nil).Once()

	intent, err := uc.Execute(context.Background(), CreatePaymentIntentInput{GigID: s.gig.ID, PayerID: s.client.ID, Amount: "42.50"})
	require.NoError(t, err)
	assert.Equal(t, "pi_1", intent.ID)
	s.payouts.AssertExpectations(t)

	_, err = uc.Execute(context.Background(), CreatePaymentIntentInput{GigID: s.gig.ID, PayerID: s.provider.ID, Amount: "10"})
	assert.True(t, apperror.IsForbidden(err))

	_, err = uc.Execute(context.Background(), CreatePaymentIntentInput{GigID: s.gig.ID, PayerID: s.client.ID, Amount: "0"})
	assert.Equal(t, "amount must be greater than zero", apperror.MessageOf(err))
}

func TestHandleWebhook_RecordsPaymentOnce(t *testing.T) {
	s := newPaymentSetup(t)
	st := s.f.Store
	uc := NewHandleWebhookUseCase(st.PaymentLogs(), st.Transfers(), st.Users(), s.payouts, s.f.Clock)

	event := &repository.PayoutEvent{
		ID:              "evt_1",
		Type:            repository.EventPaymentSucceeded,
		PaymentIntentID: "pi_hook",
		AmountMinor:     12345,
		Metadata: map[string]string{
			MetaGigID:      s.gig.ID.String(),
			MetaPayerID:    s.client.ID.String(),
			MetaProviderID: s.provider.ID.String(),
		},
	}
	s.payouts.On("ParseEvent", []byte("payload"), "sig").Return(event, nil).Twice()

	require.NoError(t, uc.Execute(context.Background(), []byte("payload"), "sig"))
	require.NoError(t, uc.Execute(context.Background(), []byte("payload"), "sig"))

	logs, err := st.PaymentLogs().ListByGig(context.Background(), s.gig.ID, "")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.True(t, decimal.RequireFromString("123.45").Equal(logs[0].Amount))
	assert.Equal(t, valueobject.PaymentStatusSuccess, logs[0].Status)
	assert.Equal(t, s.client.ID, logs[0].CreatedBy)
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	s := newPaymentSetup(t)
	st := s.f.Store
	uc := NewHandleWebhookUseCase(st.PaymentLogs(), st.Transfers(), st.Users(), s.payouts, s.f.Clock)

	s.payouts.On("ParseEvent", mock.Anything, "bad").
		Return(nil, apperror.InvalidRequest("Invalid webhook signature")).Once()

	err := uc.Execute(context.Background(), []byte("{}"), "bad")
	assert.True(t, apperror.IsInvalidRequest(err))
}

func TestHandleWebhook_ForeignPaymentIgnored(t *testing.T) {
	s := newPaymentSetup(t)
	st := s.f.Store
	uc := NewHandleWebhookUseCase(st.PaymentLogs(), st.Transfers(), st.Users(), s.payouts, s.f.Clock)

	err := uc.Apply(context.Background(), &repository.PayoutEvent{
		Type:            repository.EventPaymentFailed,
		PaymentIntentID: "pi_foreign",
		AmountMinor:     100,
	})
	require.NoError(t, err)

	logs, err := st.PaymentLogs().ListByGig(context.Background(), s.gig.ID, "")
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestHandleWebhook_AccountAndTransferSync(t *testing.T) {
	s := newPaymentSetup(t)
	st := s.f.Store
	uc := NewHandleWebhookUseCase(st.PaymentLogs(), st.Transfers(), st.Users(), s.payouts, s.f.Clock)
	ctx := context.Background()

	require.NoError(t, uc.Apply(ctx, &repository.PayoutEvent{
		Type:             repository.EventAccountUpdated,
		AccountID:        "acct_123",
		DetailsSubmitted: true,
		ChargesEnabled:   true,
	}))
	provider, err := st.Users().FindByID(ctx, s.provider.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.PayoutAccountInReview, provider.PayoutAccountStatus)

	require.NoError(t, st.Transfers().Create(ctx, &entity.Transfer{
		ID:                 uuid.New(),
		GigID:              s.gig.ID,
		ExternalTransferID: "tr_9",
		Status:             valueobject.TransferStatusPending,
	}))
	require.NoError(t, uc.Apply(ctx, &repository.PayoutEvent{Type: repository.EventTransferReversed, TransferID: "tr_9"}))

	transfers, err := st.Transfers().ListByGig(ctx, s.gig.ID)
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, valueobject.TransferStatusFailed, transfers[0].Status)

	// неизвестный перевод не считается ошибкой доставки
	assert.NoError(t, uc.Apply(ctx, &repository.PayoutEvent{Type: repository.EventTransferCreated, TransferID: "tr_unknown"}))
}

func TestConnectPayoutAccount(t *testing.T) {
	f := usecasetest.New()
	provider := f.User(t, "provider", valueobject.RoleProvider, valueobject.PlanBasic)
	client := f.User(t, "client", valueobject.RoleUser, valueobject.PlanBasic)

	payouts := &mockPayouts{}
	payouts.On("CreateConnectedAccount", mock.Anything, "provider@example.com").Return("acct_new", nil).Once()
	payouts.On("CreateAccountOnboardingLink", mock.Anything, "acct_new").Return("https://connect.example/onboard", nil).Twice()

	uc := NewConnectPayoutAccountUseCase(f.Store.Users(), payouts, f.Clock)
	ctx := context.Background()

	res, err := uc.Execute(ctx, provider.ID)
	require.NoError(t, err)
	assert.Equal(t, "acct_new", res.AccountID)
	assert.Equal(t, valueobject.PayoutAccountNeedsOnboarding, res.Status)
	assert.Equal(t, "https://connect.example/onboard", res.OnboardingURL)

	// второй вызов не создаёт новый аккаунт
	res, err = uc.Execute(ctx, provider.ID)
	require.NoError(t, err)
	assert.Equal(t, "acct_new", res.AccountID)
	payouts.AssertExpectations(t)

	_, err = uc.Execute(ctx, client.ID)
	assert.True(t, apperror.IsForbidden(err))
}

func TestPaymentHistory_GroupsByGig(t *testing.T) {
	s := newPaymentSetup(t)
	s.log(t, 100, valueobject.PaymentStatusSuccess)
	s.log(t, 30, valueobject.PaymentStatusFail)

	uc := NewPaymentHistoryUseCase(s.f.Store.PaymentLogs())
	res, err := uc.Execute(context.Background(), PaymentHistoryInput{PayerID: s.client.ID, Filter: HistoryFilterCompleted})
	require.NoError(t, err)

	require.Len(t, res.Groups, 1)
	group := res.Groups[0]
	assert.Equal(t, s.gig.ID, group.GigID)
	assert.Len(t, group.Payments, 2)
	assert.True(t, decimal.NewFromInt(100).Equal(group.TotalPaid))
	require.NotNil(t, group.Provider)
	assert.Equal(t, s.provider.ID, group.Provider.ID)
	assert.Equal(t, 1, res.TotalPages)

	res, err = uc.Execute(context.Background(), PaymentHistoryInput{PayerID: s.client.ID, Filter: HistoryFilterInProgress})
	require.NoError(t, err)
	assert.Empty(t, res.Groups)

	_, err = uc.Execute(context.Background(), PaymentHistoryInput{PayerID: s.client.ID, Filter: "archived"})
	assert.True(t, apperror.IsInvalidRequest(err))
}

func TestCreatePaymentIntent_AcceptedBid(t *testing.T) {
	s := newPaymentSetup(t)
	st := s.f.Store
	gig := s.f.Gig(t, s.client, valueobject.GigStatusInProgress)
	s.f.Bid(t, gig, s.provider, valueobject.BidStatusRejected)
	other := s.f.User(t, "other", valueobject.RoleProvider, valueobject.PlanPro)
	s.f.Bid(t, gig, other, valueobject.BidStatusApproved)

	s.payouts.On("CreatePaymentIntent", mock.Anything, mock.MatchedBy(func(req repository.PaymentIntentRequest) bool {
		return req.Metadata[MetaGigID] == gig.ID.String() &&
			req.Metadata[MetaProviderID] == other.ID.String()
	})).Return(&repository.PaymentIntent{ID: "pi_2"}, nil).Once()

	uc := NewCreatePaymentIntentUseCase(st.Gigs(), st.Bids(), st.Users(), s.payouts, "usd")
	intent, err := uc.Execute(context.Background(), CreatePaymentIntentInput{GigID: gig.ID, PayerID: s.client.ID, Amount: "15"})
	require.NoError(t, err)
	assert.Equal(t, "pi_2", intent.ID)
	s.payouts.AssertExpectations(t)

	open := s.f.Gig(t, s.client, valueobject.GigStatusRequested)
	s.f.Bid(t, open, s.provider, valueobject.BidStatusRequested)
	_, err = uc.Execute(context.Background(), CreatePaymentIntentInput{GigID: open.ID, PayerID: s.client.ID, Amount: "15"})
	assert.Equal(t, "Gig has no assigned provider", apperror.MessageOf(err))
}
