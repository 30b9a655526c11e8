package gig

import (
	"context"
	"errors"
	"testing"

	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/gig-marketplace/internal/quota"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/usecasetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reverseSetup struct {
	f        *usecasetest.Fixture
	provider *entity.User
	client   *entity.User
	offering *entity.Gig
	bid      *entity.Bid
	uc       *ReverseChangeStatusUseCase
}

func newReverseSetup(t *testing.T, clientPlan valueobject.PlanTier) *reverseSetup {
	f := usecasetest.New()
	provider := f.User(t, "provider", valueobject.RoleProvider, valueobject.PlanPro)
	client := f.User(t, "client", valueobject.RoleUser, clientPlan)

	offering := f.Gig(t, provider, valueobject.GigStatusRequested)
	bid := f.Bid(t, offering, client, valueobject.BidStatusRequested)

	s := f.Store
	return &reverseSetup{
		f:        f,
		provider: provider,
		client:   client,
		offering: offering,
		bid:      bid,
		uc:       NewReverseChangeStatusUseCase(s.Gigs(), s.Bids(), s.Users(), s, f.Quota(), f.Notifier, f.Clock),
	}
}

func (s *reverseSetup) input(status string) ReverseChangeStatusInput {
	return ReverseChangeStatusInput{
		ProviderGigID: s.offering.ID,
		BidID:         s.bid.ID,
		ClientID:      s.client.ID,
		ActorID:       s.provider.ID,
		TargetStatus:  status,
	}
}

func TestReverseChangeStatus_AssignCreatesMirror(t *testing.T) {
	s := newReverseSetup(t, valueobject.PlanBasic)

	res, err := s.uc.Execute(context.Background(), s.input("Assigned"))
	require.NoError(t, err)
	assert.Equal(t, "Gig assigned to client", res.Message)

	clientGig := s.f.ReloadGig(t, res.ClientGig.ID)
	assert.Equal(t, s.client.ID, clientGig.CreatedBy)
	assert.Equal(t, valueobject.RoleUser, clientGig.CreatedByRole)
	assert.Equal(t, valueobject.GigStatusAssigned, clientGig.Status)
	assert.False(t, clientGig.IsPublic)
	assert.True(t, s.bid.BidAmount.Equal(clientGig.Price))
	assert.Contains(t, clientGig.Description, "Client request:")

	// гиг клиента назначен на отклик исполнителя
	require.NotNil(t, clientGig.AssignedToBid)
	mirror := s.f.ReloadBid(t, *clientGig.AssignedToBid)
	assert.Equal(t, s.provider.ID, mirror.CreatedBy)
	assert.Equal(t, valueobject.BidStatusAssigned, mirror.Status)
	require.NotNil(t, mirror.AssociatedOtherGig)
	assert.Equal(t, s.offering.ID, *mirror.AssociatedOtherGig)

	original := s.f.ReloadBid(t, s.bid.ID)
	assert.Equal(t, valueobject.BidStatusAssigned, original.Status)
	require.NotNil(t, original.AssociatedOtherGig)
	assert.Equal(t, clientGig.ID, *original.AssociatedOtherGig)

	offering := s.f.ReloadGig(t, s.offering.ID)
	require.NotNil(t, offering.AssignedToBid)
	assert.Equal(t, s.bid.ID, *offering.AssignedToBid)
	require.Len(t, offering.StatusHistory, 1)
	assert.Equal(t, "Request accepted", offering.StatusHistory[0].Description)
	require.Len(t, clientGig.StatusHistory, 1)

	events := s.f.Notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, s.client.ID, events[0].UserID)
	assert.Equal(t, repository.EventGigReverseAssigned, events[0].Event)
}

func TestReverseChangeStatus_Decline(t *testing.T) {
	for _, status := range []string{"Not-Assigned", "Rejected"} {
		t.Run(status, func(t *testing.T) {
			s := newReverseSetup(t, valueobject.PlanBasic)

			res, err := s.uc.Execute(context.Background(), s.input(status))
			require.NoError(t, err)

			assert.Nil(t, res.ClientGig)
			assert.Equal(t, "Request from client declined", res.Message)
			assert.Equal(t, valueobject.BidStatus(status), s.f.ReloadBid(t, s.bid.ID).Status)
			assert.Nil(t, s.f.ReloadGig(t, s.offering.ID).AssignedToBid)
		})
	}
}

func TestReverseChangeStatus_ClientQuotaExceeded(t *testing.T) {
	s := newReverseSetup(t, valueobject.PlanFree)

	_, err := s.uc.Execute(context.Background(), s.input("Assigned"))
	require.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	assert.Equal(t,
		"client cannot accept this offer: Free plan users cannot post gigs, please upgrade your plan",
		apperror.MessageOf(err))

	// транзакция не оставила следов
	assert.Equal(t, valueobject.BidStatusRequested, s.f.ReloadBid(t, s.bid.ID).Status)
	gigs, total, err := s.f.Store.Gigs().List(context.Background(), repository.GigFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, gigs, 1)
}

func TestReverseChangeStatus_Authorization(t *testing.T) {
	s := newReverseSetup(t, valueobject.PlanPro)
	stranger := s.f.User(t, "stranger", valueobject.RoleProvider, valueobject.PlanPro)

	in := s.input("Assigned")
	in.ActorID = stranger.ID
	_, err := s.uc.Execute(context.Background(), in)
	assert.True(t, apperror.IsForbidden(err))

	in = s.input("Assigned")
	in.ClientID = stranger.ID
	_, err = s.uc.Execute(context.Background(), in)
	assert.Equal(t, "Bid was not placed by this client", apperror.MessageOf(err))

	_, err = s.uc.Execute(context.Background(), s.input("Completed"))
	assert.True(t, apperror.IsInvalidRequest(err))
}

func TestReverseChangeStatus_RequiresProviderOffering(t *testing.T) {
	f := usecasetest.New()
	owner := f.User(t, "owner", valueobject.RoleUser, valueobject.PlanPro)
	bidder := f.User(t, "bidder", valueobject.RoleProvider, valueobject.PlanPro)
	gig := f.Gig(t, owner, valueobject.GigStatusRequested)
	bid := f.Bid(t, gig, bidder, valueobject.BidStatusRequested)

	s := f.Store
	uc := NewReverseChangeStatusUseCase(s.Gigs(), s.Bids(), s.Users(), s, f.Quota(), f.Notifier, f.Clock)
	_, err := uc.Execute(context.Background(), ReverseChangeStatusInput{
		ProviderGigID: gig.ID,
		BidID:         bid.ID,
		ClientID:      bidder.ID,
		ActorID:       owner.ID,
		TargetStatus:  "Assigned",
	})
	assert.Equal(t, "Gig is not a provider offering", apperror.MessageOf(err))
}

func TestReverseChangeStatus_SecondAcceptRejected(t *testing.T) {
	s := newReverseSetup(t, valueobject.PlanPro)
	other := s.f.User(t, "other", valueobject.RoleUser, valueobject.PlanPro)
	second := s.f.Bid(t, s.offering, other, valueobject.BidStatusRequested)

	_, err := s.uc.Execute(context.Background(), s.input("Assigned"))
	require.NoError(t, err)

	in := s.input("Assigned")
	in.BidID = second.ID
	in.ClientID = other.ID
	_, err = s.uc.Execute(context.Background(), in)
	assert.Equal(t, "This offering already has an assigned request", apperror.MessageOf(err))

	// на предложении остаётся ровно один назначенный отклик
	assert.Equal(t, valueobject.BidStatusRequested, s.f.ReloadBid(t, second.ID).Status)
	bids, err := s.f.Store.Bids().FindByGigID(context.Background(), s.offering.ID)
	require.NoError(t, err)
	assigned := 0
	for _, b := range bids {
		if b.Status == valueobject.BidStatusAssigned {
			assigned++
		}
	}
	assert.Equal(t, 1, assigned)
}

type failingQuota struct{}

func (failingQuota) Check(context.Context, *entity.User, quota.Action) error {
	return apperror.Wrap(errors.New("connection reset"), apperror.ErrCodeDatabaseError, "failed to check plan quota")
}

func TestReverseChangeStatus_QuotaStoreErrorNotForbidden(t *testing.T) {
	s := newReverseSetup(t, valueobject.PlanBasic)
	st := s.f.Store
	uc := NewReverseChangeStatusUseCase(st.Gigs(), st.Bids(), st.Users(), st, failingQuota{}, s.f.Notifier, s.f.Clock)

	_, err := uc.Execute(context.Background(), s.input("Assigned"))
	require.Error(t, err)
	assert.False(t, apperror.IsForbidden(err))
	assert.Equal(t, apperror.ErrCodeDatabaseError, apperror.CodeOf(err))
	assert.Equal(t, valueobject.BidStatusRequested, s.f.ReloadBid(t, s.bid.ID).Status)
}
