package gig

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/usecasetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChangeStatus(f *usecasetest.Fixture) *ChangeStatusUseCase {
	s := f.Store
	return NewChangeStatusUseCase(s.Gigs(), s.Bids(), s.Users(), s, f.Notifier, f.Clock)
}

func bidRef(b *entity.Bid) *uuid.UUID {
	id := b.ID
	return &id
}

func TestChangeStatus_AssignCascades(t *testing.T) {
	f := usecasetest.New()
	owner := f.User(t, "owner", valueobject.RoleUser, valueobject.PlanPro)
	x := f.User(t, "x", valueobject.RoleProvider, valueobject.PlanPro)
	y := f.User(t, "y", valueobject.RoleProvider, valueobject.PlanPro)
	z := f.User(t, "z", valueobject.RoleProvider, valueobject.PlanPro)

	gig := f.Gig(t, owner, valueobject.GigStatusRequested)
	bidX := f.Bid(t, gig, x, valueobject.BidStatusRequested)
	bidY := f.Bid(t, gig, y, valueobject.BidStatusRequested)
	bidZ := f.Bid(t, gig, z, valueobject.BidStatusRequested)

	res, err := newChangeStatus(f).Execute(context.Background(), ChangeStatusInput{
		GigID:        gig.ID,
		ActorID:      owner.ID,
		TargetStatus: "Assigned",
		BidID:        bidRef(bidX),
	})
	require.NoError(t, err)

	assert.Equal(t, valueobject.GigStatusAssigned, res.Gig.Status)
	stored := f.ReloadGig(t, gig.ID)
	require.NotNil(t, stored.AssignedToBid)
	assert.Equal(t, bidX.ID, *stored.AssignedToBid)

	assert.Equal(t, valueobject.BidStatusAssigned, f.ReloadBid(t, bidX.ID).Status)
	assert.Equal(t, valueobject.BidStatusNotAssigned, f.ReloadBid(t, bidY.ID).Status)
	assert.Equal(t, valueobject.BidStatusNotAssigned, f.ReloadBid(t, bidZ.ID).Status)

	require.Len(t, stored.StatusHistory, 1)
	assert.Equal(t, "Requested", stored.StatusHistory[0].PreviousStatus)
	assert.Equal(t, "owner", stored.StatusHistory[0].ActorName)

	// владелец действовал сам: уведомление получает только исполнитель
	events := f.Notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, x.ID, events[0].UserID)
	assert.Equal(t, repository.EventGigStatusChanged, events[0].Event)
}

func TestChangeStatus_SecondAssignRejected(t *testing.T) {
	f := usecasetest.New()
	owner := f.User(t, "owner", valueobject.RoleUser, valueobject.PlanPro)
	x := f.User(t, "x", valueobject.RoleProvider, valueobject.PlanPro)
	y := f.User(t, "y", valueobject.RoleProvider, valueobject.PlanPro)

	gig := f.Gig(t, owner, valueobject.GigStatusRequested)
	bidX := f.Bid(t, gig, x, valueobject.BidStatusRequested)
	bidY := f.Bid(t, gig, y, valueobject.BidStatusRequested)

	uc := newChangeStatus(f)
	ctx := context.Background()
	_, err := uc.Execute(ctx, ChangeStatusInput{GigID: gig.ID, ActorID: owner.ID, TargetStatus: "Assigned", BidID: bidRef(bidX)})
	require.NoError(t, err)

	_, err = uc.Execute(ctx, ChangeStatusInput{GigID: gig.ID, ActorID: owner.ID, TargetStatus: "Assigned", BidID: bidRef(bidY)})
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidRequest(err))

	assigned := 0
	bids, err := f.Store.Bids().FindByGigID(ctx, gig.ID)
	require.NoError(t, err)
	for _, b := range bids {
		if b.Status == valueobject.BidStatusAssigned {
			assigned++
		}
	}
	assert.Equal(t, 1, assigned)
}

func TestChangeStatus_NotAssignedKeepsGigStatus(t *testing.T) {
	f := usecasetest.New()
	owner := f.User(t, "owner", valueobject.RoleUser, valueobject.PlanPro)
	x := f.User(t, "x", valueobject.RoleProvider, valueobject.PlanPro)

	gig := f.Gig(t, owner, valueobject.GigStatusRequested)
	bid := f.Bid(t, gig, x, valueobject.BidStatusRequested)

	res, err := newChangeStatus(f).Execute(context.Background(), ChangeStatusInput{
		GigID:        gig.ID,
		ActorID:      owner.ID,
		TargetStatus: "Not-Assigned",
		BidID:        bidRef(bid),
		Description:  "Not a fit",
	})
	require.NoError(t, err)

	assert.Equal(t, valueobject.GigStatusRequested, res.Gig.Status)
	assert.Equal(t, valueobject.BidStatusNotAssigned, f.ReloadBid(t, bid.ID).Status)

	stored := f.ReloadGig(t, gig.ID)
	require.Len(t, stored.StatusHistory, 1)
	assert.Equal(t, "Not-Assigned", stored.StatusHistory[0].Status)
	assert.Equal(t, "Not a fit", stored.StatusHistory[0].Description)
}

func TestChangeStatus_BidderCannotApprove(t *testing.T) {
	f := usecasetest.New()
	owner := f.User(t, "owner", valueobject.RoleUser, valueobject.PlanPro)
	x := f.User(t, "x", valueobject.RoleProvider, valueobject.PlanPro)

	gig := f.Gig(t, owner, valueobject.GigStatusRequested)
	bid := f.Bid(t, gig, x, valueobject.BidStatusAssigned)
	f.Assign(t, gig, bid, valueobject.GigStatusCompleted)

	_, err := newChangeStatus(f).Execute(context.Background(), ChangeStatusInput{
		GigID:        gig.ID,
		ActorID:      x.ID,
		TargetStatus: "Approved",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	assert.Equal(t, valueobject.GigStatusCompleted, f.ReloadGig(t, gig.ID).Status)
}

func TestChangeStatus_GuardOrdering(t *testing.T) {
	tests := []struct {
		name    string
		current valueobject.GigStatus
		target  string
		wantErr bool
	}{
		{"in-progress from assigned", valueobject.GigStatusAssigned, "In-Progress", false},
		{"in-progress from requested", valueobject.GigStatusRequested, "In-Progress", true},
		{"in-progress from completed", valueobject.GigStatusCompleted, "In-Progress", true},
		{"completed from in-progress", valueobject.GigStatusInProgress, "Completed", false},
		{"completed from assigned", valueobject.GigStatusAssigned, "Completed", true},
		{"completed twice", valueobject.GigStatusCompleted, "Completed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := usecasetest.New()
			owner := f.User(t, "owner", valueobject.RoleUser, valueobject.PlanPro)
			x := f.User(t, "x", valueobject.RoleProvider, valueobject.PlanPro)

			gig := f.Gig(t, owner, valueobject.GigStatusRequested)
			bid := f.Bid(t, gig, x, valueobject.BidStatusAssigned)
			f.Assign(t, gig, bid, tt.current)

			res, err := newChangeStatus(f).Execute(context.Background(), ChangeStatusInput{
				GigID:        gig.ID,
				ActorID:      x.ID,
				TargetStatus: tt.target,
				BidID:        bidRef(bid),
			})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.IsInvalidRequest(err))
				assert.Equal(t, tt.current, f.ReloadGig(t, gig.ID).Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, valueobject.GigStatus(tt.target), res.Gig.Status)
		})
	}
}

func TestChangeStatus_StrangerCannotProgress(t *testing.T) {
	f := usecasetest.New()
	owner := f.User(t, "owner", valueobject.RoleUser, valueobject.PlanPro)
	x := f.User(t, "x", valueobject.RoleProvider, valueobject.PlanPro)
	other := f.User(t, "other", valueobject.RoleProvider, valueobject.PlanPro)

	gig := f.Gig(t, owner, valueobject.GigStatusRequested)
	bid := f.Bid(t, gig, x, valueobject.BidStatusAssigned)
	f.Assign(t, gig, bid, valueobject.GigStatusAssigned)

	_, err := newChangeStatus(f).Execute(context.Background(), ChangeStatusInput{
		GigID:        gig.ID,
		ActorID:      other.ID,
		TargetStatus: "In-Progress",
		BidID:        bidRef(bid),
	})
	assert.True(t, apperror.IsForbidden(err))
}

func TestChangeStatus_AdminRejectsCompleted(t *testing.T) {
	f := usecasetest.New()
	owner := f.User(t, "owner", valueobject.RoleUser, valueobject.PlanPro)
	x := f.User(t, "x", valueobject.RoleProvider, valueobject.PlanPro)
	admin := f.User(t, "admin", valueobject.RoleAdmin, valueobject.PlanPro)

	gig := f.Gig(t, owner, valueobject.GigStatusRequested)
	bid := f.Bid(t, gig, x, valueobject.BidStatusAssigned)
	f.Assign(t, gig, bid, valueobject.GigStatusCompleted)

	f.Advance(time.Hour)
	res, err := newChangeStatus(f).Execute(context.Background(), ChangeStatusInput{
		GigID:        gig.ID,
		ActorID:      admin.ID,
		TargetStatus: "Rejected",
	})
	require.NoError(t, err)
	assert.Equal(t, valueobject.GigStatusRejected, res.Gig.Status)

	stored := f.ReloadGig(t, gig.ID)
	assert.Equal(t, valueobject.GigStatusRejected, stored.Status)
	require.Len(t, stored.StatusHistory, 1)
	assert.Equal(t, "Completed", stored.StatusHistory[0].PreviousStatus)
	assert.Equal(t, "Rejected", stored.StatusHistory[0].Status)
	assert.Equal(t, valueobject.RoleAdmin, stored.StatusHistory[0].ActorRole)
	assert.Equal(t, f.Now, stored.StatusHistory[0].CreatedAt)
}

func TestChangeStatus_AdminOverrideReleasesAssignment(t *testing.T) {
	f := usecasetest.New()
	owner := f.User(t, "owner", valueobject.RoleUser, valueobject.PlanPro)
	x := f.User(t, "x", valueobject.RoleProvider, valueobject.PlanPro)
	admin := f.User(t, "admin", valueobject.RoleAdmin, valueobject.PlanPro)

	gig := f.Gig(t, owner, valueobject.GigStatusRequested)
	bid := f.Bid(t, gig, x, valueobject.BidStatusAssigned)
	f.Assign(t, gig, bid, valueobject.GigStatusAssigned)

	uc := newChangeStatus(f)
	_, err := uc.Execute(context.Background(), ChangeStatusInput{
		GigID:        gig.ID,
		ActorID:      owner.ID,
		TargetStatus: "Open",
		BidID:        bidRef(bid),
	})
	assert.True(t, apperror.IsForbidden(err))

	res, err := uc.Execute(context.Background(), ChangeStatusInput{
		GigID:        gig.ID,
		ActorID:      admin.ID,
		TargetStatus: "Open",
		BidID:        bidRef(bid),
	})
	require.NoError(t, err)
	assert.Equal(t, valueobject.GigStatusOpen, res.Gig.Status)
	assert.Nil(t, f.ReloadGig(t, gig.ID).AssignedToBid)
	assert.Equal(t, valueobject.BidStatusNotAssigned, f.ReloadBid(t, bid.ID).Status)
}

func TestChangeStatus_InputErrors(t *testing.T) {
	f := usecasetest.New()
	owner := f.User(t, "owner", valueobject.RoleUser, valueobject.PlanPro)
	other := f.User(t, "other", valueobject.RoleUser, valueobject.PlanPro)
	x := f.User(t, "x", valueobject.RoleProvider, valueobject.PlanPro)

	gig := f.Gig(t, owner, valueobject.GigStatusRequested)
	otherGig := f.Gig(t, other, valueobject.GigStatusRequested)
	foreignBid := f.Bid(t, otherGig, x, valueobject.BidStatusRequested)

	uc := newChangeStatus(f)
	ctx := context.Background()

	_, err := uc.Execute(ctx, ChangeStatusInput{GigID: gig.ID, ActorID: owner.ID, TargetStatus: "Done"})
	assert.True(t, apperror.IsInvalidRequest(err))

	_, err = uc.Execute(ctx, ChangeStatusInput{GigID: gig.ID, ActorID: owner.ID, TargetStatus: "Assigned"})
	assert.Equal(t, "bidId is required", apperror.MessageOf(err))

	_, err = uc.Execute(ctx, ChangeStatusInput{GigID: gig.ID, ActorID: owner.ID, TargetStatus: "Assigned", BidID: bidRef(foreignBid)})
	assert.True(t, apperror.IsNotFound(err))

	_, err = uc.Execute(ctx, ChangeStatusInput{GigID: uuid.New(), ActorID: owner.ID, TargetStatus: "Approved"})
	assert.True(t, apperror.IsNotFound(err))

	_, err = uc.Execute(ctx, ChangeStatusInput{GigID: gig.ID, ActorID: uuid.New(), TargetStatus: "Approved"})
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestChangeStatus_AcceptedBidderCompletes(t *testing.T) {
	f := usecasetest.New()
	owner := f.User(t, "owner", valueobject.RoleUser, valueobject.PlanPro)
	x := f.User(t, "x", valueobject.RoleProvider, valueobject.PlanPro)
	y := f.User(t, "y", valueobject.RoleProvider, valueobject.PlanPro)

	gig := f.Gig(t, owner, valueobject.GigStatusInProgress)
	accepted := f.Bid(t, gig, x, valueobject.BidStatusAccepted)
	rejected := f.Bid(t, gig, y, valueobject.BidStatusRejected)
	require.Nil(t, gig.AssignedToBid)

	uc := newChangeStatus(f)
	_, err := uc.Execute(context.Background(), ChangeStatusInput{
		GigID:        gig.ID,
		ActorID:      y.ID,
		TargetStatus: "Completed",
		BidID:        bidRef(rejected),
	})
	assert.True(t, apperror.IsForbidden(err))

	res, err := uc.Execute(context.Background(), ChangeStatusInput{
		GigID:        gig.ID,
		ActorID:      x.ID,
		TargetStatus: "Completed",
		BidID:        bidRef(accepted),
	})
	require.NoError(t, err)
	assert.Equal(t, valueobject.GigStatusCompleted, res.Gig.Status)
	assert.Nil(t, f.ReloadGig(t, gig.ID).AssignedToBid)
}
