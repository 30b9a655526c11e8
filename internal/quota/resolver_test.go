package quota

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGigRepo struct {
	repository.GigRepository
	created []time.Time
}

func (r *countingGigRepo) CountCreatedSince(_ context.Context, _ uuid.UUID, since time.Time) (int, error) {
	n := 0
	for _, t := range r.created {
		if !t.Before(since) {
			n++
		}
	}
	return n, nil
}

type countingBidRepo struct {
	repository.BidRepository
	created []time.Time
}

func (r *countingBidRepo) CountCreatedSince(_ context.Context, _ uuid.UUID, since time.Time) (int, error) {
	n := 0
	for _, t := range r.created {
		if !t.Before(since) {
			n++
		}
	}
	return n, nil
}

func user(plan valueobject.PlanTier, role valueobject.Role) *entity.User {
	return &entity.User{ID: uuid.New(), DisplayName: "Test", Role: role, Plan: plan}
}

func TestResolver_FreePlanBlocked(t *testing.T) {
	r := NewResolver(&countingGigRepo{}, &countingBidRepo{}, nil)

	err := r.Check(context.Background(), user(valueobject.PlanFree, valueobject.RoleProvider), ActionPlaceBid)
	require.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	assert.Equal(t, "Free plan users cannot place bids, please upgrade your plan", apperror.MessageOf(err))

	err = r.Check(context.Background(), user(valueobject.PlanFree, valueobject.RoleUser), ActionPostGig)
	require.Error(t, err)
	assert.Equal(t, "Free plan users cannot post gigs, please upgrade your plan", apperror.MessageOf(err))
}

func TestResolver_BasicBidLimitResetsNextMonth(t *testing.T) {
	june := time.Date(2026, time.June, 20, 12, 0, 0, 0, time.UTC)
	bids := &countingBidRepo{}
	for i := 0; i < 5; i++ {
		bids.created = append(bids.created, june.AddDate(0, 0, -i))
	}

	now := june
	r := NewResolver(&countingGigRepo{}, bids, func() time.Time { return now })
	u := user(valueobject.PlanBasic, valueobject.RoleProvider)

	err := r.Check(context.Background(), u, ActionPlaceBid)
	require.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	assert.Equal(t, "Basic plan allows only 5 bids per month", apperror.MessageOf(err))

	now = time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, r.Check(context.Background(), u, ActionPlaceBid))
}

func TestResolver_BasicGigLimit(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	gigs := &countingGigRepo{created: []time.Time{
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.February, 28, 23, 59, 0, 0, time.UTC),
	}}
	r := NewResolver(gigs, &countingBidRepo{}, func() time.Time { return now })
	u := user(valueobject.PlanBasic, valueobject.RoleUser)

	require.NoError(t, r.Check(context.Background(), u, ActionPostGig))

	gigs.created = append(gigs.created, now)
	err := r.Check(context.Background(), u, ActionPostGig)
	require.Error(t, err)
	assert.Equal(t, "Basic plan allows only 3 gig posts per month", apperror.MessageOf(err))
}

func TestResolver_ProAndAdminUnlimited(t *testing.T) {
	bids := &countingBidRepo{}
	for i := 0; i < 100; i++ {
		bids.created = append(bids.created, time.Now())
	}
	r := NewResolver(&countingGigRepo{}, bids, nil)

	assert.NoError(t, r.Check(context.Background(), user(valueobject.PlanPro, valueobject.RoleProvider), ActionPlaceBid))
	assert.NoError(t, r.Check(context.Background(), user(valueobject.PlanFree, valueobject.RoleAdmin), ActionPlaceBid))
}

func TestMonthStart(t *testing.T) {
	got := MonthStart(time.Date(2026, time.December, 31, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC), got)
}
