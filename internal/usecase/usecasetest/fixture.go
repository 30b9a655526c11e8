// Package usecasetest общие фикстуры для тестов use case'ов поверх in-memory хранилища.
package usecasetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/infrastructure/memory"
	"github.com/ignatzorin/gig-marketplace/internal/quota"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Fixture хранилище и управляемые часы одного теста.
type Fixture struct {
	Store    *memory.Store
	Notifier *RecordingNotifier
	Now      time.Time
}

func New() *Fixture {
	return &Fixture{
		Store:    memory.NewStore(),
		Notifier: &RecordingNotifier{},
		Now:      time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func (f *Fixture) Clock() time.Time {
	return f.Now
}

// Advance сдвигает часы, чтобы записи журнала различались по времени.
func (f *Fixture) Advance(d time.Duration) {
	f.Now = f.Now.Add(d)
}

func (f *Fixture) Quota() *quota.Resolver {
	return quota.NewResolver(f.Store.Gigs(), f.Store.Bids(), f.Clock)
}

func (f *Fixture) User(t *testing.T, name string, role valueobject.Role, plan valueobject.PlanTier) *entity.User {
	t.Helper()
	user, err := entity.NewUser(name+"@example.com", name, "hash", role, f.Now)
	require.NoError(t, err)
	user.Plan = plan
	require.NoError(t, f.Store.Users().Create(context.Background(), user))
	return user
}

// Gig создаёт гиг владельца в заданном статусе.
func (f *Fixture) Gig(t *testing.T, owner *entity.User, status valueobject.GigStatus) *entity.Gig {
	t.Helper()
	gig, err := entity.NewGig(owner.Actor(), entity.GigDetails{
		Title:       "Landing page",
		Description: "Single page site",
		Price:       decimal.NewFromInt(200),
		Skills:      []string{"html"},
	}, f.Now)
	require.NoError(t, err)
	gig.Status = status
	require.NoError(t, f.Store.Gigs().Create(context.Background(), gig))
	return gig
}

func (f *Fixture) Bid(t *testing.T, gig *entity.Gig, bidder *entity.User, status valueobject.BidStatus) *entity.Bid {
	t.Helper()
	bid, err := entity.NewBid(gig.ID, bidder.ID, decimal.NewFromInt(50), "", "I can do it", f.Now)
	require.NoError(t, err)
	bid.Status = status
	require.NoError(t, f.Store.Bids().Create(context.Background(), bid))
	return bid
}

// Assign привязывает отклик к гигу так, как это делает движок статусов.
func (f *Fixture) Assign(t *testing.T, gig *entity.Gig, bid *entity.Bid, status valueobject.GigStatus) *entity.Gig {
	t.Helper()
	ctx := context.Background()
	stored, err := f.Store.Gigs().FindByID(ctx, gig.ID)
	require.NoError(t, err)
	stored.AssignBid(bid.ID, f.Now)
	stored.Status = status
	require.NoError(t, f.Store.Gigs().Update(ctx, stored))
	return stored
}

func (f *Fixture) ReloadGig(t *testing.T, id uuid.UUID) *entity.Gig {
	t.Helper()
	gig, err := f.Store.Gigs().FindByID(context.Background(), id)
	require.NoError(t, err)
	return gig
}

func (f *Fixture) ReloadBid(t *testing.T, id uuid.UUID) *entity.Bid {
	t.Helper()
	bid, err := f.Store.Bids().FindByID(context.Background(), id)
	require.NoError(t, err)
	return bid
}

// Notification событие, доставленное RecordingNotifier.
type Notification struct {
	UserID uuid.UUID
	Event  string
}

type RecordingNotifier struct {
	mu     sync.Mutex
	events []Notification
}

func (n *RecordingNotifier) Notify(userID uuid.UUID, event string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, Notification{UserID: userID, Event: event})
}

func (n *RecordingNotifier) Events() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.events...)
}
