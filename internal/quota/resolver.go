// Package quota проверяет лимиты тарифного плана на публикацию гигов и отклики.
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
)

type Action string

const (
	ActionPostGig  Action = "post_gig"
	ActionPlaceBid Action = "place_bid"
)

// Unlimited значение лимита без ограничения.
const Unlimited = -1

// Limits месячные лимиты по тарифам. 0 означает запрет.
var Limits = map[valueobject.PlanTier]map[Action]int{
	valueobject.PlanFree:  {ActionPostGig: 0, ActionPlaceBid: 0},
	valueobject.PlanBasic: {ActionPostGig: 3, ActionPlaceBid: 5},
	valueobject.PlanPro:   {ActionPostGig: Unlimited, ActionPlaceBid: Unlimited},
}

// Checker единая точка проверки лимитов для use case'ов.
type Checker interface {
	Check(ctx context.Context, user *entity.User, action Action) error
}

type Resolver struct {
	gigRepo repository.GigRepository
	bidRepo repository.BidRepository
	now     func() time.Time
}

func NewResolver(gigRepo repository.GigRepository, bidRepo repository.BidRepository, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{gigRepo: gigRepo, bidRepo: bidRepo, now: now}
}

// MonthStart первая секунда текущего календарного месяца (UTC).
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func (r *Resolver) Check(ctx context.Context, user *entity.User, action Action) error {
	if user.Role.IsAdmin() {
		return nil
	}

	limit, ok := Limits[user.Plan][action]
	if !ok {
		return apperror.Forbidden("Your plan does not allow this action")
	}
	if limit == Unlimited {
		return nil
	}
	if limit == 0 {
		return apperror.Forbidden(fmt.Sprintf("%s plan users cannot %s, please upgrade your plan", user.Plan, actionVerb(action)))
	}

	used, err := r.count(ctx, user, action)
	if err != nil {
		return err
	}
	if used >= limit {
		return apperror.Forbidden(fmt.Sprintf("%s plan allows only %d %s per month", user.Plan, limit, actionNoun(action)))
	}
	return nil
}

func (r *Resolver) count(ctx context.Context, user *entity.User, action Action) (int, error) {
	since := MonthStart(r.now())

	var (
		n   int
		err error
	)
	switch action {
	case ActionPostGig:
		n, err = r.gigRepo.CountCreatedSince(ctx, user.ID, since)
	case ActionPlaceBid:
		n, err = r.bidRepo.CountCreatedSince(ctx, user.ID, since)
	}
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to check plan quota")
	}
	return n, nil
}

func actionVerb(action Action) string {
	if action == ActionPostGig {
		return "post gigs"
	}
	return "place bids"
}

func actionNoun(action Action) string {
	if action == ActionPostGig {
		return "gig posts"
	}
	return "bids"
}
