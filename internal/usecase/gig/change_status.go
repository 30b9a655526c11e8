package gig

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/logger"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/common"
	"github.com/sirupsen/logrus"
)

type ChangeStatusInput struct {
	GigID        uuid.UUID
	ActorID      uuid.UUID
	TargetStatus string
	BidID        *uuid.UUID
	Description  string
}

type ChangeStatusResult struct {
	Gig *entity.Gig
	Bid *entity.Bid
}

// ChangeStatusUseCase единственный путь изменения статуса гига и связанных откликов.
type ChangeStatusUseCase struct {
	gigRepo  repository.GigRepository
	bidRepo  repository.BidRepository
	userRepo repository.UserRepository
	tx       repository.Transactor
	notifier repository.Notifier
	clock    common.Clock
}

func NewChangeStatusUseCase(
	gigRepo repository.GigRepository,
	bidRepo repository.BidRepository,
	userRepo repository.UserRepository,
	tx repository.Transactor,
	notifier repository.Notifier,
	clock common.Clock,
) *ChangeStatusUseCase {
	return &ChangeStatusUseCase{
		gigRepo:  gigRepo,
		bidRepo:  bidRepo,
		userRepo: userRepo,
		tx:       tx,
		notifier: notifier,
		clock:    clock,
	}
}

func (uc *ChangeStatusUseCase) Execute(ctx context.Context, input ChangeStatusInput) (*ChangeStatusResult, error) {
	target, err := valueobject.NewGigStatus(input.TargetStatus)
	if err != nil {
		return nil, err
	}

	user, err := common.ResolveUser(ctx, uc.userRepo, input.ActorID)
	if err != nil {
		return nil, err
	}
	actor := user.Actor()

	var (
		result   ChangeStatusResult
		previous valueobject.GigStatus
	)
	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		gig, err := uc.gigRepo.FindByIDForUpdate(ctx, input.GigID)
		if err != nil {
			return err
		}
		previous = gig.Status

		if target.AdminOnly() && !actor.IsAdmin() {
			return apperror.Forbidden(fmt.Sprintf("Only admins can set status %s", target))
		}

		if target.RequiresBid() && input.BidID == nil {
			return apperror.InvalidRequest("bidId is required")
		}

		var bid *entity.Bid
		if input.BidID != nil {
			bid, err = uc.bidRepo.FindByID(ctx, *input.BidID)
			if err != nil {
				return err
			}
			if !bid.BelongsTo(gig.ID) {
				return apperror.ErrBidNotFound
			}
		}

		if err := authorize(actor, gig, bid, target); err != nil {
			return err
		}
		if err := guard(gig, bid, target); err != nil {
			return err
		}

		now := uc.clock.Now()
		if err := uc.apply(ctx, gig, bid, target, actor, input.Description, now); err != nil {
			return err
		}

		result = ChangeStatusResult{Gig: gig, Bid: bid}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"gig_id":   result.Gig.ID,
		"actor_id": actor.ID,
		"from":     previous,
		"to":       target,
	}).Info("gig: статус изменён")

	uc.notify(actor, result, previous, target)
	return &result, nil
}

// authorize проверяет, что роль участника позволяет запросить target.
func authorize(actor entity.Actor, gig *entity.Gig, bid *entity.Bid, target valueobject.GigStatus) error {
	if actor.IsAdmin() {
		return nil
	}

	if target.SetByGigCreator() && !gig.IsOwnedBy(actor.ID) {
		return apperror.Forbidden(fmt.Sprintf("Only the gig creator can set status %s", target))
	}

	if target.SetByBidCreator() {
		if bid == nil || !bid.IsOwnedBy(actor.ID) || !isEngaged(gig, bid) {
			return apperror.Forbidden(fmt.Sprintf("Only the engaged bidder can set status %s", target))
		}
	}
	return nil
}

// isEngaged: отклик назначен на гиг или принят его создателем.
func isEngaged(gig *entity.Gig, bid *entity.Bid) bool {
	return gig.IsAssignedTo(bid.ID) || (bid.BelongsTo(gig.ID) && bid.IsAccepted())
}

func guard(gig *entity.Gig, bid *entity.Bid, target valueobject.GigStatus) error {
	switch target {
	case valueobject.GigStatusAssigned, valueobject.GigStatusNotAssigned:
		if gig.Status != valueobject.GigStatusRequested || !bid.IsRequested() ||
			(target == valueobject.GigStatusAssigned && gig.AssignedToBid != nil) {
			return apperror.InvalidRequest(fmt.Sprintf("Only requested bids can be %s", target))
		}
	case valueobject.GigStatusApproved, valueobject.GigStatusRejected:
		if !gig.Status.CanTransitionTo(target) {
			return apperror.InvalidRequest("Only completed gigs can be Approved or Rejected")
		}
	case valueobject.GigStatusInProgress:
		if !gig.Status.CanTransitionTo(target) {
			return apperror.InvalidRequest("Only assigned gigs can be moved to In-Progress")
		}
	case valueobject.GigStatusCompleted:
		if !gig.Status.CanTransitionTo(target) {
			return apperror.InvalidRequest("Only in-progress gigs can be Completed")
		}
	}
	return nil
}

func (uc *ChangeStatusUseCase) apply(
	ctx context.Context,
	gig *entity.Gig,
	bid *entity.Bid,
	target valueobject.GigStatus,
	actor entity.Actor,
	description string,
	now time.Time,
) error {
	switch target {
	case valueobject.GigStatusAssigned:
		// Порядок важен: сначала победивший отклик, затем каскад, затем гиг.
		bid.SetStatus(valueobject.BidStatusAssigned, now)
		if err := uc.bidRepo.Update(ctx, bid); err != nil {
			return err
		}
		if _, err := uc.bidRepo.UpdateStatusExcept(ctx, gig.ID, bid.ID, valueobject.BidStatusNotAssigned, now); err != nil {
			return err
		}
		gig.AssignBid(bid.ID, now)

	case valueobject.GigStatusNotAssigned:
		previous := bid.Status
		bid.SetStatus(valueobject.BidStatusNotAssigned, now)
		if err := uc.bidRepo.Update(ctx, bid); err != nil {
			return err
		}
		change := gig.RecordBidChange(bid, previous, actor, description, now)
		return uc.gigRepo.AppendStatusChange(ctx, &change)

	case valueobject.GigStatusOpen, valueobject.GigStatusRequested:
		if err := uc.releaseAssignment(ctx, gig, now); err != nil {
			return err
		}
	}

	var bidID *uuid.UUID
	if bid != nil {
		bidID = &bid.ID
	}
	change := gig.Transition(target, actor, bidID, description, now)
	if err := uc.gigRepo.Update(ctx, gig); err != nil {
		return err
	}
	return uc.gigRepo.AppendStatusChange(ctx, &change)
}

// releaseAssignment снимает назначение при административном возврате гига к приёму откликов.
func (uc *ChangeStatusUseCase) releaseAssignment(ctx context.Context, gig *entity.Gig, now time.Time) error {
	if gig.AssignedToBid == nil {
		return nil
	}

	assigned, err := uc.bidRepo.FindByID(ctx, *gig.AssignedToBid)
	if err != nil {
		return err
	}
	if assigned.Status == valueobject.BidStatusAssigned {
		assigned.SetStatus(valueobject.BidStatusNotAssigned, now)
		if err := uc.bidRepo.Update(ctx, assigned); err != nil {
			return err
		}
	}

	gig.AssignedToBid = nil
	gig.UpdatedAt = now
	return nil
}

func (uc *ChangeStatusUseCase) notify(actor entity.Actor, result ChangeStatusResult, previous, target valueobject.GigStatus) {
	payload := map[string]any{
		"gigId":          result.Gig.ID,
		"previousStatus": previous,
		"status":         target,
	}
	if result.Bid != nil {
		payload["bidId"] = result.Bid.ID
		payload["bidStatus"] = result.Bid.Status
	}

	recipients := []uuid.UUID{result.Gig.CreatedBy}
	if result.Bid != nil {
		recipients = append(recipients, result.Bid.CreatedBy)
	}
	for _, userID := range recipients {
		if userID != actor.ID {
			common.Notify(uc.notifier, userID, repository.EventGigStatusChanged, payload)
		}
	}
}
