package bid

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/logger"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/common"
	"github.com/sirupsen/logrus"
)

// Vocabulary словарь статусов конкретного эндпоинта решения по отклику.
type Vocabulary struct {
	name   string
	accept string
	reject string
	// accepted статус, который сохраняется для принятого отклика.
	accepted valueobject.BidStatus
}

var (
	// DecisionVocabulary PUT /bids/:id/decision: Accepted|Rejected.
	DecisionVocabulary = Vocabulary{name: "decision", accept: "Accepted", reject: "Rejected", accepted: valueobject.BidStatusAccepted}
	// ReviewVocabulary PUT /bids/:id/review: approved|rejected.
	ReviewVocabulary = Vocabulary{name: "review", accept: "approved", reject: "rejected", accepted: valueobject.BidStatusApproved}
)

// parse возвращает сохраняемый статус и признак принятия.
func (v Vocabulary) parse(status string) (valueobject.BidStatus, bool, error) {
	switch status {
	case v.accept:
		return v.accepted, true, nil
	case v.reject:
		return valueobject.BidStatusRejected, false, nil
	}
	return "", false, apperror.InvalidRequest(fmt.Sprintf("Status must be %s or %s", v.accept, v.reject))
}

type UpdateBidStatusInput struct {
	BidID   uuid.UUID
	ActorID uuid.UUID
	Status  string
}

type UpdateBidStatusResult struct {
	Bid *entity.Bid
	Gig *entity.Gig
}

// UpdateBidStatusUseCase решение создателя гига по отклику: принятие переводит гиг в работу,
// остальные отклики отклоняются.
type UpdateBidStatusUseCase struct {
	vocabulary Vocabulary
	gigRepo    repository.GigRepository
	bidRepo    repository.BidRepository
	userRepo   repository.UserRepository
	tx         repository.Transactor
	notifier   repository.Notifier
	clock      common.Clock
}

func NewUpdateBidStatusUseCase(
	vocabulary Vocabulary,
	gigRepo repository.GigRepository,
	bidRepo repository.BidRepository,
	userRepo repository.UserRepository,
	tx repository.Transactor,
	notifier repository.Notifier,
	clock common.Clock,
) *UpdateBidStatusUseCase {
	return &UpdateBidStatusUseCase{
		vocabulary: vocabulary,
		gigRepo:    gigRepo,
		bidRepo:    bidRepo,
		userRepo:   userRepo,
		tx:         tx,
		notifier:   notifier,
		clock:      clock,
	}
}

func (uc *UpdateBidStatusUseCase) Execute(ctx context.Context, input UpdateBidStatusInput) (*UpdateBidStatusResult, error) {
	status, accept, err := uc.vocabulary.parse(input.Status)
	if err != nil {
		return nil, err
	}

	user, err := common.ResolveUser(ctx, uc.userRepo, input.ActorID)
	if err != nil {
		return nil, err
	}
	actor := user.Actor()

	var (
		result   UpdateBidStatusResult
		rejected int
	)
	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		bid, err := uc.bidRepo.FindByID(ctx, input.BidID)
		if err != nil {
			return err
		}
		gig, err := uc.gigRepo.FindByIDForUpdate(ctx, bid.GigID)
		if err != nil {
			return err
		}

		if !actor.IsAdmin() {
			if bid.IsOwnedBy(actor.ID) {
				return apperror.Forbidden("You cannot decide on your own bid")
			}
			if !gig.IsOwnedBy(actor.ID) {
				return apperror.Forbidden("Only the gig creator can decide on bids")
			}
		}
		if !bid.IsRequested() {
			return apperror.InvalidRequest(fmt.Sprintf("Only requested bids can be %s", status))
		}

		now := uc.clock.Now()
		if !accept {
			bid.SetStatus(status, now)
			if err := uc.bidRepo.Update(ctx, bid); err != nil {
				return err
			}
			result = UpdateBidStatusResult{Bid: bid, Gig: gig}
			return nil
		}

		if !gig.Status.AcceptsBids() || gig.AssignedToBid != nil {
			return apperror.InvalidRequest("Gig is no longer accepting bids")
		}

		bid.SetStatus(status, now)
		if err := uc.bidRepo.Update(ctx, bid); err != nil {
			return err
		}
		if rejected, err = uc.bidRepo.UpdateStatusExcept(ctx, gig.ID, bid.ID, valueobject.BidStatusRejected, now); err != nil {
			return err
		}

		// assignedToBid ссылается только на Assigned отклик.
		change := gig.Transition(valueobject.GigStatusInProgress, actor, &bid.ID, "Bid "+string(status), now)
		if err := uc.gigRepo.Update(ctx, gig); err != nil {
			return err
		}
		if err := uc.gigRepo.AppendStatusChange(ctx, &change); err != nil {
			return err
		}

		result = UpdateBidStatusResult{Bid: bid, Gig: gig}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"gig_id":     result.Gig.ID,
		"bid_id":     result.Bid.ID,
		"actor_id":   actor.ID,
		"to":         result.Bid.Status,
		"vocabulary": uc.vocabulary.name,
		"rejected":   rejected,
	}).Info("bid: решение по отклику")

	common.Notify(uc.notifier, result.Bid.CreatedBy, repository.EventBidStatusChanged, map[string]any{
		"gigId":     result.Gig.ID,
		"bidId":     result.Bid.ID,
		"status":    result.Bid.Status,
		"gigStatus": result.Gig.Status,
	})
	return &result, nil
}
