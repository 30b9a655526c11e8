package bid

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/logger"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/gig-marketplace/internal/quota"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/common"
	"github.com/sirupsen/logrus"
)

var (
	errSelfBid    = apperror.Forbidden("You cannot bid on your own gig")
	errGigNotOpen = apperror.Forbidden("Gig is not open for bids")
)

type PlaceBidInput struct {
	GigID         uuid.UUID
	BidderID      uuid.UUID
	BidAmount     string
	BidAmountType string
	Description   string
}

type PlaceBidUseCase struct {
	gigRepo  repository.GigRepository
	bidRepo  repository.BidRepository
	userRepo repository.UserRepository
	tx       repository.Transactor
	quota    quota.Checker
	notifier repository.Notifier
	clock    common.Clock
}

func NewPlaceBidUseCase(
	gigRepo repository.GigRepository,
	bidRepo repository.BidRepository,
	userRepo repository.UserRepository,
	tx repository.Transactor,
	quotaChecker quota.Checker,
	notifier repository.Notifier,
	clock common.Clock,
) *PlaceBidUseCase {
	return &PlaceBidUseCase{
		gigRepo:  gigRepo,
		bidRepo:  bidRepo,
		userRepo: userRepo,
		tx:       tx,
		quota:    quotaChecker,
		notifier: notifier,
		clock:    clock,
	}
}

func (uc *PlaceBidUseCase) Execute(ctx context.Context, input PlaceBidInput) (*entity.Bid, error) {
	amount, err := valueobject.ParseAmount("bidAmount", input.BidAmount)
	if err != nil {
		return nil, err
	}

	user, err := common.ResolveUser(ctx, uc.userRepo, input.BidderID)
	if err != nil {
		return nil, err
	}
	bidder := user.Actor()

	gig, err := uc.gigRepo.FindByID(ctx, input.GigID)
	if err != nil {
		return nil, err
	}

	// Лимит откликов действует и для запросов на предложения исполнителей;
	// лимит гигов клиента проверяется отдельно при принятии запроса.
	if err := uc.quota.Check(ctx, user, quota.ActionPlaceBid); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	bid, err := entity.NewBid(input.GigID, bidder.ID, amount, input.BidAmountType, input.Description, now)
	if err != nil {
		return nil, err
	}

	var previous valueobject.GigStatus
	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		gig, err = uc.gigRepo.FindByIDForUpdate(ctx, input.GigID)
		if err != nil {
			return err
		}
		if gig.IsOwnedBy(bidder.ID) {
			return errSelfBid
		}
		if !gig.Status.AcceptsBids() {
			return errGigNotOpen
		}
		previous = gig.Status

		if err := uc.bidRepo.Create(ctx, bid); err != nil {
			return err
		}

		// Первый отклик переводит гиг в Requested без ролевых проверок движка статусов.
		if gig.Status == valueobject.GigStatusOpen {
			change := gig.Transition(valueobject.GigStatusRequested, bidder, &bid.ID, "First bid placed", now)
			if err := uc.gigRepo.Update(ctx, gig); err != nil {
				return err
			}
			if err := uc.gigRepo.AppendStatusChange(ctx, &change); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"gig_id":   gig.ID,
		"bid_id":   bid.ID,
		"actor_id": bidder.ID,
		"from":     previous,
		"to":       gig.Status,
	}).Info("bid: отклик создан")

	common.Notify(uc.notifier, gig.CreatedBy, repository.EventBidPlaced, map[string]any{
		"gigId":     gig.ID,
		"bidId":     bid.ID,
		"bidAmount": bid.BidAmount.StringFixed(2),
	})
	return bid, nil
}
