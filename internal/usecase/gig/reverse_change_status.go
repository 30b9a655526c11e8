package gig

import (
	"context"
	"fmt"
	"strings"
	"time"

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

type ReverseChangeStatusInput struct {
	ProviderGigID uuid.UUID
	BidID         uuid.UUID
	ClientID      uuid.UUID
	ActorID       uuid.UUID
	TargetStatus  string
}

type ReverseChangeStatusResult struct {
	Bid       *entity.Bid
	ClientGig *entity.Gig
	MirrorBid *entity.Bid
	Message   string
}

// ReverseChangeStatusUseCase ответ исполнителя на запрос клиента по его предложению.
// При принятии создаётся зеркальная пара: гиг клиента и назначенный отклик исполнителя.
type ReverseChangeStatusUseCase struct {
	gigRepo  repository.GigRepository
	bidRepo  repository.BidRepository
	userRepo repository.UserRepository
	tx       repository.Transactor
	quota    quota.Checker
	notifier repository.Notifier
	clock    common.Clock
}

func NewReverseChangeStatusUseCase(
	gigRepo repository.GigRepository,
	bidRepo repository.BidRepository,
	userRepo repository.UserRepository,
	tx repository.Transactor,
	quotaChecker quota.Checker,
	notifier repository.Notifier,
	clock common.Clock,
) *ReverseChangeStatusUseCase {
	return &ReverseChangeStatusUseCase{
		gigRepo:  gigRepo,
		bidRepo:  bidRepo,
		userRepo: userRepo,
		tx:       tx,
		quota:    quotaChecker,
		notifier: notifier,
		clock:    clock,
	}
}

func (uc *ReverseChangeStatusUseCase) Execute(ctx context.Context, input ReverseChangeStatusInput) (*ReverseChangeStatusResult, error) {
	target, err := valueobject.NewGigStatus(input.TargetStatus)
	if err != nil {
		return nil, err
	}
	switch target {
	case valueobject.GigStatusAssigned, valueobject.GigStatusNotAssigned, valueobject.GigStatusRejected:
	default:
		return nil, apperror.InvalidRequest("Status must be Assigned, Not-Assigned or Rejected")
	}

	user, err := common.ResolveUser(ctx, uc.userRepo, input.ActorID)
	if err != nil {
		return nil, err
	}
	actor := user.Actor()

	var result ReverseChangeStatusResult
	var client *entity.User
	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		offering, err := uc.gigRepo.FindByIDForUpdate(ctx, input.ProviderGigID)
		if err != nil {
			return err
		}
		if !offering.IsProviderOffering() {
			return apperror.InvalidRequest("Gig is not a provider offering")
		}
		if !actor.IsAdmin() && !offering.IsOwnedBy(actor.ID) {
			return apperror.Forbidden("Only the offering owner can respond to requests")
		}

		bid, err := uc.bidRepo.FindByID(ctx, input.BidID)
		if err != nil {
			return err
		}
		if !bid.BelongsTo(offering.ID) {
			return apperror.ErrBidNotFound
		}

		client, err = uc.userRepo.FindByID(ctx, input.ClientID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NotFound("Client not found")
			}
			return err
		}
		if !bid.IsOwnedBy(client.ID) {
			return apperror.InvalidRequest("Bid was not placed by this client")
		}
		if !bid.IsRequested() {
			return apperror.InvalidRequest(fmt.Sprintf("Only requested bids can be %s", target))
		}

		now := uc.clock.Now()
		if target != valueobject.GigStatusAssigned {
			previous := bid.Status
			bid.SetStatus(valueobject.BidStatus(target), now)
			if err := uc.bidRepo.Update(ctx, bid); err != nil {
				return err
			}
			change := offering.RecordBidChange(bid, previous, actor, "Request declined", now)
			if err := uc.gigRepo.AppendStatusChange(ctx, &change); err != nil {
				return err
			}
			result = ReverseChangeStatusResult{
				Bid:     bid,
				Message: fmt.Sprintf("Request from %s declined", client.DisplayName),
			}
			return nil
		}

		if offering.AssignedToBid != nil {
			return apperror.InvalidRequest("This offering already has an assigned request")
		}
		if err := uc.quota.Check(ctx, client, quota.ActionPostGig); err != nil {
			if apperror.IsForbidden(err) {
				return apperror.Forbidden(fmt.Sprintf("%s cannot accept this offer: %s", client.DisplayName, apperror.MessageOf(err)))
			}
			return err
		}

		clientGig, mirror, err := uc.mirror(ctx, offering, bid, client, actor, now)
		if err != nil {
			return err
		}

		previous := bid.Status
		bid.SetStatus(valueobject.BidStatusAssigned, now)
		bid.LinkOtherGig(clientGig.ID, now)
		if err := uc.bidRepo.Update(ctx, bid); err != nil {
			return err
		}
		offering.AssignBid(bid.ID, now)
		if err := uc.gigRepo.Update(ctx, offering); err != nil {
			return err
		}
		change := offering.RecordBidChange(bid, previous, actor, "Request accepted", now)
		if err := uc.gigRepo.AppendStatusChange(ctx, &change); err != nil {
			return err
		}

		result = ReverseChangeStatusResult{
			Bid:       bid,
			ClientGig: clientGig,
			MirrorBid: mirror,
			Message:   fmt.Sprintf("Gig assigned to %s", client.DisplayName),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{
		"gig_id":   input.ProviderGigID,
		"bid_id":   result.Bid.ID,
		"actor_id": actor.ID,
		"to":       target,
	}
	if result.ClientGig != nil {
		fields["client_gig_id"] = result.ClientGig.ID
	}
	logger.WithFields(fields).Info("gig: ответ на запрос по предложению")

	payload := map[string]any{
		"gigId":  input.ProviderGigID,
		"bidId":  result.Bid.ID,
		"status": result.Bid.Status,
	}
	if result.ClientGig != nil {
		payload["clientGigId"] = result.ClientGig.ID
	}
	common.Notify(uc.notifier, client.ID, repository.EventGigReverseAssigned, payload)

	return &result, nil
}

// mirror создаёт приватный гиг клиента и назначенный на него отклик исполнителя.
func (uc *ReverseChangeStatusUseCase) mirror(
	ctx context.Context,
	offering *entity.Gig,
	bid *entity.Bid,
	client *entity.User,
	actor entity.Actor,
	now time.Time,
) (*entity.Gig, *entity.Bid, error) {
	details := offering.Details()
	details.Description = compositeDescription(offering.Description, bid.Description)
	details.Price = bid.BidAmount

	clientGig, err := entity.NewGig(client.Actor(), details, now)
	if err != nil {
		return nil, nil, err
	}
	clientGig.CreatedByRole = valueobject.RoleUser
	clientGig.IsPublic = false
	clientGig.Status = valueobject.GigStatusAssigned
	if err := uc.gigRepo.Create(ctx, clientGig); err != nil {
		return nil, nil, err
	}

	mirror, err := entity.NewBid(clientGig.ID, offering.CreatedBy, bid.BidAmount, bid.BidAmountType, bid.Description, now)
	if err != nil {
		return nil, nil, err
	}
	mirror.Status = valueobject.BidStatusAssigned
	mirror.LinkOtherGig(offering.ID, now)
	if err := uc.bidRepo.Create(ctx, mirror); err != nil {
		return nil, nil, err
	}

	clientGig.AssignBid(mirror.ID, now)
	if err := uc.gigRepo.Update(ctx, clientGig); err != nil {
		return nil, nil, err
	}

	change := clientGig.InitialChange(actor, &mirror.ID, "Created from offering "+offering.Title, now)
	if err := uc.gigRepo.AppendStatusChange(ctx, &change); err != nil {
		return nil, nil, err
	}
	return clientGig, mirror, nil
}

func compositeDescription(offer, request string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(offer))
	if request = strings.TrimSpace(request); request != "" {
		b.WriteString("\n\nClient request:\n")
		b.WriteString(request)
	}
	return b.String()
}
