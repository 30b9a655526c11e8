package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/logger"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/common"
	"github.com/sirupsen/logrus"
)

// Ключи metadata, по которым вебхук восстанавливает PaymentLog.
const (
	MetaGigID      = "gig_id"
	MetaPayerID    = "payer_id"
	MetaProviderID = "provider_id"
)

type CreatePaymentIntentInput struct {
	GigID   uuid.UUID
	PayerID uuid.UUID
	Amount  string
}

type CreatePaymentIntentUseCase struct {
	gigRepo  repository.GigRepository
	bidRepo  repository.BidRepository
	userRepo repository.UserRepository
	payouts  repository.PayoutProvider
	currency string
}

func NewCreatePaymentIntentUseCase(
	gigRepo repository.GigRepository,
	bidRepo repository.BidRepository,
	userRepo repository.UserRepository,
	payouts repository.PayoutProvider,
	currency string,
) *CreatePaymentIntentUseCase {
	return &CreatePaymentIntentUseCase{
		gigRepo:  gigRepo,
		bidRepo:  bidRepo,
		userRepo: userRepo,
		payouts:  payouts,
		currency: currency,
	}
}

// Execute создаёт платёж клиента по гигу в пользу назначенного исполнителя.
func (uc *CreatePaymentIntentUseCase) Execute(ctx context.Context, input CreatePaymentIntentInput) (*repository.PaymentIntent, error) {
	amount, err := valueobject.ParseAmount("amount", input.Amount)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, apperror.InvalidRequest("amount must be greater than zero")
	}

	payer, err := common.ResolveUser(ctx, uc.userRepo, input.PayerID)
	if err != nil {
		return nil, err
	}

	gig, err := uc.gigRepo.FindByID(ctx, input.GigID)
	if err != nil {
		return nil, err
	}
	if !gig.IsOwnedBy(payer.ID) {
		return nil, apperror.Forbidden("Only the gig creator can pay for the gig")
	}
	bid, err := common.EngagedBid(ctx, uc.bidRepo, gig)
	if err != nil {
		return nil, err
	}
	if bid == nil {
		return nil, apperror.InvalidRequest("Gig has no assigned provider")
	}

	intent, err := uc.payouts.CreatePaymentIntent(ctx, repository.PaymentIntentRequest{
		AmountMinor: valueobject.ToMinorUnits(amount),
		Currency:    uc.currency,
		Metadata: map[string]string{
			MetaGigID:      gig.ID.String(),
			MetaPayerID:    payer.ID.String(),
			MetaProviderID: bid.CreatedBy.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"gig_id":    gig.ID,
		"actor_id":  payer.ID,
		"intent_id": intent.ID,
	}).Info("payment: создан платёж")
	return intent, nil
}
