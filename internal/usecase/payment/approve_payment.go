package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/logger"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/common"
	"github.com/sirupsen/logrus"
)

type ApprovePaymentInput struct {
	GigID      uuid.UUID
	ProviderID uuid.UUID
	ActorID    uuid.UUID
}

type ApprovePaymentResult struct {
	Transfer           *entity.Transfer
	ExternalTransferID string
	AccountID          string
}

// ApprovePaymentUseCase переводит сумму успешных платежей по гигу на аккаунт исполнителя.
type ApprovePaymentUseCase struct {
	gigRepo      repository.GigRepository
	paymentRepo  repository.PaymentLogRepository
	transferRepo repository.TransferRepository
	userRepo     repository.UserRepository
	payouts      repository.PayoutProvider
	notifier     repository.Notifier
	currency     string
	clock        common.Clock
}

func NewApprovePaymentUseCase(
	gigRepo repository.GigRepository,
	paymentRepo repository.PaymentLogRepository,
	transferRepo repository.TransferRepository,
	userRepo repository.UserRepository,
	payouts repository.PayoutProvider,
	notifier repository.Notifier,
	currency string,
	clock common.Clock,
) *ApprovePaymentUseCase {
	return &ApprovePaymentUseCase{
		gigRepo:      gigRepo,
		paymentRepo:  paymentRepo,
		transferRepo: transferRepo,
		userRepo:     userRepo,
		payouts:      payouts,
		notifier:     notifier,
		currency:     currency,
		clock:        clock,
	}
}

func (uc *ApprovePaymentUseCase) Execute(ctx context.Context, input ApprovePaymentInput) (*ApprovePaymentResult, error) {
	admin, err := common.ResolveUser(ctx, uc.userRepo, input.ActorID)
	if err != nil {
		return nil, err
	}
	if !admin.Role.IsAdmin() {
		return nil, apperror.Forbidden("Only admins can approve payments")
	}

	gig, err := uc.gigRepo.FindByID(ctx, input.GigID)
	if err != nil {
		return nil, err
	}

	logs, err := uc.paymentRepo.ListByGig(ctx, gig.ID, valueobject.PaymentStatusSuccess)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, apperror.NotFound("No successful payments found for this gig")
	}

	amount := entity.SumSuccessful(logs)
	if !amount.IsPositive() {
		return nil, apperror.InvalidRequest("Total paid amount must be greater than zero")
	}

	provider, err := uc.userRepo.FindByID(ctx, input.ProviderID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NotFound("Provider not found")
		}
		return nil, err
	}
	if !provider.HasPayoutAccount() {
		return nil, apperror.InvalidRequest("Provider has no connected payout account")
	}
	if !isPayee(logs, provider.ID) {
		return nil, apperror.InvalidRequest("Provider is not the payee of this gig's payments")
	}

	payerName := ""
	if payer, err := uc.userRepo.FindByID(ctx, gig.CreatedBy); err == nil {
		payerName = payer.DisplayName
	}

	transferID, err := uc.payouts.CreateTransfer(ctx, repository.TransferRequest{
		AmountMinor:        valueobject.ToMinorUnits(amount),
		Currency:           uc.currency,
		DestinationAccount: provider.PayoutAccountID,
		Metadata: map[string]string{
			"gig_id":      gig.ID.String(),
			"gig_title":   gig.Title,
			"payer_name":  payerName,
			"provider_id": provider.ID.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	transfer := &entity.Transfer{
		ID:                 uuid.New(),
		GigID:              gig.ID,
		ProviderID:         provider.ID,
		CreatedBy:          admin.ID,
		Amount:             amount,
		Currency:           uc.currency,
		ExternalTransferID: transferID,
		DestinationAccount: provider.PayoutAccountID,
		Status:             valueobject.TransferStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	fields := logrus.Fields{
		"gig_id":      gig.ID,
		"actor_id":    admin.ID,
		"provider_id": provider.ID,
		"transfer_id": transferID,
		"amount":      amount.StringFixed(2),
	}
	if err := uc.transferRepo.Create(ctx, transfer); err != nil {
		// Перевод у провайдера уже создан: нужна ручная сверка.
		logger.WithFields(fields).WithError(err).Error("payment: перевод создан, но не сохранён")
		return nil, err
	}
	logger.WithFields(fields).Info("payment: перевод создан")

	common.Notify(uc.notifier, provider.ID, repository.EventPayoutTransferCreated, map[string]any{
		"gigId":    gig.ID,
		"amount":   amount.StringFixed(2),
		"currency": uc.currency,
	})

	return &ApprovePaymentResult{
		Transfer:           transfer,
		ExternalTransferID: transferID,
		AccountID:          provider.PayoutAccountID,
	}, nil
}

// isPayee: исполнитель указан получателем во всех учтённых платежах.
func isPayee(logs []*entity.PaymentLog, providerID uuid.UUID) bool {
	for _, l := range logs {
		if l.ProviderID != providerID {
			return false
		}
	}
	return len(logs) > 0
}
