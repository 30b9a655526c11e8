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

// HandleWebhookUseCase применяет события платёжного провайдера к ledger.
// Повторная доставка события не меняет состояние.
type HandleWebhookUseCase struct {
	paymentRepo  repository.PaymentLogRepository
	transferRepo repository.TransferRepository
	userRepo     repository.UserRepository
	payouts      repository.PayoutProvider
	clock        common.Clock
}

func NewHandleWebhookUseCase(
	paymentRepo repository.PaymentLogRepository,
	transferRepo repository.TransferRepository,
	userRepo repository.UserRepository,
	payouts repository.PayoutProvider,
	clock common.Clock,
) *HandleWebhookUseCase {
	return &HandleWebhookUseCase{
		paymentRepo:  paymentRepo,
		transferRepo: transferRepo,
		userRepo:     userRepo,
		payouts:      payouts,
		clock:        clock,
	}
}

func (uc *HandleWebhookUseCase) Execute(ctx context.Context, payload []byte, signature string) error {
	event, err := uc.payouts.ParseEvent(payload, signature)
	if err != nil {
		return err
	}
	return uc.Apply(ctx, event)
}

func (uc *HandleWebhookUseCase) Apply(ctx context.Context, event *repository.PayoutEvent) error {
	log := logger.WithFields(logrus.Fields{"event_id": event.ID, "event_type": event.Type})

	switch event.Type {
	case repository.EventPaymentSucceeded:
		return uc.recordPayment(ctx, event, valueobject.PaymentStatusSuccess, log)
	case repository.EventPaymentFailed:
		return uc.recordPayment(ctx, event, valueobject.PaymentStatusFail, log)
	case repository.EventAccountUpdated:
		return uc.syncAccount(ctx, event, log)
	case repository.EventTransferCreated:
		return uc.syncTransfer(ctx, event, valueobject.TransferStatusSuccess, log)
	case repository.EventTransferReversed:
		return uc.syncTransfer(ctx, event, valueobject.TransferStatusFailed, log)
	default:
		log.Debug("payment: событие пропущено")
		return nil
	}
}

func (uc *HandleWebhookUseCase) recordPayment(ctx context.Context, event *repository.PayoutEvent, status valueobject.PaymentStatus, log *logrus.Entry) error {
	if event.PaymentIntentID == "" {
		return apperror.InvalidRequest("Payment event has no payment intent")
	}

	existing, err := uc.paymentRepo.FindByIntentID(ctx, event.PaymentIntentID)
	if err != nil {
		return err
	}
	if existing != nil {
		log.WithField("intent_id", event.PaymentIntentID).Debug("payment: платёж уже учтён")
		return nil
	}

	gigID, errGig := uuid.Parse(event.Metadata[MetaGigID])
	payerID, errPayer := uuid.Parse(event.Metadata[MetaPayerID])
	providerID, errProvider := uuid.Parse(event.Metadata[MetaProviderID])
	if errGig != nil || errPayer != nil || errProvider != nil {
		// Платёж создан не через маркетплейс: повторы доставки ничего не изменят.
		log.WithField("intent_id", event.PaymentIntentID).Warn("payment: в metadata нет ссылок на гиг")
		return nil
	}

	paymentLog := &entity.PaymentLog{
		ID:              uuid.New(),
		GigID:           gigID,
		CreatedBy:       payerID,
		ProviderID:      providerID,
		Amount:          event.Amount(),
		Status:          status,
		PaymentIntentID: event.PaymentIntentID,
		CreatedAt:       uc.clock.Now(),
	}
	if err := uc.paymentRepo.Create(ctx, paymentLog); err != nil {
		if apperror.CodeOf(err) == apperror.ErrCodeConflict {
			return nil
		}
		return err
	}

	log.WithFields(logrus.Fields{
		"gig_id":    gigID,
		"intent_id": event.PaymentIntentID,
		"status":    status,
		"amount":    paymentLog.Amount.StringFixed(2),
	}).Info("payment: платёж записан")
	return nil
}

func (uc *HandleWebhookUseCase) syncAccount(ctx context.Context, event *repository.PayoutEvent, log *logrus.Entry) error {
	user, err := uc.userRepo.FindByPayoutAccountID(ctx, event.AccountID)
	if err != nil {
		if apperror.IsNotFound(err) {
			log.WithField("account_id", event.AccountID).Warn("payment: аккаунт выплат не привязан к пользователю")
			return nil
		}
		return err
	}

	status := valueobject.ClassifyPayoutAccount(event.DetailsSubmitted, event.CurrentlyDue, event.ChargesEnabled, event.PayoutsEnabled)
	if user.PayoutAccountStatus == status {
		return nil
	}

	user.AttachPayoutAccount(event.AccountID, status, uc.clock.Now())
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{"actor_id": user.ID, "status": status}).Info("payment: статус аккаунта выплат обновлён")
	return nil
}

func (uc *HandleWebhookUseCase) syncTransfer(ctx context.Context, event *repository.PayoutEvent, status valueobject.TransferStatus, log *logrus.Entry) error {
	transfer, err := uc.transferRepo.UpdateStatusByExternalID(ctx, event.TransferID, status)
	if err != nil {
		if apperror.IsNotFound(err) {
			log.WithField("transfer_id", event.TransferID).Warn("payment: неизвестный перевод")
			return nil
		}
		return err
	}

	log.WithFields(logrus.Fields{
		"gig_id":      transfer.GigID,
		"transfer_id": event.TransferID,
		"status":      status,
	}).Info("payment: статус перевода обновлён")
	return nil
}
