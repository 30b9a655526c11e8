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

type PayoutAccountResult struct {
	AccountID     string
	Status        valueobject.PayoutAccountStatus
	OnboardingURL string
}

// ConnectPayoutAccountUseCase создаёт подключённый аккаунт исполнителя (однократно)
// и выдаёт ссылку на онбординг.
type ConnectPayoutAccountUseCase struct {
	userRepo repository.UserRepository
	payouts  repository.PayoutProvider
	clock    common.Clock
}

func NewConnectPayoutAccountUseCase(userRepo repository.UserRepository, payouts repository.PayoutProvider, clock common.Clock) *ConnectPayoutAccountUseCase {
	return &ConnectPayoutAccountUseCase{userRepo: userRepo, payouts: payouts, clock: clock}
}

func (uc *ConnectPayoutAccountUseCase) Execute(ctx context.Context, actorID uuid.UUID) (*PayoutAccountResult, error) {
	user, err := common.ResolveUser(ctx, uc.userRepo, actorID)
	if err != nil {
		return nil, err
	}
	if user.Role != valueobject.RoleProvider {
		return nil, apperror.Forbidden("Only providers can connect payout accounts")
	}

	if !user.HasPayoutAccount() {
		accountID, err := uc.payouts.CreateConnectedAccount(ctx, user.Email)
		if err != nil {
			return nil, err
		}
		user.AttachPayoutAccount(accountID, valueobject.PayoutAccountNeedsOnboarding, uc.clock.Now())
		if err := uc.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{"actor_id": user.ID, "account_id": accountID}).Info("payment: создан аккаунт выплат")
	}

	result := &PayoutAccountResult{AccountID: user.PayoutAccountID, Status: user.PayoutAccountStatus}
	if user.PayoutAccountStatus == valueobject.PayoutAccountActive {
		return result, nil
	}

	url, err := uc.payouts.CreateAccountOnboardingLink(ctx, user.PayoutAccountID)
	if err != nil {
		return nil, err
	}
	result.OnboardingURL = url
	return result, nil
}
