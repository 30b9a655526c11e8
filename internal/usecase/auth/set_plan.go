package auth

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

// SetPlanUseCase смена тарифного плана пользователя администратором.
type SetPlanUseCase struct {
	userRepo repository.UserRepository
	clock    common.Clock
}

func NewSetPlanUseCase(userRepo repository.UserRepository, clock common.Clock) *SetPlanUseCase {
	return &SetPlanUseCase{userRepo: userRepo, clock: clock}
}

// Execute меняет план. actorID равный uuid.Nil означает вызов из CLI.
func (uc *SetPlanUseCase) Execute(ctx context.Context, actorID, userID uuid.UUID, plan string) (*entity.User, error) {
	tier, err := valueobject.NewPlanTier(plan)
	if err != nil {
		return nil, err
	}

	if actorID != uuid.Nil {
		actor, err := common.ResolveUser(ctx, uc.userRepo, actorID)
		if err != nil {
			return nil, err
		}
		if !actor.Role.IsAdmin() {
			return nil, apperror.Forbidden("Only admins can change plans")
		}
	}

	user, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	previous := user.Plan
	user.SetPlan(tier, uc.clock.Now())
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"actor_id": actorID,
		"from":     previous,
		"to":       tier,
	}).Info("auth: план изменён")
	return user, nil
}
