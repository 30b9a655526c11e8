package gig

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/logger"
	"github.com/ignatzorin/gig-marketplace/internal/quota"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/common"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type CreateGigInput struct {
	ActorID        uuid.UUID
	Title          string
	Description    string
	Tier           string
	Price          string
	TimeEstimate   string
	Keywords       []string
	Skills         []string
	Certifications []string
	Images         []string
}

type CreateGigUseCase struct {
	gigRepo  repository.GigRepository
	userRepo repository.UserRepository
	tx       repository.Transactor
	quota    quota.Checker
	clock    common.Clock
}

func NewCreateGigUseCase(
	gigRepo repository.GigRepository,
	userRepo repository.UserRepository,
	tx repository.Transactor,
	quotaChecker quota.Checker,
	clock common.Clock,
) *CreateGigUseCase {
	return &CreateGigUseCase{
		gigRepo:  gigRepo,
		userRepo: userRepo,
		tx:       tx,
		quota:    quotaChecker,
		clock:    clock,
	}
}

func (uc *CreateGigUseCase) Execute(ctx context.Context, input CreateGigInput) (*entity.Gig, error) {
	price := decimal.Zero
	if input.Price != "" {
		var err error
		if price, err = valueobject.ParseAmount("price", input.Price); err != nil {
			return nil, err
		}
	}

	user, err := common.ResolveUser(ctx, uc.userRepo, input.ActorID)
	if err != nil {
		return nil, err
	}
	if err := uc.quota.Check(ctx, user, quota.ActionPostGig); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	gig, err := entity.NewGig(user.Actor(), entity.GigDetails{
		Title:          input.Title,
		Description:    input.Description,
		Tier:           input.Tier,
		Price:          price,
		TimeEstimate:   input.TimeEstimate,
		Keywords:       input.Keywords,
		Skills:         input.Skills,
		Images:         input.Images,
		Certifications: input.Certifications,
	}, now)
	if err != nil {
		return nil, err
	}
	change := gig.InitialChange(user.Actor(), nil, "", now)

	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.gigRepo.Create(ctx, gig); err != nil {
			return err
		}
		return uc.gigRepo.AppendStatusChange(ctx, &change)
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"gig_id":   gig.ID,
		"actor_id": user.ID,
	}).Info("gig: создан")
	return gig, nil
}
