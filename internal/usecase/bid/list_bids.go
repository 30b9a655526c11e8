package bid

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/common"
)

type ListBidsUseCase struct {
	gigRepo  repository.GigRepository
	bidRepo  repository.BidRepository
	userRepo repository.UserRepository
}

func NewListBidsUseCase(gigRepo repository.GigRepository, bidRepo repository.BidRepository, userRepo repository.UserRepository) *ListBidsUseCase {
	return &ListBidsUseCase{gigRepo: gigRepo, bidRepo: bidRepo, userRepo: userRepo}
}

// ForGig: создатель гига и администратор видят все отклики, остальные только свои.
func (uc *ListBidsUseCase) ForGig(ctx context.Context, gigID, actorID uuid.UUID) ([]*entity.Bid, error) {
	user, err := common.ResolveUser(ctx, uc.userRepo, actorID)
	if err != nil {
		return nil, err
	}

	gig, err := uc.gigRepo.FindByID(ctx, gigID)
	if err != nil {
		return nil, err
	}

	bids, err := uc.bidRepo.FindByGigID(ctx, gig.ID)
	if err != nil {
		return nil, err
	}
	if user.Role.IsAdmin() || gig.IsOwnedBy(user.ID) {
		return bids, nil
	}

	own := make([]*entity.Bid, 0, 1)
	for _, b := range bids {
		if b.IsOwnedBy(user.ID) {
			own = append(own, b)
		}
	}
	return own, nil
}

func (uc *ListBidsUseCase) Mine(ctx context.Context, actorID uuid.UUID) ([]*entity.Bid, error) {
	user, err := common.ResolveUser(ctx, uc.userRepo, actorID)
	if err != nil {
		return nil, err
	}
	return uc.bidRepo.FindByCreator(ctx, user.ID)
}
