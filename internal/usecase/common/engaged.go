package common

import (
	"context"

	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
)

// EngagedBid отклик, с которым гиг в работе: назначенный через assignedToBid
// или принятый создателем гига. nil, если такого нет.
func EngagedBid(ctx context.Context, bids repository.BidRepository, gig *entity.Gig) (*entity.Bid, error) {
	if gig.AssignedToBid != nil {
		return bids.FindByID(ctx, *gig.AssignedToBid)
	}

	all, err := bids.FindByGigID(ctx, gig.ID)
	if err != nil {
		return nil, err
	}
	for _, b := range all {
		if b.IsAccepted() {
			return b, nil
		}
	}
	return nil, nil
}
