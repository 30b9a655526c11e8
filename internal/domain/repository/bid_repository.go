package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
)

type BidRepository interface {
	Create(ctx context.Context, bid *entity.Bid) error
	Update(ctx context.Context, bid *entity.Bid) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Bid, error)
	FindByGigID(ctx context.Context, gigID uuid.UUID) ([]*entity.Bid, error)
	FindByCreator(ctx context.Context, userID uuid.UUID) ([]*entity.Bid, error)
	// UpdateStatusExcept переводит все отклики гига, кроме exceptID, в status.
	UpdateStatusExcept(ctx context.Context, gigID, exceptID uuid.UUID, status valueobject.BidStatus, at time.Time) (int, error)
	CountCreatedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
}
