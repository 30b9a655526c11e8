package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByPayoutAccountID(ctx context.Context, accountID string) (*entity.User, error)
}
