package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
)

// GigRepository хранилище гигов и журнала переходов.
// FindByID/FindByIDForUpdate возвращают apperror.ErrGigNotFound, если гига нет.
type GigRepository interface {
	Create(ctx context.Context, gig *entity.Gig) error
	Update(ctx context.Context, gig *entity.Gig) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Gig, error)
	// FindByIDForUpdate блокирует строку гига до конца текущей транзакции.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Gig, error)
	List(ctx context.Context, filter GigFilter) ([]*entity.Gig, int, error)
	AppendStatusChange(ctx context.Context, change *entity.StatusChange) error
	ListStatusHistory(ctx context.Context, gigID uuid.UUID) ([]entity.StatusChange, error)
	CountCreatedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
}

type GigFilter struct {
	CreatedBy     *uuid.UUID
	Statuses      []valueobject.GigStatus
	CreatedByRole valueobject.Role
	OnlyPublic    bool
	Search        string
	Skill         string
	Limit         int
	Offset        int
}
