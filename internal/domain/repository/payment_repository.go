package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
)

type PaymentLogRepository interface {
	Create(ctx context.Context, log *entity.PaymentLog) error
	// FindByIntentID возвращает nil, nil если запись не найдена.
	FindByIntentID(ctx context.Context, intentID string) (*entity.PaymentLog, error)
	// ListByGig при пустом status возвращает все записи гига.
	ListByGig(ctx context.Context, gigID uuid.UUID, status valueobject.PaymentStatus) ([]*entity.PaymentLog, error)
	AggregateByPayer(ctx context.Context, filter PaymentHistoryFilter) ([]*entity.PaymentHistoryGroup, int, error)
}

// PaymentHistoryFilter фильтр группировки платежей по гигам.
type PaymentHistoryFilter struct {
	PayerID  uuid.UUID
	Statuses []valueobject.GigStatus
	Limit    int
	Offset   int
}

type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	// UpdateStatusByExternalID возвращает apperror.ErrTransferNotFound для неизвестного id.
	UpdateStatusByExternalID(ctx context.Context, externalID string, status valueobject.TransferStatus) (*entity.Transfer, error)
	ListByGig(ctx context.Context, gigID uuid.UUID) ([]*entity.Transfer, error)
}
