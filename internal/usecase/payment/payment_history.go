package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
)

// Фильтры истории платежей по стадии гига.
const (
	HistoryFilterAll        = ""
	HistoryFilterInProgress = "in-progress"
	HistoryFilterCompleted  = "completed"
)

const (
	defaultHistoryPageSize = 10
	maxHistoryPageSize     = 100
)

type PaymentHistoryInput struct {
	PayerID  uuid.UUID
	Page     int
	PageSize int
	Filter   string
}

type PaymentHistoryResult struct {
	Groups     []*entity.PaymentHistoryGroup
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

type PaymentHistoryUseCase struct {
	paymentRepo repository.PaymentLogRepository
}

func NewPaymentHistoryUseCase(paymentRepo repository.PaymentLogRepository) *PaymentHistoryUseCase {
	return &PaymentHistoryUseCase{paymentRepo: paymentRepo}
}

func (uc *PaymentHistoryUseCase) Execute(ctx context.Context, input PaymentHistoryInput) (*PaymentHistoryResult, error) {
	var statuses []valueobject.GigStatus
	switch input.Filter {
	case HistoryFilterAll:
	case HistoryFilterInProgress:
		statuses = valueobject.InProgressBucket
	case HistoryFilterCompleted:
		statuses = valueobject.CompletedBucket
	default:
		return nil, apperror.InvalidRequest("Filter must be in-progress or completed")
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	size := input.PageSize
	if size < 1 {
		size = defaultHistoryPageSize
	}
	if size > maxHistoryPageSize {
		size = maxHistoryPageSize
	}

	groups, total, err := uc.paymentRepo.AggregateByPayer(ctx, repository.PaymentHistoryFilter{
		PayerID:  input.PayerID,
		Statuses: statuses,
		Limit:    size,
		Offset:   (page - 1) * size,
	})
	if err != nil {
		return nil, err
	}

	return &PaymentHistoryResult{
		Groups:     groups,
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: (total + size - 1) / size,
	}, nil
}
