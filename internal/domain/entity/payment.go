package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentLog одна попытка оплаты по гигу. Только добавляется.
type PaymentLog struct {
	ID              uuid.UUID
	GigID           uuid.UUID
	CreatedBy       uuid.UUID
	ProviderID      uuid.UUID
	Amount          decimal.Decimal
	Status          valueobject.PaymentStatus
	PaymentIntentID string
	CreatedAt       time.Time
}

type Transfer struct {
	ID                 uuid.UUID
	GigID              uuid.UUID
	ProviderID         uuid.UUID
	CreatedBy          uuid.UUID
	Amount             decimal.Decimal
	Currency           string
	ExternalTransferID string
	DestinationAccount string
	Status             valueobject.TransferStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SumSuccessful складывает только успешные платежи.
func SumSuccessful(logs []*PaymentLog) decimal.Decimal {
	total := decimal.Zero
	for _, l := range logs {
		if l.Status == valueobject.PaymentStatusSuccess {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// PaymentEntry отдельный платёж внутри группы истории.
type PaymentEntry struct {
	ID        uuid.UUID
	Amount    decimal.Decimal
	Status    valueobject.PaymentStatus
	CreatedAt time.Time
}

// ProviderProfile публичный профиль исполнителя по назначенному отклику.
type ProviderProfile struct {
	ID          uuid.UUID
	DisplayName string
	Email       string
}

// PaymentHistoryGroup платежи плательщика, сгруппированные по гигу.
type PaymentHistoryGroup struct {
	GigID     uuid.UUID
	GigTitle  string
	GigStatus valueobject.GigStatus
	Provider  *ProviderProfile
	Payments  []PaymentEntry
	TotalPaid decimal.Decimal
	LastPaid  time.Time
}
