package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/shopspring/decimal"
)

const DefaultBidAmountType = "Fixed"

type Bid struct {
	ID                 uuid.UUID
	GigID              uuid.UUID
	CreatedBy          uuid.UUID
	BidAmount          decimal.Decimal
	BidAmountType      string
	Description        string
	Status             valueobject.BidStatus
	AssociatedOtherGig *uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func NewBid(gigID, bidderID uuid.UUID, amount decimal.Decimal, amountType, description string, now time.Time) (*Bid, error) {
	if amount.IsNegative() {
		return nil, apperror.InvalidRequest("Bid amount must not be negative")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperror.InvalidRequest("Description is required")
	}
	if strings.TrimSpace(amountType) == "" {
		amountType = DefaultBidAmountType
	}

	return &Bid{
		ID:            uuid.New(),
		GigID:         gigID,
		CreatedBy:     bidderID,
		BidAmount:     amount,
		BidAmountType: amountType,
		Description:   description,
		Status:        valueobject.BidStatusRequested,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (b *Bid) SetStatus(status valueobject.BidStatus, now time.Time) {
	b.Status = status
	b.UpdatedAt = now
}

func (b *Bid) LinkOtherGig(gigID uuid.UUID, now time.Time) {
	id := gigID
	b.AssociatedOtherGig = &id
	b.UpdatedAt = now
}

func (b *Bid) IsOwnedBy(userID uuid.UUID) bool {
	return b.CreatedBy == userID
}

func (b *Bid) BelongsTo(gigID uuid.UUID) bool {
	return b.GigID == gigID
}

func (b *Bid) IsRequested() bool {
	return b.Status == valueobject.BidStatusRequested
}

func (b *Bid) IsAccepted() bool {
	return b.Status.IsAccepted()
}
