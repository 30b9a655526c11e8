package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/shopspring/decimal"
)

type PlaceBidRequest struct {
	BidAmount     Amount `json:"bidAmount"`
	BidAmountType string `json:"bidAmountType"`
	Description   string `json:"description"`
}

type UpdateBidStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type BidResponse struct {
	ID                 uuid.UUID       `json:"id"`
	GigID              uuid.UUID       `json:"gigId"`
	CreatedBy          uuid.UUID       `json:"createdBy"`
	BidAmount          decimal.Decimal `json:"bidAmount"`
	BidAmountType      string          `json:"bidAmountType"`
	Description        string          `json:"description"`
	Status             string          `json:"status"`
	AssociatedOtherGig *uuid.UUID      `json:"associatedOtherGig"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

type UpdateBidStatusResponse struct {
	Bid BidResponse  `json:"bid"`
	Gig *GigResponse `json:"gig,omitempty"`
}

func ToBidResponse(b *entity.Bid) BidResponse {
	return BidResponse{
		ID:                 b.ID,
		GigID:              b.GigID,
		CreatedBy:          b.CreatedBy,
		BidAmount:          b.BidAmount,
		BidAmountType:      b.BidAmountType,
		Description:        b.Description,
		Status:             string(b.Status),
		AssociatedOtherGig: b.AssociatedOtherGig,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func ToBidResponses(bids []*entity.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, ToBidResponse(b))
	}
	return out
}

// ToBidResponsePtr nil-safe вариант для необязательных полей ответа.
func ToBidResponsePtr(b *entity.Bid) *BidResponse {
	if b == nil {
		return nil
	}
	resp := ToBidResponse(b)
	return &resp
}
