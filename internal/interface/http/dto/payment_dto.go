package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/shopspring/decimal"
)

type ApprovePaymentRequest struct {
	ProviderID uuid.UUID `json:"providerId" binding:"required"`
}

type CreatePaymentIntentRequest struct {
	Amount Amount `json:"amount"`
}

type PaymentHistoryQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status"`
}

type TransferResponse struct {
	ID                 uuid.UUID       `json:"id"`
	GigID              uuid.UUID       `json:"gigId"`
	ProviderID         uuid.UUID       `json:"providerId"`
	CreatedBy          uuid.UUID       `json:"createdBy"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	ExternalTransferID string          `json:"transferId"`
	DestinationAccount string          `json:"accountId"`
	Status             string          `json:"status"`
	CreatedAt          time.Time       `json:"createdAt"`
}

type PaymentIntentResponse struct {
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
}

type PayoutAccountResponse struct {
	AccountID     string `json:"accountId"`
	Status        string `json:"status"`
	OnboardingURL string `json:"onboardingUrl,omitempty"`
}

type PaymentEntryResponse struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

type ProviderProfileResponse struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
}

type PaymentHistoryGroupResponse struct {
	GigID     uuid.UUID                `json:"gigId"`
	GigTitle  string                   `json:"gigTitle"`
	GigStatus string                   `json:"gigStatus"`
	Provider  *ProviderProfileResponse `json:"provider"`
	Payments  []PaymentEntryResponse   `json:"payments"`
	TotalPaid decimal.Decimal          `json:"totalPaid"`
	LastPaid  time.Time                `json:"lastPaid"`
}

func ToTransferResponse(t *entity.Transfer) TransferResponse {
	return TransferResponse{
		ID:                 t.ID,
		GigID:              t.GigID,
		ProviderID:         t.ProviderID,
		CreatedBy:          t.CreatedBy,
		Amount:             t.Amount,
		Currency:           t.Currency,
		ExternalTransferID: t.ExternalTransferID,
		DestinationAccount: t.DestinationAccount,
		Status:             string(t.Status),
		CreatedAt:          t.CreatedAt,
	}
}

func ToPaymentHistoryResponse(groups []*entity.PaymentHistoryGroup) []PaymentHistoryGroupResponse {
	out := make([]PaymentHistoryGroupResponse, 0, len(groups))
	for _, g := range groups {
		item := PaymentHistoryGroupResponse{
			GigID:     g.GigID,
			GigTitle:  g.GigTitle,
			GigStatus: string(g.GigStatus),
			Payments:  make([]PaymentEntryResponse, 0, len(g.Payments)),
			TotalPaid: g.TotalPaid,
			LastPaid:  g.LastPaid,
		}
		if g.Provider != nil {
			item.Provider = &ProviderProfileResponse{
				ID:          g.Provider.ID,
				DisplayName: g.Provider.DisplayName,
				Email:       g.Provider.Email,
			}
		}
		for _, p := range g.Payments {
			item.Payments = append(item.Payments, PaymentEntryResponse{
				ID:        p.ID,
				Amount:    p.Amount,
				Status:    string(p.Status),
				CreatedAt: p.CreatedAt,
			})
		}
		out = append(out, item)
	}
	return out
}
