package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/shopspring/decimal"
)

type CreateGigRequest struct {
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description" binding:"required"`
	Tier           string   `json:"tier"`
	Price          Amount   `json:"price" binding:"omitempty,decimal"`
	TimeEstimate   string   `json:"timeEstimate"`
	Keywords       []string `json:"keywords"`
	Skills         []string `json:"skills"`
	Certifications []string `json:"certifications"`
	Images         []string `json:"images"`
}

type ChangeStatusRequest struct {
	Status      string     `json:"status" binding:"required,gig_status"`
	BidID       *uuid.UUID `json:"bidId"`
	Description string     `json:"description"`
}

type ReverseChangeStatusRequest struct {
	BidID    uuid.UUID `json:"bidId" binding:"required"`
	ClientID uuid.UUID `json:"clientId" binding:"required"`
	Status   string    `json:"status" binding:"required,oneof=Assigned Not-Assigned Rejected"`
}

type ListGigsQuery struct {
	Search        string `form:"search"`
	Skill         string `form:"skill"`
	CreatedByRole string `form:"createdByRole" binding:"omitempty,oneof=User Provider"`
	Status        string `form:"status" binding:"omitempty,gig_status"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

type GigResponse struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Tier           string          `json:"tier"`
	Price          decimal.Decimal `json:"price"`
	TimeEstimate   string          `json:"timeEstimate"`
	Keywords       []string        `json:"keywords"`
	Skills         []string        `json:"skills"`
	Images         []string        `json:"images"`
	Certifications []string        `json:"certifications"`
	Status         string          `json:"status"`
	CreatedBy      uuid.UUID       `json:"createdBy"`
	CreatedByRole  string          `json:"createdByRole"`
	IsPublic       bool            `json:"isPublic"`
	AssignedToBid  *uuid.UUID      `json:"assignedToBid"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type StatusChangeResponse struct {
	BidID          *uuid.UUID `json:"bidId,omitempty"`
	PreviousStatus string     `json:"previousStatus"`
	Status         string     `json:"status"`
	ActorID        uuid.UUID  `json:"actorId"`
	ActorName      string     `json:"actorName"`
	ActorRole      string     `json:"actorRole"`
	Description    string     `json:"description,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type ChangeStatusResponse struct {
	Gig GigResponse  `json:"gig"`
	Bid *BidResponse `json:"bid,omitempty"`
}

type ReverseChangeStatusResponse struct {
	Bid       BidResponse  `json:"bid"`
	ClientGig *GigResponse `json:"clientGig,omitempty"`
	MirrorBid *BidResponse `json:"mirrorBid,omitempty"`
}

func ToGigResponse(g *entity.Gig) GigResponse {
	return GigResponse{
		ID:             g.ID,
		Title:          g.Title,
		Description:    g.Description,
		Tier:           g.Tier,
		Price:          g.Price,
		TimeEstimate:   g.TimeEstimate,
		Keywords:       g.Keywords,
		Skills:         g.Skills,
		Images:         g.Images,
		Certifications: g.Certifications,
		Status:         string(g.Status),
		CreatedBy:      g.CreatedBy,
		CreatedByRole:  string(g.CreatedByRole),
		IsPublic:       g.IsPublic,
		AssignedToBid:  g.AssignedToBid,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}
}

func ToGigResponses(gigs []*entity.Gig) []GigResponse {
	out := make([]GigResponse, 0, len(gigs))
	for _, g := range gigs {
		out = append(out, ToGigResponse(g))
	}
	return out
}

func ToStatusHistoryResponse(history []entity.StatusChange) []StatusChangeResponse {
	out := make([]StatusChangeResponse, 0, len(history))
	for _, h := range history {
		out = append(out, StatusChangeResponse{
			BidID:          h.BidID,
			PreviousStatus: h.PreviousStatus,
			Status:         h.Status,
			ActorID:        h.ActorID,
			ActorName:      h.ActorName,
			ActorRole:      string(h.ActorRole),
			Description:    h.Description,
			CreatedAt:      h.CreatedAt,
		})
	}
	return out
}
