package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ignatzorin/gig-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/gig-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/bid"
)

type BidHandler struct {
	placeUC    *bid.PlaceBidUseCase
	listUC     *bid.ListBidsUseCase
	decisionUC *bid.UpdateBidStatusUseCase
	reviewUC   *bid.UpdateBidStatusUseCase
}

// NewBidHandler decisionUC и reviewUC обслуживают два словаря статусов отклика.
func NewBidHandler(
	placeUC *bid.PlaceBidUseCase,
	listUC *bid.ListBidsUseCase,
	decisionUC *bid.UpdateBidStatusUseCase,
	reviewUC *bid.UpdateBidStatusUseCase,
) *BidHandler {
	return &BidHandler{
		placeUC:    placeUC,
		listUC:     listUC,
		decisionUC: decisionUC,
		reviewUC:   reviewUC,
	}
}

// Place POST /gigs/:id/bids
func (h *BidHandler) Place(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	gigID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	placed, err := h.placeUC.Execute(c.Request.Context(), bid.PlaceBidInput{
		GigID:         gigID,
		BidderID:      userID,
		BidAmount:     req.BidAmount.String(),
		BidAmountType: req.BidAmountType,
		Description:   req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToBidResponse(placed))
}

// ListForGig GET /gigs/:id/bids
func (h *BidHandler) ListForGig(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	gigID, ok := pathID(c, "id")
	if !ok {
		return
	}

	bids, err := h.listUC.ForGig(c.Request.Context(), gigID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBidResponses(bids))
}

func (h *BidHandler) ListMine(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	bids, err := h.listUC.Mine(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBidResponses(bids))
}

// Decision PUT /bids/:id/decision (Accepted|Rejected)
func (h *BidHandler) Decision(c *gin.Context) {
	h.updateStatus(c, h.decisionUC)
}

// Review PUT /bids/:id/review (approved|rejected)
func (h *BidHandler) Review(c *gin.Context) {
	h.updateStatus(c, h.reviewUC)
}

func (h *BidHandler) updateStatus(c *gin.Context, uc *bid.UpdateBidStatusUseCase) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	bidID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateBidStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := uc.Execute(c.Request.Context(), bid.UpdateBidStatusInput{
		BidID:   bidID,
		ActorID: userID,
		Status:  req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.UpdateBidStatusResponse{Bid: dto.ToBidResponse(result.Bid)}
	if result.Gig != nil {
		g := dto.ToGigResponse(result.Gig)
		resp.Gig = &g
	}
	response.Success(c, resp)
}
