package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ignatzorin/gig-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/gig-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/gig"
)

type GigHandler struct {
	createUC        *gig.CreateGigUseCase
	getUC           *gig.GetGigUseCase
	listUC          *gig.ListGigsUseCase
	listMineUC      *gig.ListMyGigsUseCase
	historyUC       *gig.GetHistoryUseCase
	changeStatusUC  *gig.ChangeStatusUseCase
	reverseStatusUC *gig.ReverseChangeStatusUseCase
	attachmentUC    *gig.AddAttachmentUseCase
}

func NewGigHandler(
	createUC *gig.CreateGigUseCase,
	getUC *gig.GetGigUseCase,
	listUC *gig.ListGigsUseCase,
	listMineUC *gig.ListMyGigsUseCase,
	historyUC *gig.GetHistoryUseCase,
	changeStatusUC *gig.ChangeStatusUseCase,
	reverseStatusUC *gig.ReverseChangeStatusUseCase,
	attachmentUC *gig.AddAttachmentUseCase,
) *GigHandler {
	return &GigHandler{
		createUC:        createUC,
		getUC:           getUC,
		listUC:          listUC,
		listMineUC:      listMineUC,
		historyUC:       historyUC,
		changeStatusUC:  changeStatusUC,
		reverseStatusUC: reverseStatusUC,
		attachmentUC:    attachmentUC,
	}
}

func (h *GigHandler) Create(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req dto.CreateGigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	created, err := h.createUC.Execute(c.Request.Context(), gig.CreateGigInput{
		ActorID:        userID,
		Title:          req.Title,
		Description:    req.Description,
		Tier:           req.Tier,
		Price:          req.Price.String(),
		TimeEstimate:   req.TimeEstimate,
		Keywords:       req.Keywords,
		Skills:         req.Skills,
		Certifications: req.Certifications,
		Images:         req.Images,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToGigResponse(created))
}

func (h *GigHandler) Get(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	gigID, ok := pathID(c, "id")
	if !ok {
		return
	}

	found, err := h.getUC.Execute(c.Request.Context(), gigID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToGigResponse(found))
}

// List публичная лента открытых гигов.
func (h *GigHandler) List(c *gin.Context) {
	var q dto.ListGigsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	page, err := h.listUC.Execute(c.Request.Context(), gig.ListGigsInput{
		Search:        q.Search,
		Skill:         q.Skill,
		CreatedByRole: q.CreatedByRole,
		Page:          q.Page,
		PageSize:      q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToGigResponses(page.Gigs), page.Total, page.Page, page.PageSize)
}

func (h *GigHandler) ListMine(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var q dto.ListGigsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	page, err := h.listMineUC.Execute(c.Request.Context(), userID, q.Status, q.Page, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToGigResponses(page.Gigs), page.Total, page.Page, page.PageSize)
}

func (h *GigHandler) History(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	gigID, ok := pathID(c, "id")
	if !ok {
		return
	}

	history, err := h.historyUC.Execute(c.Request.Context(), gigID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToStatusHistoryResponse(history))
}

// ChangeStatus PUT /gigs/:id/status
func (h *GigHandler) ChangeStatus(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	gigID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.changeStatusUC.Execute(c.Request.Context(), gig.ChangeStatusInput{
		GigID:        gigID,
		ActorID:      userID,
		TargetStatus: req.Status,
		BidID:        req.BidID,
		Description:  req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ChangeStatusResponse{
		Gig: dto.ToGigResponse(result.Gig),
		Bid: dto.ToBidResponsePtr(result.Bid),
	})
}

// ReverseChangeStatus PUT /gigs/:id/reverse-status: ответ исполнителя на запрос клиента.
func (h *GigHandler) ReverseChangeStatus(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	gigID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ReverseChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.reverseStatusUC.Execute(c.Request.Context(), gig.ReverseChangeStatusInput{
		ProviderGigID: gigID,
		BidID:         req.BidID,
		ClientID:      req.ClientID,
		ActorID:       userID,
		TargetStatus:  req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.ReverseChangeStatusResponse{
		Bid:       dto.ToBidResponse(result.Bid),
		MirrorBid: dto.ToBidResponsePtr(result.MirrorBid),
	}
	if result.ClientGig != nil {
		clientGig := dto.ToGigResponse(result.ClientGig)
		resp.ClientGig = &clientGig
	}
	response.SuccessWithMessage(c, resp, result.Message)
}

// UploadAttachment POST /gigs/:id/attachments (multipart: file, kind=image|certification)
func (h *GigHandler) UploadAttachment(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	gigID, ok := pathID(c, "id")
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "Field file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, apperror.Wrap(err, apperror.ErrCodeBadRequest, "Failed to read uploaded file"))
		return
	}
	defer src.Close()

	kind := gig.AttachmentKind(c.DefaultPostForm("kind", string(gig.AttachmentImage)))
	updated, err := h.attachmentUC.Execute(c.Request.Context(), gig.AddAttachmentInput{
		GigID:    gigID,
		ActorID:  userID,
		Kind:     kind,
		FileName: file.Filename,
		Content:  src,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToGigResponse(updated))
}
