package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ignatzorin/gig-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/gig-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/auth"
)

type AdminHandler struct {
	setPlanUC *auth.SetPlanUseCase
}

func NewAdminHandler(setPlanUC *auth.SetPlanUseCase) *AdminHandler {
	return &AdminHandler{setPlanUC: setPlanUC}
}

// SetPlan PUT /admin/users/:id/plan
func (h *AdminHandler) SetPlan(c *gin.Context) {
	adminID, ok := actorID(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.SetPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.setPlanUC.Execute(c.Request.Context(), adminID, userID, req.Plan)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToUserResponse(user))
}
