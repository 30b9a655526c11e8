package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ignatzorin/gig-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/gig-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/gig-marketplace/internal/logger"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/payment"
)

// maxWebhookBody ограничение тела вебхука, события провайдера заметно меньше.
const maxWebhookBody = 64 * 1024

type PaymentHandler struct {
	approveUC *payment.ApprovePaymentUseCase
	historyUC *payment.PaymentHistoryUseCase
	intentUC  *payment.CreatePaymentIntentUseCase
	accountUC *payment.ConnectPayoutAccountUseCase
	webhookUC *payment.HandleWebhookUseCase
}

func NewPaymentHandler(
	approveUC *payment.ApprovePaymentUseCase,
	historyUC *payment.PaymentHistoryUseCase,
	intentUC *payment.CreatePaymentIntentUseCase,
	accountUC *payment.ConnectPayoutAccountUseCase,
	webhookUC *payment.HandleWebhookUseCase,
) *PaymentHandler {
	return &PaymentHandler{
		approveUC: approveUC,
		historyUC: historyUC,
		intentUC:  intentUC,
		accountUC: accountUC,
		webhookUC: webhookUC,
	}
}

// Approve POST /admin/gigs/:id/approve-payment
func (h *PaymentHandler) Approve(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	gigID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ApprovePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.approveUC.Execute(c.Request.Context(), payment.ApprovePaymentInput{
		GigID:      gigID,
		ProviderID: req.ProviderID,
		ActorID:    userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToTransferResponse(result.Transfer))
}

// History GET /payments/history?page=&pageSize=&status=in-progress|completed
func (h *PaymentHandler) History(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var q dto.PaymentHistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.historyUC.Execute(c.Request.Context(), payment.PaymentHistoryInput{
		PayerID:  userID,
		Page:     q.Page,
		PageSize: q.PageSize,
		Filter:   q.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToPaymentHistoryResponse(result.Groups), result.Total, result.Page, result.PageSize)
}

// CreateIntent POST /gigs/:id/payment-intents
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	gigID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	intent, err := h.intentUC.Execute(c.Request.Context(), payment.CreatePaymentIntentInput{
		GigID:   gigID,
		PayerID: userID,
		Amount:  req.Amount.String(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.PaymentIntentResponse{PaymentIntentID: intent.ID, ClientSecret: intent.ClientSecret})
}

// ConnectAccount POST /payouts/account
func (h *PaymentHandler) ConnectAccount(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	result, err := h.accountUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.PayoutAccountResponse{
		AccountID:     result.AccountID,
		Status:        string(result.Status),
		OnboardingURL: result.OnboardingURL,
	})
}

// Webhook POST /webhooks/stripe. Подпись проверяется по сырому телу.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(c, "Failed to read request body")
		return
	}

	if err := h.webhookUC.Execute(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		if apperror.CodeOf(err) == apperror.ErrCodeInternal || apperror.CodeOf(err) == apperror.ErrCodeDatabaseError {
			logger.Get().WithError(err).Error("webhook: ошибка обработки события")
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
