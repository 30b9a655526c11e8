package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/service"
)

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName" binding:"required"`
	Role        string `json:"role" binding:"omitempty,oneof=User Provider"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type SetPlanRequest struct {
	Plan string `json:"plan" binding:"required,plan_tier"`
}

type UserResponse struct {
	ID                  uuid.UUID `json:"id"`
	Email               string    `json:"email"`
	DisplayName         string    `json:"displayName"`
	Role                string    `json:"role"`
	Plan                string    `json:"plan"`
	PayoutAccountID     string    `json:"stripeConnectAccountId,omitempty"`
	PayoutAccountStatus string    `json:"stripeConnectAccountStatus"`
	CreatedAt           time.Time `json:"createdAt"`
}

type AuthResponse struct {
	User   UserResponse       `json:"user"`
	Tokens *service.TokenPair `json:"tokens"`
}

func ToUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:                  u.ID,
		Email:               u.Email,
		DisplayName:         u.DisplayName,
		Role:                string(u.Role),
		Plan:                string(u.Plan),
		PayoutAccountID:     u.PayoutAccountID,
		PayoutAccountStatus: string(u.PayoutAccountStatus),
		CreatedAt:           u.CreatedAt,
	}
}
