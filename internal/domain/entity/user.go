package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
)

type User struct {
	ID                  uuid.UUID
	Email               string
	DisplayName         string
	PasswordHash        string
	Role                valueobject.Role
	Plan                valueobject.PlanTier
	PayoutAccountID     string
	PayoutAccountStatus valueobject.PayoutAccountStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func NewUser(email, displayName, passwordHash string, role valueobject.Role, now time.Time) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperror.InvalidRequest("Email is required")
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, apperror.InvalidRequest("Display name is required")
	}

	return &User{
		ID:                  uuid.New(),
		Email:               email,
		DisplayName:         displayName,
		PasswordHash:        passwordHash,
		Role:                role,
		Plan:                valueobject.PlanFree,
		PayoutAccountStatus: valueobject.PayoutAccountNeedsOnboarding,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Name: u.DisplayName, Role: u.Role}
}

func (u *User) HasPayoutAccount() bool {
	return strings.TrimSpace(u.PayoutAccountID) != ""
}

func (u *User) SetPlan(plan valueobject.PlanTier, now time.Time) {
	u.Plan = plan
	u.UpdatedAt = now
}

func (u *User) AttachPayoutAccount(accountID string, status valueobject.PayoutAccountStatus, now time.Time) {
	u.PayoutAccountID = accountID
	u.PayoutAccountStatus = status
	u.UpdatedAt = now
}
