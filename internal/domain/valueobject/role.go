package valueobject

import "github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"

// Role роль участника сделки. Проверяется явно в каждом guard'е.
type Role string

const (
	RoleUser     Role = "User"
	RoleProvider Role = "Provider"
	RoleAdmin    Role = "Admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func NewRole(role string) (Role, error) {
	r := Role(role)
	if !r.IsValid() {
		return "", apperror.InvalidRequest("Invalid role: " + role)
	}
	return r, nil
}

// NewSelfServiceRole роль, доступная при регистрации (без Admin).
func NewSelfServiceRole(role string) (Role, error) {
	r, err := NewRole(role)
	if err != nil {
		return "", err
	}
	if r.IsAdmin() {
		return "", apperror.Forbidden("Admin accounts cannot be self-registered")
	}
	return r, nil
}

// PlanTier уровень подписки.
type PlanTier string

const (
	PlanFree  PlanTier = "Free"
	PlanBasic PlanTier = "Basic"
	PlanPro   PlanTier = "Pro"
)

func (p PlanTier) IsValid() bool {
	switch p {
	case PlanFree, PlanBasic, PlanPro:
		return true
	}
	return false
}

func NewPlanTier(plan string) (PlanTier, error) {
	p := PlanTier(plan)
	if !p.IsValid() {
		return "", apperror.InvalidRequest("Invalid plan: " + plan)
	}
	return p, nil
}
