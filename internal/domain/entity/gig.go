package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/shopspring/decimal"
)

type Gig struct {
	ID             uuid.UUID
	Title          string
	Description    string
	Tier           string
	Price          decimal.Decimal
	TimeEstimate   string
	Keywords       []string
	Skills         []string
	Images         []string
	Certifications []string
	Status         valueobject.GigStatus
	CreatedBy      uuid.UUID
	CreatedByRole  valueobject.Role
	IsPublic       bool
	AssignedToBid  *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time

	StatusHistory []StatusChange
}

// StatusChange запись журнала переходов. После добавления не изменяется.
type StatusChange struct {
	ID             uuid.UUID
	GigID          uuid.UUID
	BidID          *uuid.UUID
	PreviousStatus string
	Status         string
	ActorID        uuid.UUID
	ActorName      string
	ActorRole      valueobject.Role
	Description    string
	CreatedAt      time.Time
}

// GigDetails описательные поля гига, общие для создания и зеркалирования.
type GigDetails struct {
	Title          string
	Description    string
	Tier           string
	Price          decimal.Decimal
	TimeEstimate   string
	Keywords       []string
	Skills         []string
	Images         []string
	Certifications []string
}

func NewGig(creator Actor, details GigDetails, now time.Time) (*Gig, error) {
	title := strings.TrimSpace(details.Title)
	if title == "" {
		return nil, apperror.InvalidRequest("Title is required")
	}
	if strings.TrimSpace(details.Description) == "" {
		return nil, apperror.InvalidRequest("Description is required")
	}
	if details.Price.IsNegative() {
		return nil, apperror.InvalidRequest("Price must not be negative")
	}

	role := creator.Role
	// Гиги администратора считаются клиентскими запросами.
	if role.IsAdmin() {
		role = valueobject.RoleUser
	}

	return &Gig{
		ID:             uuid.New(),
		Title:          title,
		Description:    details.Description,
		Tier:           details.Tier,
		Price:          details.Price,
		TimeEstimate:   details.TimeEstimate,
		Keywords:       nonNil(details.Keywords),
		Skills:         nonNil(details.Skills),
		Images:         nonNil(details.Images),
		Certifications: nonNil(details.Certifications),
		Status:         valueobject.GigStatusOpen,
		CreatedBy:      creator.ID,
		CreatedByRole:  role,
		IsPublic:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (g *Gig) Details() GigDetails {
	return GigDetails{
		Title:          g.Title,
		Description:    g.Description,
		Tier:           g.Tier,
		Price:          g.Price,
		TimeEstimate:   g.TimeEstimate,
		Keywords:       append([]string(nil), g.Keywords...),
		Skills:         append([]string(nil), g.Skills...),
		Images:         append([]string(nil), g.Images...),
		Certifications: append([]string(nil), g.Certifications...),
	}
}

// Transition меняет статус и возвращает запись для журнала.
func (g *Gig) Transition(target valueobject.GigStatus, actor Actor, bidID *uuid.UUID, description string, now time.Time) StatusChange {
	change := StatusChange{
		ID:             uuid.New(),
		GigID:          g.ID,
		BidID:          copyID(bidID),
		PreviousStatus: string(g.Status),
		Status:         string(target),
		ActorID:        actor.ID,
		ActorName:      actor.Name,
		ActorRole:      actor.Role,
		Description:    description,
		CreatedAt:      now,
	}

	g.Status = target
	g.UpdatedAt = now
	g.StatusHistory = append(g.StatusHistory, change)
	return change
}

// InitialChange запись о создании гига в текущем статусе.
func (g *Gig) InitialChange(actor Actor, bidID *uuid.UUID, description string, now time.Time) StatusChange {
	change := StatusChange{
		ID:          uuid.New(),
		GigID:       g.ID,
		BidID:       copyID(bidID),
		Status:      string(g.Status),
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Description: description,
		CreatedAt:   now,
	}

	g.StatusHistory = append(g.StatusHistory, change)
	return change
}

// RecordBidChange фиксирует смену статуса отклика, не трогая статус гига.
func (g *Gig) RecordBidChange(bid *Bid, previous valueobject.BidStatus, actor Actor, description string, now time.Time) StatusChange {
	change := StatusChange{
		ID:             uuid.New(),
		GigID:          g.ID,
		BidID:          copyID(&bid.ID),
		PreviousStatus: string(previous),
		Status:         string(bid.Status),
		ActorID:        actor.ID,
		ActorName:      actor.Name,
		ActorRole:      actor.Role,
		Description:    description,
		CreatedAt:      now,
	}

	g.StatusHistory = append(g.StatusHistory, change)
	return change
}

func (g *Gig) AssignBid(bidID uuid.UUID, now time.Time) {
	id := bidID
	g.AssignedToBid = &id
	g.UpdatedAt = now
}

func (g *Gig) IsOwnedBy(userID uuid.UUID) bool {
	return g.CreatedBy == userID
}

func (g *Gig) IsAssignedTo(bidID uuid.UUID) bool {
	return g.AssignedToBid != nil && *g.AssignedToBid == bidID
}

func (g *Gig) IsProviderOffering() bool {
	return g.CreatedByRole == valueobject.RoleProvider
}

// VisibleTo: приватные гиги видят только участники и администраторы.
func (g *Gig) VisibleTo(actor Actor, participant bool) bool {
	return g.IsPublic || actor.IsAdmin() || g.IsOwnedBy(actor.ID) || participant
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
