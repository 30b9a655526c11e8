package gig

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/common"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type GetGigUseCase struct {
	gigRepo  repository.GigRepository
	bidRepo  repository.BidRepository
	userRepo repository.UserRepository
}

func NewGetGigUseCase(gigRepo repository.GigRepository, bidRepo repository.BidRepository, userRepo repository.UserRepository) *GetGigUseCase {
	return &GetGigUseCase{gigRepo: gigRepo, bidRepo: bidRepo, userRepo: userRepo}
}

// Execute возвращает гиг с историей. Приватный гиг для посторонних выглядит как отсутствующий.
func (uc *GetGigUseCase) Execute(ctx context.Context, gigID, actorID uuid.UUID) (*entity.Gig, error) {
	user, err := common.ResolveUser(ctx, uc.userRepo, actorID)
	if err != nil {
		return nil, err
	}

	gig, err := uc.gigRepo.FindByID(ctx, gigID)
	if err != nil {
		return nil, err
	}

	if gig.IsPublic || user.Role.IsAdmin() || gig.IsOwnedBy(user.ID) {
		return gig, nil
	}

	bids, err := uc.bidRepo.FindByGigID(ctx, gig.ID)
	if err != nil {
		return nil, err
	}
	participant := false
	for _, b := range bids {
		if b.IsOwnedBy(user.ID) {
			participant = true
			break
		}
	}
	if !gig.VisibleTo(user.Actor(), participant) {
		return nil, apperror.ErrGigNotFound
	}
	return gig, nil
}

type ListGigsInput struct {
	Search        string
	Skill         string
	CreatedByRole string
	Page          int
	PageSize      int
}

type GigPage struct {
	Gigs     []*entity.Gig
	Total    int
	Page     int
	PageSize int
}

type ListGigsUseCase struct {
	gigRepo repository.GigRepository
}

func NewListGigsUseCase(gigRepo repository.GigRepository) *ListGigsUseCase {
	return &ListGigsUseCase{gigRepo: gigRepo}
}

// Execute публичная лента: только гиги, принимающие отклики.
func (uc *ListGigsUseCase) Execute(ctx context.Context, input ListGigsInput) (*GigPage, error) {
	page, size := normalizePage(input.Page, input.PageSize)

	filter := repository.GigFilter{
		Statuses:   []valueobject.GigStatus{valueobject.GigStatusOpen, valueobject.GigStatusRequested},
		OnlyPublic: true,
		Search:     input.Search,
		Skill:      input.Skill,
		Limit:      size,
		Offset:     (page - 1) * size,
	}
	if input.CreatedByRole != "" {
		role, err := valueobject.NewRole(input.CreatedByRole)
		if err != nil {
			return nil, err
		}
		filter.CreatedByRole = role
	}

	gigs, total, err := uc.gigRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &GigPage{Gigs: gigs, Total: total, Page: page, PageSize: size}, nil
}

type ListMyGigsUseCase struct {
	gigRepo repository.GigRepository
}

func NewListMyGigsUseCase(gigRepo repository.GigRepository) *ListMyGigsUseCase {
	return &ListMyGigsUseCase{gigRepo: gigRepo}
}

func (uc *ListMyGigsUseCase) Execute(ctx context.Context, actorID uuid.UUID, status string, page, pageSize int) (*GigPage, error) {
	page, size := normalizePage(page, pageSize)

	filter := repository.GigFilter{
		CreatedBy: &actorID,
		Limit:     size,
		Offset:    (page - 1) * size,
	}
	if status != "" {
		s, err := valueobject.NewGigStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Statuses = []valueobject.GigStatus{s}
	}

	gigs, total, err := uc.gigRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &GigPage{Gigs: gigs, Total: total, Page: page, PageSize: size}, nil
}

type GetHistoryUseCase struct {
	get *GetGigUseCase
}

func NewGetHistoryUseCase(get *GetGigUseCase) *GetHistoryUseCase {
	return &GetHistoryUseCase{get: get}
}

func (uc *GetHistoryUseCase) Execute(ctx context.Context, gigID, actorID uuid.UUID) ([]entity.StatusChange, error) {
	gig, err := uc.get.Execute(ctx, gigID, actorID)
	if err != nil {
		return nil, err
	}
	return gig.StatusHistory, nil
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
