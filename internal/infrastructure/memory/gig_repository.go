package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
)

type GigRepository struct {
	s *Store
}

var _ repository.GigRepository = (*GigRepository)(nil)

func (r *GigRepository) Create(ctx context.Context, gig *entity.Gig) error {
	return r.s.write(ctx, func() error {
		if _, ok := r.s.gigs[gig.ID]; ok {
			return apperror.New(apperror.ErrCodeConflict, "Gig already exists")
		}
		r.s.gigs[gig.ID] = cloneGig(gig)
		return nil
	})
}

func (r *GigRepository) Update(ctx context.Context, gig *entity.Gig) error {
	return r.s.write(ctx, func() error {
		if _, ok := r.s.gigs[gig.ID]; !ok {
			return apperror.ErrGigNotFound
		}
		if gig.AssignedToBid != nil {
			bid, ok := r.s.bids[*gig.AssignedToBid]
			if !ok || bid.GigID != gig.ID {
				return apperror.New(apperror.ErrCodeConflict, "Assigned bid does not belong to the gig")
			}
		}
		r.s.gigs[gig.ID] = cloneGig(gig)
		return nil
	})
}

func (r *GigRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Gig, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	gig, ok := r.s.gigs[id]
	if !ok {
		return nil, apperror.ErrGigNotFound
	}
	c := cloneGig(gig)
	c.StatusHistory = append([]entity.StatusChange(nil), r.s.history[id]...)
	return c, nil
}

// FindByIDForUpdate: записи уже сериализованы txMu.
func (r *GigRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Gig, error) {
	return r.FindByID(ctx, id)
}

func (r *GigRepository) List(_ context.Context, filter repository.GigFilter) ([]*entity.Gig, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []*entity.Gig
	for _, g := range r.s.gigs {
		if filter.CreatedBy != nil && g.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.OnlyPublic && !g.IsPublic {
			continue
		}
		if filter.CreatedByRole != "" && g.CreatedByRole != filter.CreatedByRole {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, g.Status) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(g.Title+" "+g.Description), search) {
			continue
		}
		if filter.Skill != "" && !containsFold(g.Skills, filter.Skill) {
			continue
		}
		out = append(out, cloneGig(g))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, filter.Limit, filter.Offset), len(out), nil
}

func (r *GigRepository) AppendStatusChange(ctx context.Context, change *entity.StatusChange) error {
	return r.s.write(ctx, func() error {
		if _, ok := r.s.gigs[change.GigID]; !ok {
			return apperror.ErrGigNotFound
		}
		r.s.history[change.GigID] = append(r.s.history[change.GigID], *change)
		return nil
	})
}

func (r *GigRepository) ListStatusHistory(_ context.Context, gigID uuid.UUID) ([]entity.StatusChange, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]entity.StatusChange{}, r.s.history[gigID]...), nil
}

func (r *GigRepository) CountCreatedSince(_ context.Context, userID uuid.UUID, since time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, g := range r.s.gigs {
		if g.CreatedBy == userID && !g.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
