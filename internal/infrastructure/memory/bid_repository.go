package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
)

type BidRepository struct {
	s *Store
}

var _ repository.BidRepository = (*BidRepository)(nil)

// errSecondAssigned аналог частичного уникального индекса ux_bids_one_assigned.
var errSecondAssigned = apperror.New(apperror.ErrCodeConflict, "Gig already has an assigned bid")

func (r *BidRepository) Create(ctx context.Context, bid *entity.Bid) error {
	return r.s.write(ctx, func() error {
		if _, ok := r.s.gigs[bid.GigID]; !ok {
			return apperror.ErrGigNotFound
		}
		if bid.Status == valueobject.BidStatusAssigned && r.hasAssigned(bid.GigID, bid.ID) {
			return errSecondAssigned
		}
		r.s.bids[bid.ID] = cloneBid(bid)
		return nil
	})
}

func (r *BidRepository) Update(ctx context.Context, bid *entity.Bid) error {
	return r.s.write(ctx, func() error {
		if _, ok := r.s.bids[bid.ID]; !ok {
			return apperror.ErrBidNotFound
		}
		if bid.Status == valueobject.BidStatusAssigned && r.hasAssigned(bid.GigID, bid.ID) {
			return errSecondAssigned
		}
		r.s.bids[bid.ID] = cloneBid(bid)
		return nil
	})
}

// hasAssigned вызывается под r.s.mu.
func (r *BidRepository) hasAssigned(gigID, exceptID uuid.UUID) bool {
	for _, b := range r.s.bids {
		if b.GigID == gigID && b.ID != exceptID && b.Status == valueobject.BidStatusAssigned {
			return true
		}
	}
	return false
}

func (r *BidRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Bid, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	bid, ok := r.s.bids[id]
	if !ok {
		return nil, apperror.ErrBidNotFound
	}
	return cloneBid(bid), nil
}

func (r *BidRepository) FindByGigID(_ context.Context, gigID uuid.UUID) ([]*entity.Bid, error) {
	return r.collect(func(b *entity.Bid) bool { return b.GigID == gigID }), nil
}

func (r *BidRepository) FindByCreator(_ context.Context, userID uuid.UUID) ([]*entity.Bid, error) {
	return r.collect(func(b *entity.Bid) bool { return b.CreatedBy == userID }), nil
}

func (r *BidRepository) collect(match func(*entity.Bid) bool) []*entity.Bid {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*entity.Bid{}
	for _, b := range r.s.bids {
		if match(b) {
			out = append(out, cloneBid(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *BidRepository) UpdateStatusExcept(ctx context.Context, gigID, exceptID uuid.UUID, status valueobject.BidStatus, at time.Time) (int, error) {
	n := 0
	err := r.s.write(ctx, func() error {
		for id, b := range r.s.bids {
			if b.GigID != gigID || id == exceptID {
				continue
			}
			c := cloneBid(b)
			c.Status = status
			c.UpdatedAt = at
			r.s.bids[id] = c
			n++
		}
		return nil
	})
	return n, err
}

func (r *BidRepository) CountCreatedSince(_ context.Context, userID uuid.UUID, since time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, b := range r.s.bids {
		if b.CreatedBy == userID && !b.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
