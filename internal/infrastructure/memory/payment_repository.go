package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/shopspring/decimal"
)

type PaymentLogRepository struct {
	s *Store
}

var _ repository.PaymentLogRepository = (*PaymentLogRepository)(nil)

func (r *PaymentLogRepository) Create(ctx context.Context, log *entity.PaymentLog) error {
	return r.s.write(ctx, func() error {
		if log.PaymentIntentID != "" {
			for _, existing := range r.s.payments {
				if existing.PaymentIntentID == log.PaymentIntentID {
					return apperror.New(apperror.ErrCodeConflict, "Payment already recorded")
				}
			}
		}
		c := *log
		r.s.payments[log.ID] = &c
		return nil
	})
}

func (r *PaymentLogRepository) FindByIntentID(_ context.Context, intentID string) (*entity.PaymentLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, l := range r.s.payments {
		if l.PaymentIntentID == intentID {
			c := *l
			return &c, nil
		}
	}
	return nil, nil
}

func (r *PaymentLogRepository) ListByGig(_ context.Context, gigID uuid.UUID, status valueobject.PaymentStatus) ([]*entity.PaymentLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*entity.PaymentLog{}
	for _, l := range r.s.payments {
		if l.GigID != gigID || (status != "" && l.Status != status) {
			continue
		}
		c := *l
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PaymentLogRepository) AggregateByPayer(_ context.Context, filter repository.PaymentHistoryFilter) ([]*entity.PaymentHistoryGroup, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	groups := make(map[uuid.UUID]*entity.PaymentHistoryGroup)
	for _, l := range r.s.payments {
		if l.CreatedBy != filter.PayerID {
			continue
		}
		gig, ok := r.s.gigs[l.GigID]
		if !ok {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, gig.Status) {
			continue
		}

		g, ok := groups[gig.ID]
		if !ok {
			g = &entity.PaymentHistoryGroup{
				GigID:     gig.ID,
				GigTitle:  gig.Title,
				GigStatus: gig.Status,
				Provider:  r.assignedProvider(gig),
				TotalPaid: decimal.Zero,
			}
			groups[gig.ID] = g
		}

		g.Payments = append(g.Payments, entity.PaymentEntry{
			ID:        l.ID,
			Amount:    l.Amount,
			Status:    l.Status,
			CreatedAt: l.CreatedAt,
		})
		if l.Status == valueobject.PaymentStatusSuccess {
			g.TotalPaid = g.TotalPaid.Add(l.Amount)
		}
		if l.CreatedAt.After(g.LastPaid) {
			g.LastPaid = l.CreatedAt
		}
	}

	out := make([]*entity.PaymentHistoryGroup, 0, len(groups))
	for _, g := range groups {
		sort.Slice(g.Payments, func(i, j int) bool {
			return g.Payments[i].CreatedAt.Before(g.Payments[j].CreatedAt)
		})
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastPaid.Equal(out[j].LastPaid) {
			return out[i].GigID.String() < out[j].GigID.String()
		}
		return out[i].LastPaid.After(out[j].LastPaid)
	})

	return paginate(out, filter.Limit, filter.Offset), len(out), nil
}

// assignedProvider вызывается под r.s.mu.
func (r *PaymentLogRepository) assignedProvider(gig *entity.Gig) *entity.ProviderProfile {
	bid := r.engagedBid(gig)
	if bid == nil {
		return nil
	}
	u, ok := r.s.users[bid.CreatedBy]
	if !ok {
		return nil
	}
	return &entity.ProviderProfile{ID: u.ID, DisplayName: u.DisplayName, Email: u.Email}
}

// engagedBid назначенный отклик либо принятый создателем гига.
func (r *PaymentLogRepository) engagedBid(gig *entity.Gig) *entity.Bid {
	if gig.AssignedToBid != nil {
		return r.s.bids[*gig.AssignedToBid]
	}
	for _, b := range r.s.bids {
		if b.GigID == gig.ID && b.IsAccepted() {
			return b
		}
	}
	return nil
}

type TransferRepository struct {
	s *Store
}

var _ repository.TransferRepository = (*TransferRepository)(nil)

func (r *TransferRepository) Create(ctx context.Context, transfer *entity.Transfer) error {
	return r.s.write(ctx, func() error {
		c := *transfer
		r.s.transfers[transfer.ID] = &c
		return nil
	})
}

func (r *TransferRepository) UpdateStatusByExternalID(ctx context.Context, externalID string, status valueobject.TransferStatus) (*entity.Transfer, error) {
	var updated *entity.Transfer
	err := r.s.write(ctx, func() error {
		for id, t := range r.s.transfers {
			if t.ExternalTransferID != externalID {
				continue
			}
			c := *t
			c.Status = status
			r.s.transfers[id] = &c
			out := c
			updated = &out
			return nil
		}
		return apperror.ErrTransferNotFound
	})
	return updated, err
}

func (r *TransferRepository) ListByGig(_ context.Context, gigID uuid.UUID) ([]*entity.Transfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*entity.Transfer{}
	for _, t := range r.s.transfers {
		if t.GigID == gigID {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
