// Package memory хранилище ledger в памяти процесса (STORAGE_DRIVER=memory и тесты).
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
)

type txKey struct{}

// Store все коллекции ledger под одним мьютексом.
// Записи сериализуются через txMu: транзакция держит его целиком,
// одиночная запись вне транзакции берёт его на время операции.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	gigs      map[uuid.UUID]*entity.Gig
	history   map[uuid.UUID][]entity.StatusChange
	bids      map[uuid.UUID]*entity.Bid
	payments  map[uuid.UUID]*entity.PaymentLog
	transfers map[uuid.UUID]*entity.Transfer
	users     map[uuid.UUID]*entity.User
}

func NewStore() *Store {
	return &Store{
		gigs:      make(map[uuid.UUID]*entity.Gig),
		history:   make(map[uuid.UUID][]entity.StatusChange),
		bids:      make(map[uuid.UUID]*entity.Bid),
		payments:  make(map[uuid.UUID]*entity.PaymentLog),
		transfers: make(map[uuid.UUID]*entity.Transfer),
		users:     make(map[uuid.UUID]*entity.User),
	}
}

func (s *Store) Gigs() *GigRepository               { return &GigRepository{s: s} }
func (s *Store) Bids() *BidRepository               { return &BidRepository{s: s} }
func (s *Store) PaymentLogs() *PaymentLogRepository { return &PaymentLogRepository{s: s} }
func (s *Store) Transfers() *TransferRepository     { return &TransferRepository{s: s} }
func (s *Store) Users() *UserRepository             { return &UserRepository{s: s} }

// WithinTransaction выполняет fn под txMu и восстанавливает снимок коллекций при ошибке.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// write выполняет fn под блокировкой записи; вне транзакции дополнительно берёт txMu.
func (s *Store) write(ctx context.Context, fn func() error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

type snapshot struct {
	gigs      map[uuid.UUID]*entity.Gig
	history   map[uuid.UUID][]entity.StatusChange
	bids      map[uuid.UUID]*entity.Bid
	payments  map[uuid.UUID]*entity.PaymentLog
	transfers map[uuid.UUID]*entity.Transfer
	users     map[uuid.UUID]*entity.User
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Записи в картах не мутируются на месте, достаточно поверхностной копии.
	return snapshot{
		gigs:      copyMap(s.gigs),
		history:   copyHistory(s.history),
		bids:      copyMap(s.bids),
		payments:  copyMap(s.payments),
		transfers: copyMap(s.transfers),
		users:     copyMap(s.users),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gigs = snap.gigs
	s.history = snap.history
	s.bids = snap.bids
	s.payments = snap.payments
	s.transfers = snap.transfers
	s.users = snap.users
}

func copyMap[V any](src map[uuid.UUID]*V) map[uuid.UUID]*V {
	dst := make(map[uuid.UUID]*V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func copyHistory(src map[uuid.UUID][]entity.StatusChange) map[uuid.UUID][]entity.StatusChange {
	dst := make(map[uuid.UUID][]entity.StatusChange, len(src))
	for k, v := range src {
		dst[k] = append([]entity.StatusChange(nil), v...)
	}
	return dst
}

func cloneGig(g *entity.Gig) *entity.Gig {
	c := *g
	c.Keywords = append([]string(nil), g.Keywords...)
	c.Skills = append([]string(nil), g.Skills...)
	c.Images = append([]string(nil), g.Images...)
	c.Certifications = append([]string(nil), g.Certifications...)
	c.AssignedToBid = cloneID(g.AssignedToBid)
	c.StatusHistory = nil
	return &c
}

func cloneBid(b *entity.Bid) *entity.Bid {
	c := *b
	c.AssociatedOtherGig = cloneID(b.AssociatedOtherGig)
	return &c
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
