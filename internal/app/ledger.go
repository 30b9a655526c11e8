// Package app собирает хранилище ledger под выбранный драйвер; используется сервером и gigctl.
package app

import (
	"context"
	"fmt"

	"github.com/ignatzorin/gig-marketplace/internal/config"
	"github.com/ignatzorin/gig-marketplace/internal/db"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/infrastructure/memory"
	"github.com/ignatzorin/gig-marketplace/internal/infrastructure/persistence"
	"github.com/ignatzorin/gig-marketplace/internal/logger"
	"github.com/jmoiron/sqlx"
)

// Ledger набор репозиториев одного хранилища.
type Ledger struct {
	Users     repository.UserRepository
	Gigs      repository.GigRepository
	Bids      repository.BidRepository
	Payments  repository.PaymentLogRepository
	Transfers repository.TransferRepository
	Tx        repository.Transactor

	// DB nil для драйвера memory.
	DB *sqlx.DB
}

// OpenLedger подключает хранилище. Для postgres при migrate=true накатывает миграции.
func OpenLedger(ctx context.Context, cfg *config.Config, migrate bool) (*Ledger, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Get().Warn("app: используется in-memory хранилище, данные не переживут перезапуск")
		return NewMemoryLedger(memory.NewStore()), nil
	}

	conn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("app: подключение к базе: %w", err)
	}
	if migrate {
		if err := db.RunMigrations(conn, cfg.MigrationsPath); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("app: миграции: %w", err)
		}
	}

	return &Ledger{
		Users:     persistence.NewUserRepositoryAdapter(conn),
		Gigs:      persistence.NewGigRepositoryAdapter(conn),
		Bids:      persistence.NewBidRepositoryAdapter(conn),
		Payments:  persistence.NewPaymentLogRepositoryAdapter(conn),
		Transfers: persistence.NewTransferRepositoryAdapter(conn),
		Tx:        persistence.NewTransactor(conn),
		DB:        conn,
	}, nil
}

func NewMemoryLedger(store *memory.Store) *Ledger {
	return &Ledger{
		Users:     store.Users(),
		Gigs:      store.Gigs(),
		Bids:      store.Bids(),
		Payments:  store.PaymentLogs(),
		Transfers: store.Transfers(),
		Tx:        store,
	}
}

func (l *Ledger) Close() {
	if l.DB == nil {
		return
	}
	if err := l.DB.Close(); err != nil {
		logger.Get().WithError(err).Error("app: ошибка закрытия базы")
	}
}
