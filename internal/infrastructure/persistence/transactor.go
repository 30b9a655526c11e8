package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/ignatzorin/gig-marketplace/internal/logger"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type txKey struct{}

// psql построитель запросов с плейсхолдерами $1, $2...
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Transactor открывает транзакцию и передаёт её репозиториям через контекст.
type Transactor struct {
	db *sqlx.DB
}

func NewTransactor(db *sqlx.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to begin transaction")
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Get().WithError(rbErr).Error("persistence: не удалось откатить транзакцию")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to commit transaction")
	}
	return nil
}

// conn возвращает транзакцию из контекста либо пул соединений.
func conn(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

// countRows выполняет SELECT COUNT(...) без LIMIT/OFFSET страницы.
func countRows(ctx context.Context, q sqlx.QueryerContext, builder squirrel.SelectBuilder, message string) (int, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to build count query")
	}
	var total int
	if err := sqlx.GetContext(ctx, q, &total, query, args...); err != nil {
		return 0, dbError(err, message)
	}
	return total, nil
}

const uniqueViolation = "23505"

// dbError переводит ошибки драйвера в доменные.
func dbError(err error, message string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperror.Wrap(err, apperror.ErrCodeConflict, conflictMessage(pqErr.Constraint, message))
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, message)
}

func conflictMessage(constraint, fallback string) string {
	switch constraint {
	case "ux_bids_one_assigned":
		return "Gig already has an assigned bid"
	case "users_email_key":
		return "Email is already registered"
	case "payment_logs_payment_intent_id_key":
		return "Payment already recorded"
	}
	return fmt.Sprintf("%s: duplicate value", fallback)
}
