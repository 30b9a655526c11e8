package repository

import "context"

// Transactor выполняет fn атомарно: при ошибке все записи внутри fn откатываются.
// Репозитории, вызванные с ctx из fn, работают в той же транзакции.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
