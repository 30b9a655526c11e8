package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type paymentLogRow struct {
	ID              uuid.UUID       `db:"id"`
	GigID           uuid.UUID       `db:"gig_id"`
	CreatedBy       uuid.UUID       `db:"created_by"`
	ProviderID      uuid.UUID       `db:"provider_id"`
	Amount          decimal.Decimal `db:"amount"`
	Status          string          `db:"status"`
	PaymentIntentID string          `db:"payment_intent_id"`
	CreatedAt       time.Time       `db:"created_at"`
}

func (r paymentLogRow) toEntity() *entity.PaymentLog {
	return &entity.PaymentLog{
		ID:              r.ID,
		GigID:           r.GigID,
		CreatedBy:       r.CreatedBy,
		ProviderID:      r.ProviderID,
		Amount:          r.Amount,
		Status:          valueobject.PaymentStatus(r.Status),
		PaymentIntentID: r.PaymentIntentID,
		CreatedAt:       r.CreatedAt,
	}
}

// paymentGroupRow строка агрегата: один гиг плательщика.
type paymentGroupRow struct {
	GigID         uuid.UUID       `db:"gig_id"`
	GigTitle      string          `db:"gig_title"`
	GigStatus     string          `db:"gig_status"`
	ProviderID    uuid.NullUUID   `db:"provider_id"`
	ProviderName  sql.NullString  `db:"provider_name"`
	ProviderEmail sql.NullString  `db:"provider_email"`
	TotalPaid     decimal.Decimal `db:"total_paid"`
	LastPaid      time.Time       `db:"last_paid"`
}

type PaymentLogRepositoryAdapter struct {
	db *sqlx.DB
}

var _ repository.PaymentLogRepository = (*PaymentLogRepositoryAdapter)(nil)

func NewPaymentLogRepositoryAdapter(db *sqlx.DB) *PaymentLogRepositoryAdapter {
	return &PaymentLogRepositoryAdapter{db: db}
}

func (r *PaymentLogRepositoryAdapter) Create(ctx context.Context, log *entity.PaymentLog) error {
	query := `
		INSERT INTO payment_logs (id, gig_id, created_by, provider_id, amount, status, payment_intent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		log.ID,
		log.GigID,
		log.CreatedBy,
		log.ProviderID,
		log.Amount,
		string(log.Status),
		log.PaymentIntentID,
		log.CreatedAt,
	)
	if err != nil {
		return dbError(err, "failed to record payment")
	}
	return nil
}

func (r *PaymentLogRepositoryAdapter) FindByIntentID(ctx context.Context, intentID string) (*entity.PaymentLog, error) {
	var row paymentLogRow
	query := `
		SELECT id, gig_id, created_by, provider_id, amount, status, payment_intent_id, created_at
		FROM payment_logs
		WHERE payment_intent_id = $1
	`
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &row, query, intentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, dbError(err, "failed to load payment")
	}
	return row.toEntity(), nil
}

func (r *PaymentLogRepositoryAdapter) ListByGig(ctx context.Context, gigID uuid.UUID, status valueobject.PaymentStatus) ([]*entity.PaymentLog, error) {
	builder := psql.
		Select("id, gig_id, created_by, provider_id, amount, status, payment_intent_id, created_at").
		From("payment_logs").
		Where(squirrel.Eq{"gig_id": gigID}).
		OrderBy("created_at ASC")
	if status != "" {
		builder = builder.Where(squirrel.Eq{"status": string(status)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to build payment query")
	}

	var rows []paymentLogRow
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &rows, query, args...); err != nil {
		return nil, dbError(err, "failed to list payments")
	}

	logs := make([]*entity.PaymentLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, row.toEntity())
	}
	return logs, nil
}

// AggregateByPayer группирует платежи плательщика по гигам, total считается
// отдельным запросом до пагинации, затем подгружаются платежи страницы.
func (r *PaymentLogRepositoryAdapter) AggregateByPayer(ctx context.Context, filter repository.PaymentHistoryFilter) ([]*entity.PaymentHistoryGroup, int, error) {
	total, err := countRows(ctx, conn(ctx, r.db), paymentHistoryCount(filter), "failed to count payment history")
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*entity.PaymentHistoryGroup{}, 0, nil
	}

	query, args, err := paymentHistoryPage(filter).ToSql()
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to build payment history query")
	}

	var rows []paymentGroupRow
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &rows, query, args...); err != nil {
		return nil, 0, dbError(err, "failed to aggregate payment history")
	}
	if len(rows) == 0 {
		return []*entity.PaymentHistoryGroup{}, total, nil
	}

	groups := make([]*entity.PaymentHistoryGroup, 0, len(rows))
	byGig := make(map[uuid.UUID]*entity.PaymentHistoryGroup, len(rows))
	gigIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		g := &entity.PaymentHistoryGroup{
			GigID:     row.GigID,
			GigTitle:  row.GigTitle,
			GigStatus: valueobject.GigStatus(row.GigStatus),
			TotalPaid: row.TotalPaid,
			LastPaid:  row.LastPaid,
		}
		if row.ProviderID.Valid {
			g.Provider = &entity.ProviderProfile{
				ID:          row.ProviderID.UUID,
				DisplayName: row.ProviderName.String,
				Email:       row.ProviderEmail.String,
			}
		}
		groups = append(groups, g)
		byGig[row.GigID] = g
		gigIDs = append(gigIDs, row.GigID.String())
	}

	entriesQuery := `
		SELECT id, gig_id, created_by, provider_id, amount, status, payment_intent_id, created_at
		FROM payment_logs
		WHERE created_by = $1 AND gig_id = ANY($2::uuid[])
		ORDER BY created_at ASC
	`
	var entries []paymentLogRow
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &entries, entriesQuery, filter.PayerID, pq.StringArray(gigIDs)); err != nil {
		return nil, 0, dbError(err, "failed to load payment entries")
	}
	for _, e := range entries {
		if g, ok := byGig[e.GigID]; ok {
			g.Payments = append(g.Payments, entity.PaymentEntry{
				ID:        e.ID,
				Amount:    e.Amount,
				Status:    valueobject.PaymentStatus(e.Status),
				CreatedAt: e.CreatedAt,
			})
		}
	}

	return groups, total, nil
}

// paymentHistoryCount число групп без учёта страницы.
func paymentHistoryCount(filter repository.PaymentHistoryFilter) squirrel.SelectBuilder {
	return applyPaymentHistoryFilter(
		psql.Select("COUNT(DISTINCT pl.gig_id)").From("payment_logs pl").Join("gigs g ON g.id = pl.gig_id"),
		filter,
	)
}

func paymentHistoryPage(filter repository.PaymentHistoryFilter) squirrel.SelectBuilder {
	builder := psql.
		Select(
			"pl.gig_id",
			"g.title AS gig_title",
			"g.status AS gig_status",
			"u.id AS provider_id",
			"u.display_name AS provider_name",
			"u.email AS provider_email",
			"COALESCE(SUM(pl.amount) FILTER (WHERE pl.status = 'Success'), 0) AS total_paid",
			"MAX(pl.created_at) AS last_paid",
		).
		From("payment_logs pl").
		Join("gigs g ON g.id = pl.gig_id").
		// исполнитель: назначенный отклик либо принятый создателем гига
		LeftJoin("bids b ON b.gig_id = g.id AND (b.id = g.assigned_to_bid OR (g.assigned_to_bid IS NULL AND b.status IN ('Accepted', 'Approved')))").
		LeftJoin("users u ON u.id = b.created_by")
	builder = applyPaymentHistoryFilter(builder, filter).
		GroupBy("pl.gig_id", "g.title", "g.status", "u.id", "u.display_name", "u.email").
		OrderBy("last_paid DESC", "pl.gig_id")

	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}
	return builder
}

func applyPaymentHistoryFilter(builder squirrel.SelectBuilder, filter repository.PaymentHistoryFilter) squirrel.SelectBuilder {
	builder = builder.Where(squirrel.Eq{"pl.created_by": filter.PayerID})
	if len(filter.Statuses) > 0 {
		builder = builder.Where(squirrel.Eq{"g.status": statusStrings(filter.Statuses)})
	}
	return builder
}

type transferRow struct {
	ID                 uuid.UUID       `db:"id"`
	GigID              uuid.UUID       `db:"gig_id"`
	ProviderID         uuid.UUID       `db:"provider_id"`
	CreatedBy          uuid.UUID       `db:"created_by"`
	Amount             decimal.Decimal `db:"amount"`
	Currency           string          `db:"currency"`
	ExternalTransferID string          `db:"external_transfer_id"`
	DestinationAccount string          `db:"destination_account"`
	Status             string          `db:"status"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

func (r transferRow) toEntity() *entity.Transfer {
	return &entity.Transfer{
		ID:                 r.ID,
		GigID:              r.GigID,
		ProviderID:         r.ProviderID,
		CreatedBy:          r.CreatedBy,
		Amount:             r.Amount,
		Currency:           r.Currency,
		ExternalTransferID: r.ExternalTransferID,
		DestinationAccount: r.DestinationAccount,
		Status:             valueobject.TransferStatus(r.Status),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

const transferColumns = `id, gig_id, provider_id, created_by, amount, currency, external_transfer_id,
	destination_account, status, created_at, updated_at`

type TransferRepositoryAdapter struct {
	db *sqlx.DB
}

var _ repository.TransferRepository = (*TransferRepositoryAdapter)(nil)

func NewTransferRepositoryAdapter(db *sqlx.DB) *TransferRepositoryAdapter {
	return &TransferRepositoryAdapter{db: db}
}

func (r *TransferRepositoryAdapter) Create(ctx context.Context, transfer *entity.Transfer) error {
	query := `
		INSERT INTO transfers (id, gig_id, provider_id, created_by, amount, currency, external_transfer_id, destination_account, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		transfer.ID,
		transfer.GigID,
		transfer.ProviderID,
		transfer.CreatedBy,
		transfer.Amount,
		transfer.Currency,
		transfer.ExternalTransferID,
		transfer.DestinationAccount,
		string(transfer.Status),
		transfer.CreatedAt,
		transfer.UpdatedAt,
	)
	if err != nil {
		return dbError(err, "failed to record transfer")
	}
	return nil
}

func (r *TransferRepositoryAdapter) UpdateStatusByExternalID(ctx context.Context, externalID string, status valueobject.TransferStatus) (*entity.Transfer, error) {
	query := `
		UPDATE transfers SET status = $2, updated_at = NOW()
		WHERE external_transfer_id = $1
		RETURNING ` + transferColumns

	var row transferRow
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &row, query, externalID, string(status)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrTransferNotFound
		}
		return nil, dbError(err, "failed to update transfer")
	}
	return row.toEntity(), nil
}

func (r *TransferRepositoryAdapter) ListByGig(ctx context.Context, gigID uuid.UUID) ([]*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE gig_id = $1 ORDER BY created_at ASC`

	var rows []transferRow
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &rows, query, gigID); err != nil {
		return nil, dbError(err, "failed to list transfers")
	}

	transfers := make([]*entity.Transfer, 0, len(rows))
	for _, row := range rows {
		transfers = append(transfers, row.toEntity())
	}
	return transfers, nil
}
