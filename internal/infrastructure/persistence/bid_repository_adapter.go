package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const bidColumns = `id, gig_id, created_by, bid_amount, bid_amount_type, description, status,
	associated_other_gig, created_at, updated_at`

type bidRow struct {
	ID                 uuid.UUID       `db:"id"`
	GigID              uuid.UUID       `db:"gig_id"`
	CreatedBy          uuid.UUID       `db:"created_by"`
	BidAmount          decimal.Decimal `db:"bid_amount"`
	BidAmountType      string          `db:"bid_amount_type"`
	Description        string          `db:"description"`
	Status             string          `db:"status"`
	AssociatedOtherGig uuid.NullUUID   `db:"associated_other_gig"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

func (r bidRow) toEntity() *entity.Bid {
	bid := &entity.Bid{
		ID:            r.ID,
		GigID:         r.GigID,
		CreatedBy:     r.CreatedBy,
		BidAmount:     r.BidAmount,
		BidAmountType: r.BidAmountType,
		Description:   r.Description,
		Status:        valueobject.BidStatus(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.AssociatedOtherGig.Valid {
		id := r.AssociatedOtherGig.UUID
		bid.AssociatedOtherGig = &id
	}
	return bid
}

type BidRepositoryAdapter struct {
	db *sqlx.DB
}

var _ repository.BidRepository = (*BidRepositoryAdapter)(nil)

func NewBidRepositoryAdapter(db *sqlx.DB) *BidRepositoryAdapter {
	return &BidRepositoryAdapter{db: db}
}

func (r *BidRepositoryAdapter) Create(ctx context.Context, bid *entity.Bid) error {
	query := `
		INSERT INTO bids (id, gig_id, created_by, bid_amount, bid_amount_type, description, status, associated_other_gig, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		bid.ID,
		bid.GigID,
		bid.CreatedBy,
		bid.BidAmount,
		bid.BidAmountType,
		bid.Description,
		string(bid.Status),
		nullableID(bid.AssociatedOtherGig),
		bid.CreatedAt,
		bid.UpdatedAt,
	)
	if err != nil {
		return dbError(err, "failed to create bid")
	}
	return nil
}

func (r *BidRepositoryAdapter) Update(ctx context.Context, bid *entity.Bid) error {
	query := `
		UPDATE bids
		SET bid_amount = $2, bid_amount_type = $3, description = $4, status = $5,
		    associated_other_gig = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		bid.ID,
		bid.BidAmount,
		bid.BidAmountType,
		bid.Description,
		string(bid.Status),
		nullableID(bid.AssociatedOtherGig),
		bid.UpdatedAt,
	)
	if err != nil {
		return dbError(err, "failed to update bid")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to check bid update")
	}
	if rows == 0 {
		return apperror.ErrBidNotFound
	}
	return nil
}

func (r *BidRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	var row bidRow
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrBidNotFound
		}
		return nil, dbError(err, "failed to load bid")
	}
	return row.toEntity(), nil
}

func (r *BidRepositoryAdapter) FindByGigID(ctx context.Context, gigID uuid.UUID) ([]*entity.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE gig_id = $1 ORDER BY created_at ASC`
	return r.selectBids(ctx, query, gigID)
}

func (r *BidRepositoryAdapter) FindByCreator(ctx context.Context, userID uuid.UUID) ([]*entity.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE created_by = $1 ORDER BY created_at DESC`
	return r.selectBids(ctx, query, userID)
}

func (r *BidRepositoryAdapter) selectBids(ctx context.Context, query string, args ...any) ([]*entity.Bid, error) {
	var rows []bidRow
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &rows, query, args...); err != nil {
		return nil, dbError(err, "failed to list bids")
	}

	bids := make([]*entity.Bid, 0, len(rows))
	for _, row := range rows {
		bids = append(bids, row.toEntity())
	}
	return bids, nil
}

func (r *BidRepositoryAdapter) UpdateStatusExcept(ctx context.Context, gigID, exceptID uuid.UUID, status valueobject.BidStatus, at time.Time) (int, error) {
	query := `UPDATE bids SET status = $3, updated_at = $4 WHERE gig_id = $1 AND id <> $2`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, gigID, exceptID, string(status), at)
	if err != nil {
		return 0, dbError(err, "failed to update sibling bids")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to check sibling bids update")
	}
	return int(rows), nil
}

func (r *BidRepositoryAdapter) CountCreatedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM bids WHERE created_by = $1 AND created_at >= $2`
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &count, query, userID, since); err != nil {
		return 0, dbError(err, "failed to count bids")
	}
	return count, nil
}
