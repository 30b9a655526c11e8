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

const gigColumns = `id, title, description, tier, price, time_estimate, keywords, skills, images,
	certifications, status, created_by, created_by_role, is_public, assigned_to_bid, created_at, updated_at`

type gigRow struct {
	ID             uuid.UUID       `db:"id"`
	Title          string          `db:"title"`
	Description    string          `db:"description"`
	Tier           string          `db:"tier"`
	Price          decimal.Decimal `db:"price"`
	TimeEstimate   string          `db:"time_estimate"`
	Keywords       pq.StringArray  `db:"keywords"`
	Skills         pq.StringArray  `db:"skills"`
	Images         pq.StringArray  `db:"images"`
	Certifications pq.StringArray  `db:"certifications"`
	Status         string          `db:"status"`
	CreatedBy      uuid.UUID       `db:"created_by"`
	CreatedByRole  string          `db:"created_by_role"`
	IsPublic       bool            `db:"is_public"`
	AssignedToBid  uuid.NullUUID   `db:"assigned_to_bid"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (r gigRow) toEntity() *entity.Gig {
	gig := &entity.Gig{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description,
		Tier:           r.Tier,
		Price:          r.Price,
		TimeEstimate:   r.TimeEstimate,
		Keywords:       []string(r.Keywords),
		Skills:         []string(r.Skills),
		Images:         []string(r.Images),
		Certifications: []string(r.Certifications),
		Status:         valueobject.GigStatus(r.Status),
		CreatedBy:      r.CreatedBy,
		CreatedByRole:  valueobject.Role(r.CreatedByRole),
		IsPublic:       r.IsPublic,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.AssignedToBid.Valid {
		id := r.AssignedToBid.UUID
		gig.AssignedToBid = &id
	}
	return gig
}

type statusChangeRow struct {
	ID             uuid.UUID     `db:"id"`
	GigID          uuid.UUID     `db:"gig_id"`
	BidID          uuid.NullUUID `db:"bid_id"`
	PreviousStatus string        `db:"previous_status"`
	Status         string        `db:"status"`
	ActorID        uuid.UUID     `db:"actor_id"`
	ActorName      string        `db:"actor_name"`
	ActorRole      string        `db:"actor_role"`
	Description    string        `db:"description"`
	CreatedAt      time.Time     `db:"created_at"`
}

func (r statusChangeRow) toEntity() entity.StatusChange {
	change := entity.StatusChange{
		ID:             r.ID,
		GigID:          r.GigID,
		PreviousStatus: r.PreviousStatus,
		Status:         r.Status,
		ActorID:        r.ActorID,
		ActorName:      r.ActorName,
		ActorRole:      valueobject.Role(r.ActorRole),
		Description:    r.Description,
		CreatedAt:      r.CreatedAt,
	}
	if r.BidID.Valid {
		id := r.BidID.UUID
		change.BidID = &id
	}
	return change
}

type GigRepositoryAdapter struct {
	db *sqlx.DB
}

var _ repository.GigRepository = (*GigRepositoryAdapter)(nil)

func NewGigRepositoryAdapter(db *sqlx.DB) *GigRepositoryAdapter {
	return &GigRepositoryAdapter{db: db}
}

func (r *GigRepositoryAdapter) Create(ctx context.Context, gig *entity.Gig) error {
	query, args, err := psql.Insert("gigs").
		Columns("id", "title", "description", "tier", "price", "time_estimate", "keywords", "skills",
			"images", "certifications", "status", "created_by", "created_by_role", "is_public",
			"assigned_to_bid", "created_at", "updated_at").
		Values(gig.ID, gig.Title, gig.Description, gig.Tier, gig.Price, gig.TimeEstimate,
			pq.Array(gig.Keywords), pq.Array(gig.Skills), pq.Array(gig.Images), pq.Array(gig.Certifications),
			string(gig.Status), gig.CreatedBy, string(gig.CreatedByRole), gig.IsPublic,
			nullableID(gig.AssignedToBid), gig.CreatedAt, gig.UpdatedAt).
		ToSql()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "failed to build gig insert")
	}

	if _, err := conn(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return dbError(err, "failed to create gig")
	}
	return nil
}

func (r *GigRepositoryAdapter) Update(ctx context.Context, gig *entity.Gig) error {
	query := `
		UPDATE gigs
		SET title = $2, description = $3, tier = $4, price = $5, time_estimate = $6,
		    keywords = $7, skills = $8, images = $9, certifications = $10,
		    status = $11, is_public = $12, assigned_to_bid = $13, updated_at = $14
		WHERE id = $1
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		gig.ID,
		gig.Title,
		gig.Description,
		gig.Tier,
		gig.Price,
		gig.TimeEstimate,
		pq.Array(gig.Keywords),
		pq.Array(gig.Skills),
		pq.Array(gig.Images),
		pq.Array(gig.Certifications),
		string(gig.Status),
		gig.IsPublic,
		nullableID(gig.AssignedToBid),
		gig.UpdatedAt,
	)
	if err != nil {
		return dbError(err, "failed to update gig")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to check gig update")
	}
	if rows == 0 {
		return apperror.ErrGigNotFound
	}
	return nil
}

func (r *GigRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Gig, error) {
	return r.find(ctx, id, "")
}

func (r *GigRepositoryAdapter) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Gig, error) {
	return r.find(ctx, id, "FOR UPDATE")
}

func (r *GigRepositoryAdapter) find(ctx context.Context, id uuid.UUID, suffix string) (*entity.Gig, error) {
	builder := psql.Select(gigColumns).From("gigs").Where(squirrel.Eq{"id": id})
	if suffix != "" {
		builder = builder.Suffix(suffix)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to build gig query")
	}

	var row gigRow
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrGigNotFound
		}
		return nil, dbError(err, "failed to load gig")
	}

	gig := row.toEntity()
	history, err := r.ListStatusHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	gig.StatusHistory = history
	return gig, nil
}

func (r *GigRepositoryAdapter) List(ctx context.Context, filter repository.GigFilter) ([]*entity.Gig, int, error) {
	total, err := countRows(ctx, conn(ctx, r.db), applyGigFilter(psql.Select("COUNT(*)").From("gigs"), filter), "failed to count gigs")
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*entity.Gig{}, 0, nil
	}

	builder := applyGigFilter(psql.Select(gigColumns).From("gigs"), filter).OrderBy("created_at DESC")
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to build gig list query")
	}

	var rows []gigRow
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &rows, query, args...); err != nil {
		return nil, 0, dbError(err, "failed to list gigs")
	}

	gigs := make([]*entity.Gig, 0, len(rows))
	for _, row := range rows {
		gigs = append(gigs, row.toEntity())
	}
	return gigs, total, nil
}

func applyGigFilter(builder squirrel.SelectBuilder, filter repository.GigFilter) squirrel.SelectBuilder {
	if filter.CreatedBy != nil {
		builder = builder.Where(squirrel.Eq{"created_by": *filter.CreatedBy})
	}
	if filter.OnlyPublic {
		builder = builder.Where(squirrel.Eq{"is_public": true})
	}
	if filter.CreatedByRole != "" {
		builder = builder.Where(squirrel.Eq{"created_by_role": string(filter.CreatedByRole)})
	}
	if len(filter.Statuses) > 0 {
		builder = builder.Where(squirrel.Eq{"status": statusStrings(filter.Statuses)})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"description": pattern},
		})
	}
	if filter.Skill != "" {
		builder = builder.Where("? = ANY(skills)", filter.Skill)
	}
	return builder
}

func (r *GigRepositoryAdapter) AppendStatusChange(ctx context.Context, change *entity.StatusChange) error {
	query := `
		INSERT INTO gig_status_history (id, gig_id, bid_id, previous_status, status, actor_id, actor_name, actor_role, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		change.ID,
		change.GigID,
		nullableID(change.BidID),
		change.PreviousStatus,
		change.Status,
		change.ActorID,
		change.ActorName,
		string(change.ActorRole),
		change.Description,
		change.CreatedAt,
	)
	if err != nil {
		return dbError(err, "failed to append status history")
	}
	return nil
}

func (r *GigRepositoryAdapter) ListStatusHistory(ctx context.Context, gigID uuid.UUID) ([]entity.StatusChange, error) {
	query := `
		SELECT id, gig_id, bid_id, previous_status, status, actor_id, actor_name, actor_role, description, created_at
		FROM gig_status_history
		WHERE gig_id = $1
		ORDER BY created_at ASC, id ASC
	`

	var rows []statusChangeRow
	if err := sqlx.SelectContext(ctx, conn(ctx, r.db), &rows, query, gigID); err != nil {
		return nil, dbError(err, "failed to load status history")
	}

	history := make([]entity.StatusChange, 0, len(rows))
	for _, row := range rows {
		history = append(history, row.toEntity())
	}
	return history, nil
}

func (r *GigRepositoryAdapter) CountCreatedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM gigs WHERE created_by = $1 AND created_at >= $2`
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &count, query, userID, since); err != nil {
		return 0, dbError(err, "failed to count gigs")
	}
	return count, nil
}

func nullableID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func statusStrings(statuses []valueobject.GigStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
