package persistence

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, email, display_name, password_hash, role, plan, payout_account_id,
	payout_account_status, created_at, updated_at`

type userRow struct {
	ID                  uuid.UUID `db:"id"`
	Email               string    `db:"email"`
	DisplayName         string    `db:"display_name"`
	PasswordHash        string    `db:"password_hash"`
	Role                string    `db:"role"`
	Plan                string    `db:"plan"`
	PayoutAccountID     string    `db:"payout_account_id"`
	PayoutAccountStatus string    `db:"payout_account_status"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

func (r userRow) toEntity() *entity.User {
	return &entity.User{
		ID:                  r.ID,
		Email:               r.Email,
		DisplayName:         r.DisplayName,
		PasswordHash:        r.PasswordHash,
		Role:                valueobject.Role(r.Role),
		Plan:                valueobject.PlanTier(r.Plan),
		PayoutAccountID:     r.PayoutAccountID,
		PayoutAccountStatus: valueobject.PayoutAccountStatus(r.PayoutAccountStatus),
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

type UserRepositoryAdapter struct {
	db *sqlx.DB
}

var _ repository.UserRepository = (*UserRepositoryAdapter)(nil)

func NewUserRepositoryAdapter(db *sqlx.DB) *UserRepositoryAdapter {
	return &UserRepositoryAdapter{db: db}
}

func (r *UserRepositoryAdapter) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, display_name, password_hash, role, plan, payout_account_id, payout_account_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		string(user.Role),
		string(user.Plan),
		user.PayoutAccountID,
		string(user.PayoutAccountStatus),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return dbError(err, "failed to create user")
	}
	return nil
}

func (r *UserRepositoryAdapter) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET display_name = $2, role = $3, plan = $4, payout_account_id = $5,
		    payout_account_status = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		user.ID,
		user.DisplayName,
		string(user.Role),
		string(user.Plan),
		user.PayoutAccountID,
		string(user.PayoutAccountStatus),
		user.UpdatedAt,
	)
	if err != nil {
		return dbError(err, "failed to update user")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to check user update")
	}
	if rows == 0 {
		return apperror.ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *UserRepositoryAdapter) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, `WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepositoryAdapter) FindByPayoutAccountID(ctx context.Context, accountID string) (*entity.User, error) {
	if accountID == "" {
		return nil, apperror.ErrUserNotFound
	}
	return r.findOne(ctx, `WHERE payout_account_id = $1`, accountID)
}

func (r *UserRepositoryAdapter) findOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	var row userRow
	query := `SELECT ` + userColumns + ` FROM users ` + where
	if err := sqlx.GetContext(ctx, conn(ctx, r.db), &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, dbError(err, "failed to load user")
	}
	return row.toEntity(), nil
}
