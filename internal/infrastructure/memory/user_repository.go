package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
)

type UserRepository struct {
	s *Store
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	return r.s.write(ctx, func() error {
		for _, u := range r.s.users {
			if strings.EqualFold(u.Email, user.Email) {
				return apperror.New(apperror.ErrCodeConflict, "Email is already registered")
			}
		}
		c := *user
		r.s.users[user.ID] = &c
		return nil
	})
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	return r.s.write(ctx, func() error {
		if _, ok := r.s.users[user.ID]; !ok {
			return apperror.ErrUserNotFound
		}
		c := *user
		r.s.users[user.ID] = &c
		return nil
	})
}

func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id })
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	email = strings.TrimSpace(email)
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepository) FindByPayoutAccountID(_ context.Context, accountID string) (*entity.User, error) {
	if accountID == "" {
		return nil, apperror.ErrUserNotFound
	}
	return r.find(func(u *entity.User) bool { return u.PayoutAccountID == accountID })
}

func (r *UserRepository) find(match func(*entity.User) bool) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, apperror.ErrUserNotFound
}

func containsStatus(statuses []valueobject.GigStatus, s valueobject.GigStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

func containsFold(values []string, needle string) bool {
	for _, v := range values {
		if strings.EqualFold(v, needle) {
			return true
		}
	}
	return false
}
