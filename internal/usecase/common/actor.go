package common

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
)

// Clock источник текущего времени; в тестах подменяется фиксированным.
type Clock func() time.Time

func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// ResolveUser загружает пользователя-инициатора. Неизвестный пользователь считается неаутентифицированным.
func ResolveUser(ctx context.Context, users repository.UserRepository, userID uuid.UUID) (*entity.User, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	user, err := users.FindByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// Notify отправляет событие, если нотификатор подключён.
func Notify(n repository.Notifier, userID uuid.UUID, event string, payload any) {
	if n == nil || userID == uuid.Nil {
		return
	}
	n.Notify(userID, event, payload)
}
