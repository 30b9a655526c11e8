package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/gig-marketplace/internal/logger"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/gig-marketplace/internal/service"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/common"
	"github.com/ignatzorin/gig-marketplace/internal/validation"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer выпуск и проверка пары токенов.
type TokenIssuer interface {
	GeneratePair(user *entity.User) (*service.TokenPair, error)
	ParseRefresh(token string) (uuid.UUID, error)
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        string
}

// Result пользователь и выданные ему токены.
type Result struct {
	User   *entity.User
	Tokens *service.TokenPair
}

type RegisterUseCase struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	clock    common.Clock
}

func NewRegisterUseCase(userRepo repository.UserRepository, tokens TokenIssuer, clock common.Clock) *RegisterUseCase {
	return &RegisterUseCase{userRepo: userRepo, tokens: tokens, clock: clock}
}

func (uc *RegisterUseCase) Execute(ctx context.Context, in RegisterInput) (*Result, error) {
	if in.Role == "" {
		in.Role = string(valueobject.RoleUser)
	}
	role, err := valueobject.NewSelfServiceRole(in.Role)
	if err != nil {
		return nil, err
	}

	user, err := newAccount(ctx, uc.userRepo, in.Email, in.Password, in.DisplayName, role, uc.clock)
	if err != nil {
		return nil, err
	}

	tokens, err := uc.tokens.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to issue tokens")
	}

	logger.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("auth: пользователь зарегистрирован")
	return &Result{User: user, Tokens: tokens}, nil
}

// newAccount проверяет данные, хэширует пароль и сохраняет пользователя.
func newAccount(ctx context.Context, users repository.UserRepository, email, password, displayName string, role valueobject.Role, clock common.Clock) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateDisplayName(displayName); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	if _, err := users.FindByEmail(ctx, email); err == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "Email is already registered")
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to hash password")
	}

	user, err := entity.NewUser(email, displayName, string(hash), role, clock.Now())
	if err != nil {
		return nil, err
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateAdminUseCase заводит администратора; доступен только из CLI.
type CreateAdminUseCase struct {
	userRepo repository.UserRepository
	clock    common.Clock
}

func NewCreateAdminUseCase(userRepo repository.UserRepository, clock common.Clock) *CreateAdminUseCase {
	return &CreateAdminUseCase{userRepo: userRepo, clock: clock}
}

func (uc *CreateAdminUseCase) Execute(ctx context.Context, email, password, displayName string) (*entity.User, error) {
	user, err := newAccount(ctx, uc.userRepo, email, password, displayName, valueobject.RoleAdmin, uc.clock)
	if err != nil {
		return nil, err
	}
	// админ не ограничен квотами, но план фиксируем явно
	user.SetPlan(valueobject.PlanPro, uc.clock.Now())
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{"user_id": user.ID}).Warn("auth: создан администратор")
	return user, nil
}
