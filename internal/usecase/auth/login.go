package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/logger"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/common"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type LoginUseCase struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
}

func NewLoginUseCase(userRepo repository.UserRepository, tokens TokenIssuer) *LoginUseCase {
	return &LoginUseCase{userRepo: userRepo, tokens: tokens}
}

func (uc *LoginUseCase) Execute(ctx context.Context, email, password string) (*Result, error) {
	user, err := uc.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.WithFields(logrus.Fields{"user_id": user.ID}).Debug("auth: неверный пароль")
		return nil, apperror.ErrInvalidCredentials
	}

	tokens, err := uc.tokens.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to issue tokens")
	}
	return &Result{User: user, Tokens: tokens}, nil
}

type RefreshUseCase struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
}

func NewRefreshUseCase(userRepo repository.UserRepository, tokens TokenIssuer) *RefreshUseCase {
	return &RefreshUseCase{userRepo: userRepo, tokens: tokens}
}

// Execute выдаёт новую пару по refresh токену. Роль берётся из актуальной записи пользователя.
func (uc *RefreshUseCase) Execute(ctx context.Context, refreshToken string) (*Result, error) {
	userID, err := uc.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid refresh token")
	}

	user, err := common.ResolveUser(ctx, uc.userRepo, userID)
	if err != nil {
		return nil, err
	}

	tokens, err := uc.tokens.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to issue tokens")
	}
	return &Result{User: user, Tokens: tokens}, nil
}

type GetMeUseCase struct {
	userRepo repository.UserRepository
}

func NewGetMeUseCase(userRepo repository.UserRepository) *GetMeUseCase {
	return &GetMeUseCase{userRepo: userRepo}
}

func (uc *GetMeUseCase) Execute(ctx context.Context, actorID uuid.UUID) (*entity.User, error) {
	return common.ResolveUser(ctx, uc.userRepo, actorID)
}
