package gig

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/logger"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/common"
	"github.com/sirupsen/logrus"
)

type AttachmentKind string

const (
	AttachmentImage         AttachmentKind = "image"
	AttachmentCertification AttachmentKind = "certification"
)

type AddAttachmentInput struct {
	GigID    uuid.UUID
	ActorID  uuid.UUID
	Kind     AttachmentKind
	FileName string
	Content  io.Reader
}

type AddAttachmentUseCase struct {
	gigRepo  repository.GigRepository
	userRepo repository.UserRepository
	tx       repository.Transactor
	storage  repository.AttachmentStorage
	clock    common.Clock
}

func NewAddAttachmentUseCase(
	gigRepo repository.GigRepository,
	userRepo repository.UserRepository,
	tx repository.Transactor,
	storage repository.AttachmentStorage,
	clock common.Clock,
) *AddAttachmentUseCase {
	return &AddAttachmentUseCase{gigRepo: gigRepo, userRepo: userRepo, tx: tx, storage: storage, clock: clock}
}

func (uc *AddAttachmentUseCase) Execute(ctx context.Context, input AddAttachmentInput) (*entity.Gig, error) {
	if input.Kind != AttachmentImage && input.Kind != AttachmentCertification {
		return nil, apperror.InvalidRequest("Attachment kind must be image or certification")
	}

	user, err := common.ResolveUser(ctx, uc.userRepo, input.ActorID)
	if err != nil {
		return nil, err
	}

	gig, err := uc.gigRepo.FindByID(ctx, input.GigID)
	if err != nil {
		return nil, err
	}
	if !user.Role.IsAdmin() && !gig.IsOwnedBy(user.ID) {
		return nil, apperror.Forbidden("Only the gig creator can add attachments")
	}

	uri, err := uc.storage.Save(ctx, gig.ID, input.FileName, input.Content)
	if err != nil {
		return nil, err
	}
	if input.Kind == AttachmentImage && !isImageURI(uri) {
		uc.discard(ctx, uri)
		return nil, apperror.InvalidRequest("Gig images must be jpeg, png, webp or gif")
	}

	var updated *entity.Gig
	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := uc.gigRepo.FindByIDForUpdate(ctx, gig.ID)
		if err != nil {
			return err
		}
		if input.Kind == AttachmentImage {
			locked.Images = append(locked.Images, uri)
		} else {
			locked.Certifications = append(locked.Certifications, uri)
		}
		locked.UpdatedAt = uc.clock.Now()
		updated = locked
		return uc.gigRepo.Update(ctx, locked)
	})
	if err != nil {
		uc.discard(ctx, uri)
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"gig_id":   gig.ID,
		"actor_id": user.ID,
		"kind":     input.Kind,
	}).Info("gig: вложение добавлено")
	return updated, nil
}

func (uc *AddAttachmentUseCase) discard(ctx context.Context, uri string) {
	if err := uc.storage.Delete(ctx, uri); err != nil {
		logger.Get().WithError(err).WithField("uri", uri).Warn("gig: не удалось удалить осиротевшее вложение")
	}
}

func isImageURI(uri string) bool {
	switch strings.ToLower(path.Ext(uri)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return true
	}
	return false
}
