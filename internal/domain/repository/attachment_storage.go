package repository

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// AttachmentStorage файловое хранилище вложений гига. Возвращает непрозрачный URI.
type AttachmentStorage interface {
	Save(ctx context.Context, ownerID uuid.UUID, originalName string, r io.Reader) (string, error)
	Delete(ctx context.Context, uri string) error
}
