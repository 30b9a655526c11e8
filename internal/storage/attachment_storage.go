package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"
)

// URLPrefix префикс, под которым роутер раздаёт сохранённые файлы.
const URLPrefix = "/media"

// разрешённые типы по магическим байтам
var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"image/gif":       true,
	"application/pdf": true,
}

var _ repository.AttachmentStorage = (*AttachmentStorage)(nil)

// AttachmentStorage файловое хранилище вложений гигов.
type AttachmentStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// NewAttachmentStorage создаёт файловое хранилище.
func NewAttachmentStorage(rootPath string, maxUploadMB int64) (*AttachmentStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &AttachmentStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Root каталог с файлами для раздачи статикой.
func (s *AttachmentStorage) Root() string {
	return s.rootPath
}

// Save проверяет реальный тип файла и сохраняет его в каталог владельца.
// Возвращает URI вида /media/<owner>/<file>.
func (s *AttachmentStorage) Save(ctx context.Context, ownerID uuid.UUID, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// первые 512 байт для проверки магических байтов
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", apperror.Wrap(err, apperror.ErrCodeBadRequest, "Failed to read uploaded file")
	}
	if n == 0 {
		return "", apperror.InvalidRequest("File cannot be empty")
	}
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown || !allowedMimeTypes[kind.MIME.Value] {
		return "", apperror.InvalidRequest("Unsupported file type. Allowed: jpeg, png, webp, gif, pdf")
	}

	base := sanitizeFilename(originalName)
	if base = strings.TrimSuffix(base, filepath.Ext(base)); base == "" {
		base = "attachment"
	}
	fileName := fmt.Sprintf("%s_%d.%s", base, time.Now().UnixNano(), kind.Extension)

	ownerDir := filepath.Join(s.rootPath, ownerID.String())
	if err := os.MkdirAll(ownerDir, 0o755); err != nil {
		return "", fmt.Errorf("storage: не удалось создать каталог владельца: %w", err)
	}

	targetPath := filepath.Join(ownerDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limited := io.LimitedReader{R: io.MultiReader(bytes.NewReader(head), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limited)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return "", apperror.Newf(apperror.ErrCodeBadRequest, "File exceeds the %d MB limit", s.maxUploadBytes/(1024*1024))
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return path.Join(URLPrefix, ownerID.String(), fileName), nil
}

// Delete удаляет файл по URI, выданному Save.
func (s *AttachmentStorage) Delete(ctx context.Context, uri string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cleaned := path.Clean(uri)
	relative := strings.TrimPrefix(cleaned, URLPrefix+"/")
	if relative == cleaned || relative == "" || strings.Contains(relative, "..") {
		return fmt.Errorf("storage: некорректный URI %q", uri)
	}

	target := filepath.Join(s.rootPath, filepath.FromSlash(relative))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." {
		name = "attachment"
	}
	return name
}
