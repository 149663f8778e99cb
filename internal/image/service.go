package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/explore-grabby/booking-backend/internal/entity"
	"github.com/explore-grabby/booking-backend/internal/logger"
	"github.com/explore-grabby/booking-backend/internal/pkg/apperror"
	"github.com/explore-grabby/booking-backend/internal/pkg/storage"
)

var (
	ErrEmptyFile       = apperror.New(http.StatusBadRequest, "image_empty", "image file is empty")
	ErrUnsupportedType = apperror.New(http.StatusBadRequest, "image_unsupported_type", "file is not a supported image")
	ErrTooLarge        = apperror.New(http.StatusRequestEntityTooLarge, "image_too_large", "image file is too large")
	ErrNoImage         = apperror.New(http.StatusNotFound, "image_not_found", "no image available")
)

const (
	defaultPath = "entities/default.jpg"

	// MaxUploadBytes bounds what is read from an upload before decoding.
	MaxUploadBytes = 10 << 20
)

func entityPath(entityID string) string {
	return "entities/" + entityID + ".jpg"
}

// EntityFinder is the part of the catalog the image service needs.
type EntityFinder interface {
	GetByID(ctx context.Context, id string) (*entity.Entity, error)
}

type Service interface {
	Upload(ctx context.Context, entityID string, content io.Reader) error
	HasImage(ctx context.Context, entityID string) (bool, error)
	// Open returns the entity's image, or the default image when it has none.
	Open(ctx context.Context, entityID string) (io.ReadCloser, error)
	OpenDefault(ctx context.Context) (io.ReadCloser, error)
	UploadDefault(ctx context.Context, content io.Reader) error
	Delete(ctx context.Context, entityID string) error
}

type service struct {
	storage  storage.Storage
	entities EntityFinder
	imgProc  *storage.ImageProcessor
}

func NewService(store storage.Storage, entities EntityFinder) Service {
	return &service{
		storage:  store,
		entities: entities,
		imgProc:  storage.NewImageProcessor(),
	}
}

func (s *service) Upload(ctx context.Context, entityID string, content io.Reader) error {
	if _, err := s.entities.GetByID(ctx, entityID); err != nil {
		return err
	}
	return s.save(ctx, entityPath(entityID), content)
}

func (s *service) UploadDefault(ctx context.Context, content io.Reader) error {
	return s.save(ctx, defaultPath, content)
}

func (s *service) save(ctx context.Context, path string, content io.Reader) error {
	raw, err := io.ReadAll(io.LimitReader(content, MaxUploadBytes+1))
	if err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	if len(raw) == 0 {
		return ErrEmptyFile
	}
	if len(raw) > MaxUploadBytes {
		return ErrTooLarge
	}

	normalized, err := s.imgProc.Normalize(bytes.NewReader(raw))
	if err != nil {
		logger.Debug("image upload rejected", "path", path, "error", err)
		return ErrUnsupportedType
	}

	if err := s.storage.Save(ctx, path, normalized); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

func (s *service) HasImage(ctx context.Context, entityID string) (bool, error) {
	return s.storage.Exists(ctx, entityPath(entityID))
}

func (s *service) Open(ctx context.Context, entityID string) (io.ReadCloser, error) {
	if _, err := s.entities.GetByID(ctx, entityID); err != nil {
		return nil, err
	}
	rc, err := s.storage.Get(ctx, entityPath(entityID))
	if errors.Is(err, storage.ErrNotExist) {
		return s.OpenDefault(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return rc, nil
}

func (s *service) OpenDefault(ctx context.Context) (io.ReadCloser, error) {
	rc, err := s.storage.Get(ctx, defaultPath)
	if errors.Is(err, storage.ErrNotExist) {
		return nil, ErrNoImage
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open default image: %w", err)
	}
	return rc, nil
}

func (s *service) Delete(ctx context.Context, entityID string) error {
	return s.storage.Delete(ctx, entityPath(entityID))
}
