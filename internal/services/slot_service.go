package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"quiz-admin/internal/config"
	"quiz-admin/internal/models"
	"quiz-admin/internal/repository"
	"quiz-admin/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Upload is an incoming workbook as received from the transport layer.
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Content     io.Reader
}

// SlotService keeps at most one stored file per (kind, owner, language).
type SlotService interface {
	Put(ctx context.Context, kind models.ResourceKind, ownerID uint, lang models.Language, upload *Upload, uploadedBy *uint) (*models.FileSlot, error)
	Get(ctx context.Context, kind models.ResourceKind, ownerID uint, lang models.Language) (*models.FileSlot, error)
	GetByID(ctx context.Context, kind models.ResourceKind, id uint) (*models.FileSlot, error)
	List(ctx context.Context, kind models.ResourceKind, ownerID uint) ([]models.FileSlot, error)
	ListByOwners(ctx context.Context, kind models.ResourceKind, ownerIDs []uint) ([]models.FileSlot, error)
	ListKind(ctx context.Context, kind models.ResourceKind) ([]models.FileSlot, error)
	Delete(ctx context.Context, kind models.ResourceKind, ownerID uint, lang models.Language) error
	DeleteByID(ctx context.Context, kind models.ResourceKind, id uint) error
	Open(ctx context.Context, slot *models.FileSlot) (io.ReadCloser, int64, error)

	// Discard unlinks the blobs of slots whose metadata is already gone.
	Discard(ctx context.Context, slots []models.FileSlot)
}

type slotService struct {
	repo   repository.SlotRepository
	store  storage.BlobStore
	rules  config.UploadRules
	logger *logrus.Logger
	locks  *keyedMutex
	now    func() time.Time
}

func NewSlotService(repo repository.SlotRepository, store storage.BlobStore, rules config.UploadRules, logger *logrus.Logger) SlotService {
	return &slotService{
		repo:   repo,
		store:  store,
		rules:  rules,
		logger: logger,
		locks:  newKeyedMutex(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func slotLockKey(kind models.ResourceKind, ownerID uint, lang models.Language) string {
	return fmt.Sprintf("%s:%d:%s", kind, ownerID, lang)
}

func (s *slotService) rule(kind models.ResourceKind) (config.UploadRule, error) {
	if !kind.Valid() {
		return config.UploadRule{}, fmt.Errorf("unknown resource kind %q", kind)
	}
	rule, ok := s.rules[string(kind)]
	if !ok {
		return config.UploadRule{}, fmt.Errorf("no upload rule for %q", kind)
	}
	return rule, nil
}

// validateUpload returns the normalized extension of an acceptable upload.
func validateUpload(rule config.UploadRule, upload *Upload) (string, error) {
	if upload == nil || upload.Content == nil || upload.Size <= 0 {
		return "", ErrFileRequired
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if !containsFold(rule.Extensions, ext) {
		return "", ErrInvalidFileType
	}

	if len(rule.MimeTypes) > 0 {
		mediaType, _, err := mime.ParseMediaType(upload.ContentType)
		if err != nil || !containsFold(rule.MimeTypes, mediaType) {
			return "", ErrInvalidFileType
		}
	}

	if upload.Size > rule.MaxSize {
		return "", fmt.Errorf("%w (limit %s)", ErrFileTooLarge, formatSize(rule.MaxSize))
	}
	return ext, nil
}

func formatSize(n int64) string {
	const mb = 1024 * 1024
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}

// displayName keeps only the base name of the client supplied filename.
func displayName(filename string, kind models.ResourceKind, lang models.Language, ext string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return fmt.Sprintf("%s_%s%s", kind.FilePrefix(), lang, ext)
	}
	return name
}

func storageKey(kind models.ResourceKind, ownerID uint, lang models.Language, ext string) string {
	return fmt.Sprintf("%s/%s_%d_%s_%s%s", kind, kind.FilePrefix(), ownerID, lang, uuid.NewString(), ext)
}

func (s *slotService) Put(ctx context.Context, kind models.ResourceKind, ownerID uint, lang models.Language, upload *Upload, uploadedBy *uint) (*models.FileSlot, error) {
	rule, err := s.rule(kind)
	if err != nil {
		return nil, err
	}
	if !lang.Valid() {
		return nil, ErrInvalidLanguage
	}
	ext, err := validateUpload(rule, upload)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(slotLockKey(kind, ownerID, lang))
	defer unlock()

	key := storageKey(kind, ownerID, lang, ext)
	written, err := s.store.Save(ctx, key, io.LimitReader(upload.Content, rule.MaxSize+1), upload.Size, upload.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	if written > rule.MaxSize {
		s.discardBlob(ctx, key, "oversized upload")
		return nil, fmt.Errorf("%w (limit %s)", ErrFileTooLarge, formatSize(rule.MaxSize))
	}

	slot := &models.FileSlot{
		Kind:       kind,
		OwnerID:    ownerID,
		Language:   lang,
		StorageKey: key,
		FileURL:    s.store.URL(key),
		FileName:   displayName(upload.Filename, kind, lang, ext),
		FileSize:   written,
		UploadedAt: s.now(),
		UploadedBy: uploadedBy,
	}

	previous, err := s.repo.Replace(ctx, slot)
	if err != nil {
		s.discardBlob(ctx, key, "metadata write failed")
		return nil, fmt.Errorf("failed to save file metadata: %w", err)
	}
	if previous != nil && previous.StorageKey != slot.StorageKey {
		s.discardBlob(ctx, previous.StorageKey, "superseded")
	}

	s.logger.WithFields(logrus.Fields{
		"kind":     kind,
		"owner":    ownerID,
		"language": lang,
		"key":      key,
		"size":     written,
		"replaced": previous != nil,
	}).Info("File slot stored")

	return slot, nil
}

func (s *slotService) Get(ctx context.Context, kind models.ResourceKind, ownerID uint, lang models.Language) (*models.FileSlot, error) {
	if !lang.Valid() {
		return nil, ErrInvalidLanguage
	}
	return s.repo.Find(ctx, kind, ownerID, lang)
}

func (s *slotService) GetByID(ctx context.Context, kind models.ResourceKind, id uint) (*models.FileSlot, error) {
	return s.repo.FindByID(ctx, kind, id)
}

func (s *slotService) List(ctx context.Context, kind models.ResourceKind, ownerID uint) ([]models.FileSlot, error) {
	return s.repo.ListByOwner(ctx, kind, ownerID)
}

func (s *slotService) ListByOwners(ctx context.Context, kind models.ResourceKind, ownerIDs []uint) ([]models.FileSlot, error) {
	return s.repo.ListByOwners(ctx, kind, ownerIDs)
}

func (s *slotService) ListKind(ctx context.Context, kind models.ResourceKind) ([]models.FileSlot, error) {
	return s.repo.ListByKind(ctx, kind)
}

func (s *slotService) Delete(ctx context.Context, kind models.ResourceKind, ownerID uint, lang models.Language) error {
	if !lang.Valid() {
		return ErrInvalidLanguage
	}

	unlock := s.locks.Lock(slotLockKey(kind, ownerID, lang))
	defer unlock()

	removed, err := s.repo.Delete(ctx, kind, ownerID, lang)
	if err != nil {
		return fmt.Errorf("failed to delete file metadata: %w", err)
	}
	if removed != nil {
		s.discardBlob(ctx, removed.StorageKey, "deleted")
	}
	return nil
}

func (s *slotService) DeleteByID(ctx context.Context, kind models.ResourceKind, id uint) error {
	slot, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		return err
	}
	if slot == nil {
		return ErrNotFound
	}
	return s.Delete(ctx, kind, slot.OwnerID, slot.Language)
}

func (s *slotService) Open(ctx context.Context, slot *models.FileSlot) (io.ReadCloser, int64, error) {
	rc, size, err := s.store.Open(ctx, slot.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			s.logger.WithFields(logrus.Fields{
				"slot": slot.ID,
				"key":  slot.StorageKey,
			}).Warn("File metadata present but stored file is missing")
			return nil, 0, ErrFileMissing
		}
		return nil, 0, fmt.Errorf("failed to open stored file: %w", err)
	}
	return rc, size, nil
}

func (s *slotService) Discard(ctx context.Context, slots []models.FileSlot) {
	for _, slot := range slots {
		s.discardBlob(ctx, slot.StorageKey, "owner deleted")
	}
}

// discardBlob logs and swallows failures. It survives request cancellation.
func (s *slotService) discardBlob(ctx context.Context, key, reason string) {
	if err := s.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"key":    key,
			"reason": reason,
		}).Warn("Failed to delete stored file")
	}
}
