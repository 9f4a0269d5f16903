package services

import (
	"context"
	"io"

	"quiz-admin/internal/models"
)

// ResourceService manages a flat, per-language resource such as the question bank or phrases.
type ResourceService interface {
	Kind() models.ResourceKind
	List(ctx context.Context) ([]models.FileSlot, error)
	Upload(ctx context.Context, lang models.Language, upload *Upload, uploadedBy *uint) (*models.FileSlot, error)
	Delete(ctx context.Context, id uint) error
	Open(ctx context.Context, lang models.Language) (*models.FileSlot, io.ReadCloser, int64, error)
}

type resourceService struct {
	kind  models.ResourceKind
	slots SlotService
}

func NewResourceService(kind models.ResourceKind, slots SlotService) ResourceService {
	return &resourceService{
		kind:  kind,
		slots: slots,
	}
}

// Flat resources have no owner row.
const flatOwner = 0

func (s *resourceService) Kind() models.ResourceKind {
	return s.kind
}

func (s *resourceService) List(ctx context.Context) ([]models.FileSlot, error) {
	return s.slots.ListKind(ctx, s.kind)
}

func (s *resourceService) Upload(ctx context.Context, lang models.Language, upload *Upload, uploadedBy *uint) (*models.FileSlot, error) {
	return s.slots.Put(ctx, s.kind, flatOwner, lang, upload, uploadedBy)
}

func (s *resourceService) Delete(ctx context.Context, id uint) error {
	return s.slots.DeleteByID(ctx, s.kind, id)
}

func (s *resourceService) Open(ctx context.Context, lang models.Language) (*models.FileSlot, io.ReadCloser, int64, error) {
	slot, err := s.slots.Get(ctx, s.kind, flatOwner, lang)
	if err != nil {
		return nil, nil, 0, err
	}
	if slot == nil {
		return nil, nil, 0, ErrNoFile
	}

	rc, size, err := s.slots.Open(ctx, slot)
	if err != nil {
		return nil, nil, 0, err
	}
	return slot, rc, size, nil
}
