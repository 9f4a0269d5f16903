package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"quiz-admin/internal/models"
	"quiz-admin/internal/repository"

	"github.com/sirupsen/logrus"
)

var iconColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// PackageInput carries optional package fields. Nil means "not provided".
type PackageInput struct {
	Name      *string
	NameKZ    *string
	NameRU    *string
	IconColor *string
	Price     *int
	IsActive  *bool
}

func (in PackageInput) empty() bool {
	return in.Name == nil && in.NameKZ == nil && in.NameRU == nil &&
		in.IconColor == nil && in.Price == nil && in.IsActive == nil
}

type PackageService interface {
	List(ctx context.Context) ([]models.PackageWithFiles, error)
	Get(ctx context.Context, id uint) (*models.PackageWithFiles, error)
	Create(ctx context.Context, in PackageInput) (*models.PackageWithFiles, error)
	Update(ctx context.Context, id uint, in PackageInput) (*models.PackageWithFiles, error)
	Delete(ctx context.Context, id uint) error

	UploadFile(ctx context.Context, id uint, lang models.Language, upload *Upload, uploadedBy *uint) (*models.PackageWithFiles, error)
	DeleteFile(ctx context.Context, id uint, lang models.Language) (*models.PackageWithFiles, error)

	ListActive(ctx context.Context) ([]models.PublicPackage, error)
	GetActive(ctx context.Context, id uint) (*models.PublicPackage, error)
	OpenActiveFile(ctx context.Context, id uint, lang models.Language) (*models.FileSlot, io.ReadCloser, int64, error)
}

type packageService struct {
	repo   repository.PackageRepository
	slots  SlotService
	logger *logrus.Logger
}

func NewPackageService(repo repository.PackageRepository, slots SlotService, logger *logrus.Logger) PackageService {
	return &packageService{
		repo:   repo,
		slots:  slots,
		logger: logger,
	}
}

func (s *packageService) List(ctx context.Context) ([]models.PackageWithFiles, error) {
	packages, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	return s.withFiles(ctx, packages)
}

func (s *packageService) Get(ctx context.Context, id uint) (*models.PackageWithFiles, error) {
	pkg, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withFilesOne(ctx, pkg)
}

func (s *packageService) Create(ctx context.Context, in PackageInput) (*models.PackageWithFiles, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, newValidationError("name is required")
	}
	if err := validatePackageInput(in); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(*in.Name)
	pkg := &models.Package{
		Name:      name,
		NameKZ:    name,
		NameRU:    name,
		IconColor: models.DefaultIconColor,
		Price:     models.DefaultPackagePrice,
		IsActive:  true,
	}
	if in.NameKZ != nil && strings.TrimSpace(*in.NameKZ) != "" {
		pkg.NameKZ = strings.TrimSpace(*in.NameKZ)
	}
	if in.NameRU != nil && strings.TrimSpace(*in.NameRU) != "" {
		pkg.NameRU = strings.TrimSpace(*in.NameRU)
	}
	if in.IconColor != nil && *in.IconColor != "" {
		pkg.IconColor = *in.IconColor
	}
	if in.Price != nil {
		pkg.Price = *in.Price
	}
	if in.IsActive != nil {
		pkg.IsActive = *in.IsActive
	}

	if err := s.repo.Create(ctx, pkg); err != nil {
		return nil, fmt.Errorf("failed to create package: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"id":   pkg.ID,
		"name": pkg.Name,
	}).Info("Package created")

	return &models.PackageWithFiles{Package: *pkg}, nil
}

func (s *packageService) Update(ctx context.Context, id uint, in PackageInput) (*models.PackageWithFiles, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, newValidationError("name must not be empty")
	}
	if err := validatePackageInput(in); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if !in.empty() {
		if in.Name != nil {
			fields["name"] = strings.TrimSpace(*in.Name)
		}
		if in.NameKZ != nil {
			fields["name_kz"] = strings.TrimSpace(*in.NameKZ)
		}
		if in.NameRU != nil {
			fields["name_ru"] = strings.TrimSpace(*in.NameRU)
		}
		if in.IconColor != nil {
			fields["icon_color"] = *in.IconColor
		}
		if in.Price != nil {
			fields["price"] = *in.Price
		}
		if in.IsActive != nil {
			fields["is_active"] = *in.IsActive
		}
	}

	pkg, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update package: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"id":     id,
		"fields": len(fields),
	}).Info("Package updated")

	return s.withFilesOne(ctx, pkg)
}

func validatePackageInput(in PackageInput) error {
	if in.IconColor != nil && *in.IconColor != "" && !iconColorPattern.MatchString(*in.IconColor) {
		return newValidationError("iconColor must be a hex color like #4CAF50")
	}
	if in.Price != nil && *in.Price < 0 {
		return newValidationError("price must not be negative")
	}
	return nil
}

func (s *packageService) Delete(ctx context.Context, id uint) error {
	slots, err := s.repo.DeleteWithSlots(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete package: %w", err)
	}

	s.slots.Discard(ctx, slots)

	s.logger.WithFields(logrus.Fields{
		"id":    id,
		"files": len(slots),
	}).Info("Package deleted")
	return nil
}

func (s *packageService) UploadFile(ctx context.Context, id uint, lang models.Language, upload *Upload, uploadedBy *uint) (*models.PackageWithFiles, error) {
	if !lang.Valid() {
		return nil, ErrInvalidLanguage
	}
	pkg, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.slots.Put(ctx, models.KindPackages, pkg.ID, lang, upload, uploadedBy); err != nil {
		return nil, err
	}
	return s.withFilesOne(ctx, pkg)
}

func (s *packageService) DeleteFile(ctx context.Context, id uint, lang models.Language) (*models.PackageWithFiles, error) {
	if !lang.Valid() {
		return nil, ErrInvalidLanguage
	}
	pkg, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.slots.Delete(ctx, models.KindPackages, pkg.ID, lang); err != nil {
		return nil, err
	}
	return s.withFilesOne(ctx, pkg)
}

func (s *packageService) ListActive(ctx context.Context) ([]models.PublicPackage, error) {
	packages, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active packages: %w", err)
	}
	annotated, err := s.withFiles(ctx, packages)
	if err != nil {
		return nil, err
	}

	result := make([]models.PublicPackage, 0, len(annotated))
	for _, p := range annotated {
		result = append(result, models.NewPublicPackage(p))
	}
	return result, nil
}

func (s *packageService) GetActive(ctx context.Context, id uint) (*models.PublicPackage, error) {
	pkg, err := s.findActive(ctx, id)
	if err != nil {
		return nil, err
	}
	annotated, err := s.withFilesOne(ctx, pkg)
	if err != nil {
		return nil, err
	}
	public := models.NewPublicPackage(*annotated)
	return &public, nil
}

func (s *packageService) OpenActiveFile(ctx context.Context, id uint, lang models.Language) (*models.FileSlot, io.ReadCloser, int64, error) {
	if !lang.Valid() {
		return nil, nil, 0, ErrInvalidLanguage
	}
	pkg, err := s.findActive(ctx, id)
	if err != nil {
		return nil, nil, 0, err
	}

	slot, err := s.slots.Get(ctx, models.KindPackages, pkg.ID, lang)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to load package file: %w", err)
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

func (s *packageService) find(ctx context.Context, id uint) (*models.Package, error) {
	pkg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load package: %w", err)
	}
	return pkg, nil
}

// findActive reports an inactive package as ErrNotAvailable.
func (s *packageService) findActive(ctx context.Context, id uint) (*models.Package, error) {
	pkg, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !pkg.IsActive {
		return nil, ErrNotAvailable
	}
	return pkg, nil
}

func (s *packageService) withFilesOne(ctx context.Context, pkg *models.Package) (*models.PackageWithFiles, error) {
	annotated, err := s.withFiles(ctx, []models.Package{*pkg})
	if err != nil {
		return nil, err
	}
	return &annotated[0], nil
}

func (s *packageService) withFiles(ctx context.Context, packages []models.Package) ([]models.PackageWithFiles, error) {
	result := make([]models.PackageWithFiles, len(packages))
	if len(packages) == 0 {
		return result, nil
	}

	ids := make([]uint, len(packages))
	index := make(map[uint]int, len(packages))
	for i, p := range packages {
		ids[i] = p.ID
		index[p.ID] = i
		result[i] = models.PackageWithFiles{Package: p}
	}

	slots, err := s.slots.ListByOwners(ctx, models.KindPackages, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load package files: %w", err)
	}
	for _, slot := range slots {
		if i, ok := index[slot.OwnerID]; ok {
			result[i].Files.Set(slot)
		}
	}
	return result, nil
}
