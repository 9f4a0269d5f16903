package repository

import (
	"context"

	"quiz-admin/internal/database"
	"quiz-admin/internal/models"

	"gorm.io/gorm"
)

type PackageRepository interface {
	Create(ctx context.Context, pkg *models.Package) error
	Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.Package, error)
	FindByID(ctx context.Context, id uint) (*models.Package, error)
	FindAll(ctx context.Context) ([]models.Package, error)
	FindActive(ctx context.Context) ([]models.Package, error)

	// DeleteWithSlots removes the package and its file slot rows in one transaction
	// and returns the removed slots so their blobs can be cleaned up.
	DeleteWithSlots(ctx context.Context, id uint) ([]models.FileSlot, error)
}

type packageRepository struct {
	base
	db *database.Database
}

func NewPackageRepository(db *database.Database) PackageRepository {
	return &packageRepository{
		base: base{timeout: db.GetQueryTimeout()},
		db:   db,
	}
}

func (r *packageRepository) Create(ctx context.Context, pkg *models.Package) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Create(pkg).Error
}

// Update applies only the given columns, so false and zero values are written too.
func (r *packageRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.Package, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var pkg models.Package
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pkg, id).Error; err != nil {
			return notFound(err)
		}
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Model(&pkg).Updates(fields).Error; err != nil {
			return err
		}
		return tx.First(&pkg, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *packageRepository) FindByID(ctx context.Context, id uint) (*models.Package, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var pkg models.Package
	if err := r.db.WithContext(ctx).First(&pkg, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &pkg, nil
}

func (r *packageRepository) FindAll(ctx context.Context) ([]models.Package, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var packages []models.Package
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&packages).Error
	return packages, err
}

func (r *packageRepository) FindActive(ctx context.Context) ([]models.Package, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var packages []models.Package
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Order("id DESC").
		Find(&packages).Error
	return packages, err
}

func (r *packageRepository) DeleteWithSlots(ctx context.Context, id uint) ([]models.FileSlot, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var slots []models.FileSlot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pkg models.Package
		if err := tx.First(&pkg, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Where("kind = ? AND owner_id = ?", models.KindPackages, id).Find(&slots).Error; err != nil {
			return err
		}
		if err := tx.Where("kind = ? AND owner_id = ?", models.KindPackages, id).Delete(&models.FileSlot{}).Error; err != nil {
			return err
		}
		return tx.Delete(&pkg).Error
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}
