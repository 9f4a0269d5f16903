package repository

import (
	"context"

	"quiz-admin/internal/database"
	"quiz-admin/internal/models"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	Count(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id uint) (*models.Admin, error)
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
}

type adminRepository struct {
	base
	db *database.Database
}

func NewAdminRepository(db *database.Database) AdminRepository {
	return &adminRepository{
		base: base{timeout: db.GetQueryTimeout()},
		db:   db,
	}
}

func (r *adminRepository) Create(ctx context.Context, admin *models.Admin) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *adminRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int64
	err := r.db.WithContext(ctx).Model(&models.Admin{}).Count(&count).Error
	return count, err
}

// FindByID returns nil, nil when the admin does not exist.
func (r *adminRepository) FindByID(ctx context.Context, id uint) (*models.Admin, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var admin models.Admin
	err := r.db.WithContext(ctx).Limit(1).Find(&admin, id).Error
	if err != nil {
		return nil, err
	}
	if admin.ID == 0 {
		return nil, nil
	}
	return &admin, nil
}

// FindByUsername returns nil, nil when the admin does not exist.
func (r *adminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var admin models.Admin
	err := r.db.WithContext(ctx).Where("username = ?", username).Limit(1).Find(&admin).Error
	if err != nil {
		return nil, err
	}
	if admin.ID == 0 {
		return nil, nil
	}
	return &admin, nil
}

func (r *adminRepository) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&models.Admin{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
