package repository

import (
	"context"

	"quiz-admin/internal/database"
	"quiz-admin/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SlotRepository interface {
	Find(ctx context.Context, kind models.ResourceKind, ownerID uint, lang models.Language) (*models.FileSlot, error)
	FindByID(ctx context.Context, kind models.ResourceKind, id uint) (*models.FileSlot, error)
	ListByOwner(ctx context.Context, kind models.ResourceKind, ownerID uint) ([]models.FileSlot, error)
	ListByOwners(ctx context.Context, kind models.ResourceKind, ownerIDs []uint) ([]models.FileSlot, error)
	ListByKind(ctx context.Context, kind models.ResourceKind) ([]models.FileSlot, error)
	ListAll(ctx context.Context) ([]models.FileSlot, error)

	// Replace upserts slot on (kind, owner_id, language) and returns the row it superseded, if any.
	// slot is reloaded so its ID and timestamps reflect the stored row.
	Replace(ctx context.Context, slot *models.FileSlot) (*models.FileSlot, error)

	// Delete removes the slot and returns it, or nil when nothing was stored.
	Delete(ctx context.Context, kind models.ResourceKind, ownerID uint, lang models.Language) (*models.FileSlot, error)
}

type slotRepository struct {
	base
	db *database.Database
}

func NewSlotRepository(db *database.Database) SlotRepository {
	return &slotRepository{
		base: base{timeout: db.GetQueryTimeout()},
		db:   db,
	}
}

var slotConflictColumns = []clause.Column{{Name: "kind"}, {Name: "owner_id"}, {Name: "language"}}

var slotReplaceColumns = []string{"storage_key", "file_url", "file_name", "file_size", "uploaded_at", "uploaded_by"}

func findSlot(tx *gorm.DB, kind models.ResourceKind, ownerID uint, lang models.Language) (*models.FileSlot, error) {
	var slot models.FileSlot
	err := tx.Where("kind = ? AND owner_id = ? AND language = ?", kind, ownerID, lang).Limit(1).Find(&slot).Error
	if err != nil {
		return nil, err
	}
	if slot.ID == 0 {
		return nil, nil
	}
	return &slot, nil
}

func (r *slotRepository) Find(ctx context.Context, kind models.ResourceKind, ownerID uint, lang models.Language) (*models.FileSlot, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return findSlot(r.db.WithContext(ctx), kind, ownerID, lang)
}

func (r *slotRepository) FindByID(ctx context.Context, kind models.ResourceKind, id uint) (*models.FileSlot, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var slot models.FileSlot
	err := r.db.WithContext(ctx).Where("kind = ? AND id = ?", kind, id).Limit(1).Find(&slot).Error
	if err != nil {
		return nil, err
	}
	if slot.ID == 0 {
		return nil, nil
	}
	return &slot, nil
}

func (r *slotRepository) ListByOwner(ctx context.Context, kind models.ResourceKind, ownerID uint) ([]models.FileSlot, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var slots []models.FileSlot
	err := r.db.WithContext(ctx).
		Where("kind = ? AND owner_id = ?", kind, ownerID).
		Order("language ASC").
		Find(&slots).Error
	return slots, err
}

func (r *slotRepository) ListByOwners(ctx context.Context, kind models.ResourceKind, ownerIDs []uint) ([]models.FileSlot, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var slots []models.FileSlot
	err := r.db.WithContext(ctx).
		Where("kind = ? AND owner_id IN ?", kind, ownerIDs).
		Order("owner_id ASC").
		Order("language ASC").
		Find(&slots).Error
	return slots, err
}

func (r *slotRepository) ListByKind(ctx context.Context, kind models.ResourceKind) ([]models.FileSlot, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var slots []models.FileSlot
	err := r.db.WithContext(ctx).
		Where("kind = ?", kind).
		Order("uploaded_at DESC").
		Order("id DESC").
		Find(&slots).Error
	return slots, err
}

func (r *slotRepository) ListAll(ctx context.Context) ([]models.FileSlot, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var slots []models.FileSlot
	err := r.db.WithContext(ctx).Order("id ASC").Find(&slots).Error
	return slots, err
}

func (r *slotRepository) Replace(ctx context.Context, slot *models.FileSlot) (*models.FileSlot, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var previous *models.FileSlot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		previous, err = findSlot(tx, slot.Kind, slot.OwnerID, slot.Language)
		if err != nil {
			return err
		}

		slot.ID = 0
		err = tx.Clauses(clause.OnConflict{
			Columns:   slotConflictColumns,
			DoUpdates: clause.AssignmentColumns(slotReplaceColumns),
		}).Create(slot).Error
		if err != nil {
			return err
		}

		stored, err := findSlot(tx, slot.Kind, slot.OwnerID, slot.Language)
		if err != nil {
			return err
		}
		if stored == nil {
			return ErrNotFound
		}
		*slot = *stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}

func (r *slotRepository) Delete(ctx context.Context, kind models.ResourceKind, ownerID uint, lang models.Language) (*models.FileSlot, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var removed *models.FileSlot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := findSlot(tx, kind, ownerID, lang)
		if err != nil || slot == nil {
			return err
		}
		if err := tx.Delete(&models.FileSlot{}, slot.ID).Error; err != nil {
			return err
		}
		removed = slot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
