package repository

import (
	"context"
	"testing"
	"time"

	"quiz-admin/internal/database/dbtest"
	"quiz-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSlot(kind models.ResourceKind, owner uint, lang models.Language, key string) *models.FileSlot {
	return &models.FileSlot{
		Kind:       kind,
		OwnerID:    owner,
		Language:   lang,
		StorageKey: key,
		FileURL:    "/uploads/" + key,
		FileName:   "book.xlsx",
		FileSize:   42,
		UploadedAt: time.Now().UTC(),
	}
}

func TestAdminRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAdminRepository(dbtest.New(t))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	admin := &models.Admin{Username: "admin", PasswordHash: "h1"}
	require.NoError(t, repo.Create(ctx, admin))
	require.NotZero(t, admin.ID)

	found, err := repo.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "h1", found.PasswordHash)

	missing, err := repo.FindByUsername(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.UpdatePasswordHash(ctx, admin.ID, "h2"))
	found, err = repo.FindByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "h2", found.PasswordHash)

	assert.ErrorIs(t, repo.UpdatePasswordHash(ctx, 999, "x"), ErrNotFound)
}

func TestPackageRepository_UpdateWritesZeroValues(t *testing.T) {
	ctx := context.Background()
	repo := NewPackageRepository(dbtest.New(t))

	pkg := &models.Package{Name: "Demo", IconColor: "#4CAF50", Price: 1000, IsActive: true}
	require.NoError(t, repo.Create(ctx, pkg))

	updated, err := repo.Update(ctx, pkg.ID, map[string]interface{}{"is_active": false, "price": 0})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 0, updated.Price)
	assert.Equal(t, "Demo", updated.Name)

	unchanged, err := repo.Update(ctx, pkg.ID, nil)
	require.NoError(t, err)
	assert.False(t, unchanged.IsActive)

	_, err = repo.Update(ctx, 404, map[string]interface{}{"price": 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPackageRepository_ListOrderAndActive(t *testing.T) {
	ctx := context.Background()
	repo := NewPackageRepository(dbtest.New(t))

	first := &models.Package{Name: "first", IconColor: "#000000", IsActive: true, CreatedAt: time.Now().UTC().Add(-time.Hour)}
	second := &models.Package{Name: "second", IconColor: "#000000", IsActive: false}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].Name)

	active, err := repo.FindActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "first", active[0].Name)
}

func TestPackageRepository_DeleteWithSlots(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	packages := NewPackageRepository(db)
	slots := NewSlotRepository(db)

	pkg := &models.Package{Name: "Demo", IconColor: "#4CAF50", IsActive: true}
	require.NoError(t, packages.Create(ctx, pkg))
	_, err := slots.Replace(ctx, newSlot(models.KindPackages, pkg.ID, models.LanguageKZ, "packages/a.xlsx"))
	require.NoError(t, err)
	_, err = slots.Replace(ctx, newSlot(models.KindPackages, pkg.ID, models.LanguageRU, "packages/b.xlsx"))
	require.NoError(t, err)

	removed, err := packages.DeleteWithSlots(ctx, pkg.ID)
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	left, err := slots.ListByOwner(ctx, models.KindPackages, pkg.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = packages.FindByID(ctx, pkg.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = packages.DeleteWithSlots(ctx, pkg.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSlotRepository_ReplaceKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	repo := NewSlotRepository(dbtest.New(t))

	first := newSlot(models.KindPhrases, 0, models.LanguageRU, "phrases/one.xlsx")
	previous, err := repo.Replace(ctx, first)
	require.NoError(t, err)
	assert.Nil(t, previous)
	require.NotZero(t, first.ID)

	second := newSlot(models.KindPhrases, 0, models.LanguageRU, "phrases/two.xlsx")
	previous, err = repo.Replace(ctx, second)
	require.NoError(t, err)
	require.NotNil(t, previous)
	assert.Equal(t, "phrases/one.xlsx", previous.StorageKey)

	all, err := repo.ListByKind(ctx, models.KindPhrases)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "phrases/two.xlsx", all[0].StorageKey)
	assert.Equal(t, all[0].ID, second.ID)

	other := newSlot(models.KindQuestions, 0, models.LanguageRU, "questions/q.xlsx")
	_, err = repo.Replace(ctx, other)
	require.NoError(t, err)

	everything, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, everything, 2)
}

func TestSlotRepository_FindAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSlotRepository(dbtest.New(t))

	slot := newSlot(models.KindPackages, 7, models.LanguageKZ, "packages/k.xlsx")
	_, err := repo.Replace(ctx, slot)
	require.NoError(t, err)

	found, err := repo.Find(ctx, models.KindPackages, 7, models.LanguageKZ)
	require.NoError(t, err)
	require.NotNil(t, found)

	byID, err := repo.FindByID(ctx, models.KindPackages, slot.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)

	wrongKind, err := repo.FindByID(ctx, models.KindPhrases, slot.ID)
	require.NoError(t, err)
	assert.Nil(t, wrongKind)

	grouped, err := repo.ListByOwners(ctx, models.KindPackages, []uint{7, 8})
	require.NoError(t, err)
	assert.Len(t, grouped, 1)

	removed, err := repo.Delete(ctx, models.KindPackages, 7, models.LanguageKZ)
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.Equal(t, "packages/k.xlsx", removed.StorageKey)

	again, err := repo.Delete(ctx, models.KindPackages, 7, models.LanguageKZ)
	require.NoError(t, err)
	assert.Nil(t, again)

	gone, err := repo.Find(ctx, models.KindPackages, 7, models.LanguageKZ)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
