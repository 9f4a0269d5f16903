package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quiz-admin/internal/database/dbtest"
	"quiz-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconciler_Sweep(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	kept, err := f.slots.Put(ctx, models.KindPhrases, 0, models.LanguageKZ, xlsx("kz.xlsx", "kz"), nil)
	require.NoError(t, err)
	dangling, err := f.slots.Put(ctx, models.KindPhrases, 0, models.LanguageRU, xlsx("ru.xlsx", "ru"), nil)
	require.NoError(t, err)
	require.NoError(t, f.store.Delete(ctx, dangling.StorageKey))

	_, err = f.store.Save(ctx, "questions/old-orphan.xlsx", strings.NewReader("old"), 3, "")
	require.NoError(t, err)
	_, err = f.store.Save(ctx, "questions/fresh-orphan.xlsx", strings.NewReader("new"), 3, "")
	require.NoError(t, err)

	old := time.Now().Add(-2 * time.Hour)
	oldPath := filepath.Join(f.store.Root(), "questions", "old-orphan.xlsx")
	require.NoError(t, os.Chtimes(oldPath, old, old))

	// Referenced files are never removed, however old.
	keptPath := filepath.Join(f.store.Root(), filepath.FromSlash(kept.StorageKey))
	require.NoError(t, os.Chtimes(keptPath, old, old))

	r := NewReconciler(f.slotRepo, f.store, time.Hour, dbtest.Logger())
	report, err := r.Sweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.CheckedSlots)
	assert.Equal(t, []uint{dangling.ID}, report.DanglingSlots)
	assert.Equal(t, 3, report.CheckedFiles)
	assert.Equal(t, []string{"questions/old-orphan.xlsx"}, report.RemovedOrphans)

	assert.ElementsMatch(t, []string{"questions/fresh-orphan.xlsx"}, blobKeys(t, f.store, models.KindQuestions))
	assert.Equal(t, []string{kept.StorageKey}, blobKeys(t, f.store, models.KindPhrases))
}

func TestReconciler_RunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	r := NewReconciler(f.slotRepo, f.store, time.Hour, dbtest.Logger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
