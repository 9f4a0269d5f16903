package services

import (
	"bytes"
	"context"
	"io"
	"testing"

	"quiz-admin/internal/config"
	"quiz-admin/internal/database/dbtest"
	"quiz-admin/internal/models"
	"quiz-admin/internal/repository"
	"quiz-admin/internal/storage"

	"github.com/stretchr/testify/require"
)

const testLimit = 64

type fixture struct {
	slotRepo repository.SlotRepository
	pkgRepo  repository.PackageRepository
	admins   repository.AdminRepository
	store    *storage.LocalStore
	slots    SlotService
}

func testRules() config.UploadRules {
	rule := config.UploadRule{
		MaxSize:    testLimit,
		Extensions: []string{".xlsx", ".xls"},
		MimeTypes:  []string{config.MimeXLSX, config.MimeXLS},
	}
	return config.UploadRules{
		string(models.KindPackages):  rule,
		string(models.KindQuestions): rule,
		string(models.KindPhrases):   rule,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.New(t)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		slotRepo: repository.NewSlotRepository(db),
		pkgRepo:  repository.NewPackageRepository(db),
		admins:   repository.NewAdminRepository(db),
		store:    store,
	}
	f.slots = NewSlotService(f.slotRepo, store, testRules(), dbtest.Logger())
	return f
}

func xlsx(name, content string) *Upload {
	return &Upload{
		Filename:    name,
		Size:        int64(len(content)),
		ContentType: config.MimeXLSX,
		Content:     bytes.NewReader([]byte(content)),
	}
}

func blobKeys(t *testing.T, store storage.BlobStore, kind models.ResourceKind) []string {
	t.Helper()

	blobs, err := store.List(context.Background(), string(kind)+"/")
	require.NoError(t, err)
	keys := make([]string, 0, len(blobs))
	for _, b := range blobs {
		keys = append(keys, b.Key)
	}
	return keys
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()

	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}
