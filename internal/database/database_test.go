package database_test

import (
	"testing"

	"quiz-admin/internal/database/dbtest"
	"quiz-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MigratesSchema(t *testing.T) {
	db := dbtest.New(t)

	for _, model := range []any{&models.Admin{}, &models.Package{}, &models.FileSlot{}} {
		assert.True(t, db.Migrator().HasTable(model))
	}
	assert.True(t, db.Migrator().HasIndex(&models.FileSlot{}, "idx_file_slots_owner_language"))
}

func TestHealthCheck(t *testing.T) {
	db := dbtest.New(t)

	require.NoError(t, db.HealthCheck())
	require.NoError(t, db.Close())
	assert.Error(t, db.HealthCheck())
}
