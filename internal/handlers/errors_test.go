package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"quiz-admin/internal/database/dbtest"
	"quiz-admin/internal/services"
	"quiz-admin/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, r responder, err error) (int, utils.StandardResponse) {
	t.Helper()

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return r.fail(c, err, "Thing not found")
	})

	resp, testErr := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, testErr)
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)

	var body utils.StandardResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestResponderStatusMapping(t *testing.T) {
	r := responder{logger: dbtest.Logger()}

	tests := []struct {
		err     error
		code    int
		message string
	}{
		{err: services.ErrInvalidLanguage, code: fiber.StatusBadRequest, message: "language must be KZ or RU"},
		{err: fmt.Errorf("%w (limit 5MB)", services.ErrFileTooLarge), code: fiber.StatusRequestEntityTooLarge},
		{err: services.ErrNotFound, code: fiber.StatusNotFound, message: "Thing not found"},
		{err: services.ErrNotAvailable, code: fiber.StatusNotFound, message: "Package not available"},
		{err: services.ErrNoFile, code: fiber.StatusNotFound, message: "File not found"},
		{err: services.ErrFileMissing, code: fiber.StatusNotFound, message: "File not found on server"},
		{err: services.ErrAlreadyInitialized, code: fiber.StatusConflict},
		{err: services.ErrInvalidCredentials, code: fiber.StatusUnauthorized},
		{err: errors.New("boom"), code: fiber.StatusInternalServerError, message: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			code, body := respond(t, r, tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.code, body.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Message)
			}
			assert.Empty(t, body.Detail)
		})
	}
}

func TestResponderDetailOnlyInDevMode(t *testing.T) {
	_, body := respond(t, responder{logger: dbtest.Logger(), devMode: true}, errors.New("pq: connection refused"))
	assert.Equal(t, "fail", body.Status)
	assert.Equal(t, "pq: connection refused", body.Detail)

	_, body = respond(t, responder{logger: dbtest.Logger(), devMode: true}, services.ErrNotFound)
	assert.Empty(t, body.Detail)
}
