package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"quiz-admin/internal/auth"
	"quiz-admin/internal/config"
	"quiz-admin/internal/database/dbtest"
	"quiz-admin/internal/handlers"
	"quiz-admin/internal/middleware"
	"quiz-admin/internal/models"
	"quiz-admin/internal/repository"
	"quiz-admin/internal/services"
	"quiz-admin/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  string          `json:"status"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := dbtest.New(t)
	log := dbtest.Logger()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	authCfg := config.AuthConfig{
		JWTSecret:       "routes-test-secret",
		TokenTTL:        time.Hour,
		AdminUsername:   "admin",
		DefaultPassword: "admin123",
		MinPasswordLen:  6,
	}

	slotRepo := repository.NewSlotRepository(db)
	authService := services.NewAuthService(repository.NewAdminRepository(db), auth.NewTokenManager(authCfg.JWTSecret, authCfg.TokenTTL), authCfg, log)
	slots := services.NewSlotService(slotRepo, store, config.DefaultUploadRules(), log)
	packages := services.NewPackageService(repository.NewPackageRepository(db), slots, log)
	questions := services.NewResourceService(models.KindQuestions, slots)
	phrases := services.NewResourceService(models.KindPhrases, slots)

	app := fiber.New(fiber.Config{BodyLimit: 12 * 1024 * 1024})
	Setup(app, Handlers{
		Auth:        handlers.NewAuthHandler(authService, log, false),
		Packages:    handlers.NewPackageHandler(packages, log, false),
		Public:      handlers.NewPublicHandler(packages, questions, phrases, log, false),
		Questions:   handlers.NewUploadHandler(questions, "Questions", log, false),
		Phrases:     handlers.NewUploadHandler(phrases, "Phrases", log, false),
		Maintenance: handlers.NewMaintenanceHandler(services.NewReconciler(slotRepo, store, time.Hour, log), log, false),
	}, middleware.RequireAdmin(authService))

	return &testServer{t: t, app: app}
}

func (s *testServer) do(req *http.Request) (*http.Response, []byte) {
	s.t.Helper()

	if s.token != "" && req.Header.Get(fiber.HeaderAuthorization) == "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+s.token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp, body
}

func (s *testServer) json(method, target string, payload interface{}) (int, envelope) {
	s.t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(s.t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, raw := s.do(req)
	var env envelope
	require.NoError(s.t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func (s *testServer) upload(target, language, filename, contentType string, content []byte) (int, envelope) {
	s.t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(s.t, w.WriteField("language", language))

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(s.t, err)
	_, err = part.Write(content)
	require.NoError(s.t, err)
	require.NoError(s.t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, target, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())

	resp, raw := s.do(req)
	var env envelope
	require.NoError(s.t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func (s *testServer) login() {
	s.t.Helper()

	code, _ := s.json(fiber.MethodPost, "/api/auth/init", nil)
	require.Equal(s.t, fiber.StatusCreated, code)

	code, env := s.json(fiber.MethodPost, "/api/auth/login", handlers.LoginRequest{Username: "admin", Password: "admin123"})
	require.Equal(s.t, fiber.StatusOK, code)

	var result services.LoginResult
	require.NoError(s.t, json.Unmarshal(env.Data, &result))
	require.NotEmpty(s.t, result.Token)
	s.token = result.Token
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.json(fiber.MethodGet, "/api/auth/verify", nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = s.json(fiber.MethodPost, "/api/auth/login", handlers.LoginRequest{Username: "admin"})
	assert.Equal(t, fiber.StatusBadRequest, code)

	s.login()

	code, _ = s.json(fiber.MethodPost, "/api/auth/init", nil)
	assert.Equal(t, fiber.StatusConflict, code)

	code, env := s.json(fiber.MethodGet, "/api/auth/verify", nil)
	require.Equal(t, fiber.StatusOK, code)
	verify := decode[handlers.VerifyResponse](t, env.Data)
	assert.True(t, verify.Valid)
	assert.Equal(t, "admin", verify.User.Username)

	code, env = s.json(fiber.MethodPost, "/api/auth/change-password", handlers.ChangePasswordRequest{CurrentPassword: "admin123", NewPassword: "abc"})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, env.Message, "at least 6")

	code, _ = s.json(fiber.MethodPost, "/api/auth/change-password", handlers.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "abcdef"})
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = s.json(fiber.MethodPost, "/api/auth/change-password", handlers.ChangePasswordRequest{CurrentPassword: "admin123", NewPassword: "abcdef"})
	assert.Equal(t, fiber.StatusOK, code)

	code, _ = s.json(fiber.MethodPost, "/api/auth/login", handlers.LoginRequest{Username: "admin", Password: "admin123"})
	assert.Equal(t, fiber.StatusUnauthorized, code)

	req := httptest.NewRequest(fiber.MethodGet, "/api/packages", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer garbage")
	resp, _ := s.do(req)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestPackageLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.login()

	code, env := s.json(fiber.MethodPost, "/api/packages", map[string]interface{}{"name": "Demo", "price": 500})
	require.Equal(t, fiber.StatusCreated, code)
	created := decode[models.PackageWithFiles](t, env.Data)
	assert.True(t, created.IsActive)
	assert.Equal(t, models.DefaultIconColor, created.IconColor)
	assert.Equal(t, 500, created.Price)

	pkgPath := fmt.Sprintf("/api/packages/%d", created.ID)
	publicPath := fmt.Sprintf("/api/public/packages/%d", created.ID)

	code, env = s.upload(pkgPath+"/upload", "kz", "demo_kz.xlsx", config.MimeXLSX, []byte("kz workbook"))
	require.Equal(t, fiber.StatusOK, code, env.Message)
	withFile := decode[models.PackageWithFiles](t, env.Data)
	assert.Equal(t, "demo_kz.xlsx", withFile.Files.KZ.FileName)
	assert.Empty(t, withFile.Files.RU.FileName)

	// Inactive packages disappear from the public API.
	code, _ = s.json(fiber.MethodPut, pkgPath, map[string]interface{}{"isActive": false})
	require.Equal(t, fiber.StatusOK, code)

	code, env = s.json(fiber.MethodGet, "/api/public/packages", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Empty(t, decode[[]models.PublicPackage](t, env.Data))

	code, env = s.json(fiber.MethodGet, publicPath, nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "Package not available", env.Message)

	code, _ = s.json(fiber.MethodGet, publicPath+"/files/KZ", nil)
	assert.Equal(t, fiber.StatusNotFound, code)

	code, _ = s.json(fiber.MethodPut, pkgPath, map[string]interface{}{"isActive": true})
	require.Equal(t, fiber.StatusOK, code)

	code, env = s.json(fiber.MethodGet, "/api/public/packages", nil)
	require.Equal(t, fiber.StatusOK, code)
	public := decode[[]models.PublicPackage](t, env.Data)
	require.Len(t, public, 1)
	assert.True(t, public[0].HasFiles.KZ)
	assert.False(t, public[0].HasFiles.RU)
	assert.Equal(t, 500, public[0].Price)

	resp, body := s.do(httptest.NewRequest(fiber.MethodGet, publicPath+"/files/KZ", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "kz workbook", string(body))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "demo_kz.xlsx")

	code, env = s.json(fiber.MethodGet, publicPath+"/files/RU", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "File not found", env.Message)

	code, _ = s.json(fiber.MethodDelete, pkgPath+"/file/KZ", nil)
	require.Equal(t, fiber.StatusOK, code)

	code, _ = s.json(fiber.MethodGet, publicPath+"/files/KZ", nil)
	assert.Equal(t, fiber.StatusNotFound, code)

	code, _ = s.json(fiber.MethodDelete, pkgPath+"/file/EN", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = s.json(fiber.MethodDelete, pkgPath, nil)
	require.Equal(t, fiber.StatusOK, code)

	code, env = s.json(fiber.MethodGet, pkgPath, nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "Package not found", env.Message)

	code, _ = s.json(fiber.MethodGet, "/api/packages/abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestPackageValidation(t *testing.T) {
	s := newTestServer(t)
	s.login()

	code, _ := s.json(fiber.MethodPost, "/api/packages", map[string]interface{}{"price": 100})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = s.json(fiber.MethodPost, "/api/packages", map[string]interface{}{"name": "x", "iconColor": "red"})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, env := s.json(fiber.MethodPost, "/api/packages", map[string]interface{}{"name": "x"})
	require.Equal(t, fiber.StatusCreated, code)
	created := decode[models.PackageWithFiles](t, env.Data)
	target := fmt.Sprintf("/api/packages/%d/upload", created.ID)

	code, _ = s.upload(target, "EN", "a.xlsx", config.MimeXLSX, []byte("x"))
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = s.upload(target, "KZ", "a.csv", "text/csv", []byte("x"))
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = s.upload("/api/packages/9999/upload", "KZ", "a.xlsx", config.MimeXLSX, []byte("x"))
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestPhrasesSizeLimit(t *testing.T) {
	s := newTestServer(t)
	s.login()

	small := bytes.Repeat([]byte("a"), 4*1024*1024)
	code, env := s.upload("/api/phrases/upload", "RU", "phrases_ru.xlsx", config.MimeXLSX, small)
	require.Equal(t, fiber.StatusOK, code, env.Message)
	first := decode[models.FileSlot](t, env.Data)
	assert.Equal(t, models.LanguageRU, first.Language)

	large := bytes.Repeat([]byte("b"), 6*1024*1024)
	code, env = s.upload("/api/phrases/upload", "RU", "phrases_big.xlsx", config.MimeXLSX, large)
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, code)
	assert.True(t, strings.Contains(env.Message, "5MB"), env.Message)

	resp, body := s.do(httptest.NewRequest(fiber.MethodGet, "/api/public/phrases/files/ru", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, body, len(small))

	code, env = s.json(fiber.MethodGet, "/api/phrases", nil)
	require.Equal(t, fiber.StatusOK, code)
	list := decode[[]models.FileSlot](t, env.Data)
	require.Len(t, list, 1)
	assert.Equal(t, "phrases_ru.xlsx", list[0].FileName)

	code, _ = s.json(fiber.MethodDelete, fmt.Sprintf("/api/phrases/%d", first.ID), nil)
	require.Equal(t, fiber.StatusOK, code)

	code, _ = s.json(fiber.MethodGet, "/api/public/phrases/files/RU", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestQuestionsAndMaintenance(t *testing.T) {
	s := newTestServer(t)
	s.login()

	code, env := s.json(fiber.MethodGet, "/api/public-questions", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Empty(t, decode[[]models.FileSlot](t, env.Data))

	code, _ = s.upload("/api/public-questions/upload", "KZ", "q.xls", config.MimeXLS, []byte("questions"))
	require.Equal(t, fiber.StatusOK, code)

	resp, body := s.do(httptest.NewRequest(fiber.MethodGet, "/api/public/questions/files/KZ", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "questions", string(body))

	code, env = s.json(fiber.MethodPost, "/api/maintenance/reconcile", nil)
	require.Equal(t, fiber.StatusOK, code)
	report := decode[services.SweepReport](t, env.Data)
	assert.Equal(t, 1, report.CheckedSlots)
	assert.Empty(t, report.DanglingSlots)
}
