package middleware

import (
	"context"
	"net/http/httptest"
	"testing"

	"quiz-admin/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	tokens map[string]error
}

func (f fakeVerifier) Verify(_ context.Context, token string) (*auth.Identity, error) {
	err, ok := f.tokens[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return &auth.Identity{ID: 1, Username: "admin"}, nil
}

func TestRequireAdmin(t *testing.T) {
	app := fiber.New()
	verifier := fakeVerifier{tokens: map[string]error{
		"good":    nil,
		"expired": auth.ErrTokenExpired,
	}}
	app.Get("/secret", RequireAdmin(verifier), func(c *fiber.Ctx) error {
		admin, ok := CurrentAdmin(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(admin.Username)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "no header", header: "", want: fiber.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", want: fiber.StatusUnauthorized},
		{name: "invalid", header: "Bearer nope", want: fiber.StatusUnauthorized},
		{name: "expired", header: "Bearer expired", want: fiber.StatusUnauthorized},
		{name: "valid", header: "Bearer good", want: fiber.StatusOK},
		{name: "case insensitive scheme", header: "bearer good", want: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/secret", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestCurrentAdmin_Missing(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, ok := CurrentAdmin(c)
		assert.False(t, ok)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	resp.Body.Close()
}

func TestMetrics_LabelsByRoute(t *testing.T) {
	app := fiber.New()
	app.Use(Metrics())
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		return c.SendString(c.Params("id"))
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(fiber.MethodGet, "/items/:id", "200"))
	for _, id := range []string{"1", "2", "3"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/items/"+id, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(fiber.MethodGet, "/items/:id", "200"))
	assert.Equal(t, float64(3), after-before)

	unmatchedBefore := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(fiber.MethodGet, unmatchedPath, "404"))
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/nowhere", nil))
	require.NoError(t, err)
	resp.Body.Close()
	unmatchedAfter := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(fiber.MethodGet, unmatchedPath, "404"))
	assert.Equal(t, float64(1), unmatchedAfter-unmatchedBefore)
}
