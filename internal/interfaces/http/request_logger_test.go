package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/holaaposmx/Controdealmacenfrio/internal/interfaces/http"
)

func TestRequestLogger_RegistraEstadoYUsuario(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(apphttp.RequestLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	app.Get("/api/lots/:id", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"code": "NOT_FOUND"})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/lots/L-9", nil)
	req.Header.Set("Authorization", tokenForRole(t, "operador"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
	assert.Equal(t, "/api/lots/L-9", entry["path"])
	assert.Equal(t, testUserName, entry["user"])
}
