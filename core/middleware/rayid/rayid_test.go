package rayid

import (
	"net/http/httptest"
	"strings"
	"testing"

	"roster-workbench/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	app := fiber.New()
	app.Use(New())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(logger.RayIDLocal).(string))
	})

	t.Run("Generated", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		id := resp.Header.Get(Header)
		_, parseErr := uuid.Parse(id)
		assert.NoError(t, parseErr)
	})

	t.Run("Propagated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(Header, "client-42")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "client-42", resp.Header.Get(Header))
	})

	t.Run("Oversized", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(Header, strings.Repeat("x", 200))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Len(t, resp.Header.Get(Header), 36)
	})
}
