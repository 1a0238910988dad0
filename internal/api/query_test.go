package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kintree/internal/filter"
	"kintree/internal/model"
)

func queryFor(t *testing.T, target string, locals map[string]any) filter.Query {
	t.Helper()

	var got filter.Query
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		for k, v := range locals {
			c.Locals(k, v)
		}
		q, err := parseListQuery(c)
		if err != nil {
			return err
		}
		got = q
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	return got
}

func TestParseListQueryDefaults(t *testing.T) {
	q := queryFor(t, "/items", nil)
	assert.Equal(t, filter.MaxTake, q.Take)
	assert.Equal(t, 0, q.Skip)
	assert.False(t, q.Manage)
}

func TestParseListQueryPaging(t *testing.T) {
	q := queryFor(t, "/items?size=10&page=3", nil)
	assert.Equal(t, 10, q.Take)
	assert.Equal(t, 30, q.Skip)
}

func TestParseListQueryClampsOversizedPages(t *testing.T) {
	// An oversized page size must be clamped before the offset is
	// computed, otherwise consecutive pages skip records.
	q := queryFor(t, "/items?size=120&page=1", nil)
	assert.Equal(t, filter.MaxTake, q.Take)
	assert.Equal(t, filter.MaxTake, q.Skip)
}

func TestParseListQueryNegativeValues(t *testing.T) {
	q := queryFor(t, "/items?size=-5&page=-2", nil)
	assert.Equal(t, 0, q.Take)
	assert.Equal(t, 0, q.Skip)
}

func TestParseListQueryManageRequiresOwner(t *testing.T) {
	q := queryFor(t, "/items?manage=true", nil)
	assert.False(t, q.Manage)

	q = queryFor(t, "/items?manage=true", map[string]any{"role": model.RoleMember})
	assert.False(t, q.Manage)

	q = queryFor(t, "/items?manage=true", map[string]any{"role": model.RoleOwner})
	assert.True(t, q.Manage)
}

func TestParseListQueryRejectsMalformedFilters(t *testing.T) {
	var parseErr error
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		_, parseErr = parseListQuery(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items?filters=not-json", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Error(t, parseErr)
}
