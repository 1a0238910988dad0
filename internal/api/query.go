package api

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"kintree/internal/filter"
	"kintree/internal/model"
)

// parseListQuery builds a filter query from the request:
//
//	search   free-text search term
//	orderBy  ascending order field name
//	page     zero-based page index
//	size     page size, clamped by the filter engine
//	filters  JSON-encoded list of {field, operator, value} triples
//	manage   include soft-deleted records (owners only)
//
// Condition validation happens at compile time in the filter engine;
// this only rejects filters that are not valid JSON.
func parseListQuery(c *fiber.Ctx) (filter.Query, error) {
	q := filter.Query{
		Search:  c.Query("search"),
		OrderBy: c.Query("orderBy"),
	}

	size := c.QueryInt("size", filter.MaxTake)
	if size < 0 {
		size = 0
	}
	// Clamp here, not just in the engine, so page offsets stay aligned
	// with the page size actually served.
	if size > filter.MaxTake {
		size = filter.MaxTake
	}
	page := c.QueryInt("page", 0)
	if page < 0 {
		page = 0
	}
	q.Take = size
	q.Skip = page * size

	if raw := c.Query("filters"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &q.Conditions); err != nil {
			return filter.Query{}, fmt.Errorf("malformed filters parameter: %w", err)
		}
	}

	if c.QueryBool("manage", false) {
		role, _ := c.Locals("role").(model.Role)
		q.Manage = role == model.RoleOwner
	}

	return q, nil
}
