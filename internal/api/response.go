package api

import "github.com/gofiber/fiber/v2"

// Response is the envelope every endpoint answers with. Status repeats
// the HTTP status code so clients that only look at the body can still
// branch on it.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Error   bool   `json:"error"`
	Data    any    `json:"data,omitempty"`
}

// PagedData wraps one page of a listing together with the total count
// across all pages.
type PagedData struct {
	Items any `json:"items"`
	Total int `json:"total"`
}

func Success(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

func Fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Error:   true,
	})
}
