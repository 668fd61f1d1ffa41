package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes exposes the run-history proxy on the local control API.
func RegisterRoutes(r fiber.Router, client *Client) {
	r.Get("/", func(c *fiber.Ctx) error {
		runs, err := client.UserRuns(c.Context())
		if err != nil {
			return proxyError(err)
		}
		return c.JSON(runs)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		if err := client.DeleteRun(c.Context(), c.Params("id")); err != nil {
			return proxyError(err)
		}
		return c.JSON(fiber.Map{"deleted": true})
	})
}

func proxyError(err error) error {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return fiber.NewError(serverErr.Status, serverErr.Message)
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return fiber.NewError(fiber.StatusBadGateway, netErr.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
