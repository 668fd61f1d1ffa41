package syncer

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(r fiber.Router, e *Engine) {
	r.Post("/", func(c *fiber.Ctx) error {
		e.Kick()
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "sync triggered"})
	})

	r.Get("/status", func(c *fiber.Ctx) error {
		state, last := e.Status()
		return c.JSON(fiber.Map{
			"state":  state,
			"online": e.Online(),
			"last":   last,
		})
	})
}
