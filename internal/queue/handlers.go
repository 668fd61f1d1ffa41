package queue

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(r fiber.Router, q *Queue) {
	r.Get("/", func(c *fiber.Ctx) error {
		runs, err := q.Runs(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if runs == nil {
			runs = []QueuedRun{}
		}
		return c.JSON(runs)
	})

	r.Get("/stats", func(c *fiber.Ctx) error {
		runs, err := q.Runs(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"pending": len(runs)})
	})
}
