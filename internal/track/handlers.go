package track

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
)

// SubmitFunc routes a finalized record to the server or the offline queue.
// The returned string reports where it landed ("synced" or "queued").
type SubmitFunc func(ctx context.Context, rec RunRecord) (string, error)

func RegisterRoutes(r fiber.Router, rec *Recorder, submit SubmitFunc) {
	r.Post("/start", func(c *fiber.Ctx) error {
		id, err := rec.Start(c.Context())
		if err != nil {
			if errors.Is(err, ErrSessionActive) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session_id": id})
	})

	r.Post("/stop", func(c *fiber.Ctx) error {
		record, err := rec.Stop(c.Context())
		if err != nil {
			var rejection *RejectionError
			if errors.As(err, &rejection) {
				return c.JSON(fiber.Map{
					"saved":   false,
					"reason":  rejection.Reason,
					"message": rejection.Message,
				})
			}
			if errors.Is(err, ErrNoActiveSession) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		outcome, err := submit(c.Context(), record)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"saved": true, "status": outcome, "run": record})
	})

	r.Post("/discard", func(c *fiber.Ctx) error {
		rec.Discard()
		return c.JSON(fiber.Map{"discarded": true})
	})

	r.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(rec.Status())
	})
}
