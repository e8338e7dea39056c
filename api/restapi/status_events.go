package restapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

// Status events are append-only: creating one fans a comment out to every
// document of the case, so there is no update route at all.
func registerStatusEvents(r fiber.Router, store model.StatusEventsStore) {
	g := r.Group("/situacao")

	g.Get(
		"/", func(c *fiber.Ctx) error {
			items, err := store.List(uint(c.QueryInt("processo_id")))
			if err != nil {
				return storageError(c, err)
			}
			return c.JSON(items)
		},
	)

	g.Post(
		"/", func(c *fiber.Ctx) error {
			var req model.AddStatusEvent
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("invalid body"))
			}
			if req.CaseID == 0 || req.StatusTypeID == 0 {
				return c.Status(fiber.StatusBadRequest).JSON(detail("processo and tipo_de_situacao are required"))
			}
			item, err := store.Create(req)
			if err != nil {
				return storageError(c, err)
			}
			return c.Status(fiber.StatusCreated).JSON(item)
		},
	)

	g.Get(
		"/:id", func(c *fiber.Ctx) error {
			id, err := c.ParamsInt("id")
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("invalid id"))
			}
			item, err := store.Get(uint(id))
			if err != nil {
				return storageError(c, err)
			}
			return c.JSON(item)
		},
	)

	g.Put(
		"/:id", func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusMethodNotAllowed).JSON(detail("Método \"PUT\" não é permitido."))
		},
	)

	g.Delete(
		"/:id", func(c *fiber.Ctx) error {
			id, err := c.ParamsInt("id")
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("invalid id"))
			}
			if err = store.Delete(uint(id)); err != nil {
				return storageError(c, err)
			}
			return c.SendStatus(fiber.StatusNoContent)
		},
	)
}
