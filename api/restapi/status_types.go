package restapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

func registerStatusTypes(r fiber.Router, store model.StatusTypesStore) {
	g := r.Group("/tipodesituacao")

	g.Get(
		"/", func(c *fiber.Ctx) error {
			items, err := store.List()
			if err != nil {
				return storageError(c, err)
			}
			return c.JSON(items)
		},
	)

	g.Post(
		"/", requireStaff, func(c *fiber.Ctx) error {
			var req model.AddStatusType
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("invalid body"))
			}
			if req.Nome == "" {
				return c.Status(fiber.StatusBadRequest).JSON(detail("nome is required"))
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
		"/:id", requireStaff, func(c *fiber.Ctx) error {
			id, err := c.ParamsInt("id")
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("invalid id"))
			}
			var req model.AddStatusType
			if err = c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("invalid body"))
			}
			item, err := store.Update(uint(id), req)
			if err != nil {
				return storageError(c, err)
			}
			return c.JSON(item)
		},
	)

	g.Delete(
		"/:id", requireStaff, func(c *fiber.Ctx) error {
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

	// Rank reordering. All three parameters are required and numeric; the
	// collection is never touched when validation fails.
	r.Get(
		"/changetipodesituacaoordem", requireStaff, func(c *fiber.Ctx) error {
			id, err1 := paramUint(c, "tipo_de_situacao_id")
			oldRank, err2 := paramUint(c, "ordem_anterior")
			newRank, err3 := paramUint(c, "ordem_nova")
			if err1 != nil || err2 != nil || err3 != nil {
				return c.Status(fiber.StatusBadRequest).JSON(
					detail("tipo_de_situacao_id, ordem_anterior and ordem_nova are required"),
				)
			}
			items, err := store.Reorder(id, oldRank, newRank)
			if err != nil {
				return storageError(c, err)
			}
			return c.JSON(items)
		},
	)
}

// paramUint reads a required numeric query parameter
func paramUint(c *fiber.Ctx, name string) (uint, error) {
	v := c.Query(name)
	if v == "" {
		return 0, model.InvalidRequestErrorFmt("%s is required", name)
	}
	n := c.QueryInt(name, -1)
	if n < 0 {
		return 0, model.InvalidRequestErrorFmt("%s must be a number", name)
	}
	return uint(n), nil
}
