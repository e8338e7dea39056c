package restapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

// Comments are write-once; the owner is always the calling user and PUT is
// rejected outright.
func registerComments(r fiber.Router, store model.DocumentCommentsStore) {
	g := r.Group("/comentario")

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
		"/", func(c *fiber.Ctx) error {
			var req model.AddDocumentComment
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("invalid body"))
			}
			if req.DocumentID == 0 || req.Comentario == "" {
				return c.Status(fiber.StatusBadRequest).JSON(detail("documento and comentario are required"))
			}
			item, err := store.Create(currentUser(c).ID, req)
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
			item, err := store.Get(uint(id))
			if err != nil {
				return storageError(c, err)
			}
			if u := currentUser(c); item.OwnerID != u.ID && !u.IsStaff {
				return c.Status(fiber.StatusForbidden).JSON(detail("Você não tem permissão para executar essa ação."))
			}
			if err = store.Delete(uint(id)); err != nil {
				return storageError(c, err)
			}
			return c.SendStatus(fiber.StatusNoContent)
		},
	)
}
