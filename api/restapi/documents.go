package restapi

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

// readUpload drains the multipart "arquivo" field; the bool return reports
// whether the field was present at all
func readUpload(c *fiber.Ctx) (model.Upload, bool, error) {
	fh, err := c.FormFile("arquivo")
	if err != nil {
		return model.Upload{}, false, nil
	}
	content, err := readMultipartFile(fh)
	if err != nil {
		return model.Upload{}, true, err
	}
	return model.Upload{Filename: fh.Filename, Content: content}, true, nil
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// parseDocumentForm reads the metadata fields of a multipart document
// request
func parseDocumentForm(c *fiber.Ctx) model.AddDocument {
	return model.AddDocument{
		CaseID:    uint(formInt(c, "processo")),
		Nome:      c.FormValue("nome"),
		Descricao: c.FormValue("descricao"),
	}
}

func formInt(c *fiber.Ctx, name string) int {
	n := 0
	for _, ch := range c.FormValue(name) {
		if ch < '0' || ch > '9' {
			return 0
		}
		n = n*10 + int(ch-'0')
	}
	return n
}

func registerDocuments(r fiber.Router, store model.DocumentsStore) {
	g := r.Group("/documento")

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
			req := parseDocumentForm(c)
			if req.CaseID == 0 || req.Nome == "" {
				return c.Status(fiber.StatusBadRequest).JSON(detail("processo and nome are required"))
			}
			up, present, err := readUpload(c)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("failed to read arquivo"))
			}
			if !present {
				return c.Status(fiber.StatusBadRequest).JSON(detail("arquivo is required"))
			}
			item, err := store.Create(req, up)
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
			id, err := c.ParamsInt("id")
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("invalid id"))
			}
			req := parseDocumentForm(c)
			up, present, err := readUpload(c)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("failed to read arquivo"))
			}
			var upload *model.Upload
			if present {
				upload = &up
			}
			item, err := store.Update(uint(id), req, upload)
			if err != nil {
				return storageError(c, err)
			}
			return c.JSON(item)
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
