package restapi

import (
	"fmt"
	"path"

	"github.com/gofiber/fiber/v2"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/fileblob"
	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

// registerMedia serves stored document blobs. The requested path must match
// a Document row exactly; blobs without a row are unreachable.
func registerMedia(r fiber.Router, docs model.DocumentsStore, blobs *fileblob.Store) {
	r.Get(
		"/media/documentos/:folder/:file", func(c *fiber.Ctx) error {
			rel := path.Join("documentos", c.Params("folder"), c.Params("file"))
			doc, err := docs.GetByArquivo(rel)
			if err != nil {
				return c.Status(fiber.StatusNotFound).JSON(detail("Não encontrado."))
			}
			if !blobs.Exists(doc.Arquivo) {
				return c.Status(fiber.StatusNotFound).JSON(detail("Não encontrado."))
			}
			c.Set(
				fiber.HeaderContentDisposition,
				fmt.Sprintf(`attachment; filename="%s"`, path.Base(doc.Arquivo)),
			)
			return c.SendFile(blobs.Abs(doc.Arquivo))
		},
	)
}
