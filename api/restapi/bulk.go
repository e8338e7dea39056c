package restapi

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// registerBulk mounts the workbook and zip endpoints backed by the Bridge
func registerBulk(r fiber.Router, bridge Bridge) {
	r.Get(
		"/download_documentos_do_processo", func(c *fiber.Ctx) error {
			id := c.QueryInt("processo_id", -1)
			if id < 0 {
				return c.Status(fiber.StatusBadRequest).JSON(detail("processo_id is required"))
			}
			data, err := bridge.Archive(uint(id))
			if err != nil {
				return storageError(c, err)
			}
			c.Set(fiber.HeaderContentType, "application/zip")
			c.Set(
				fiber.HeaderContentDisposition,
				fmt.Sprintf(`attachment; filename="documentos_processo_%d.zip"`, id),
			)
			return c.Send(data)
		},
	)

	r.Get(
		"/download_todos_processos", requireStaff, func(c *fiber.Ctx) error {
			var buf bytes.Buffer
			if err := bridge.Export(&buf); err != nil {
				return storageError(c, err)
			}
			c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			c.Set(
				fiber.HeaderContentDisposition,
				fmt.Sprintf(`attachment; filename="processos_%s.xlsx"`, time.Now().Format("2006-01-02")),
			)
			return c.Send(buf.Bytes())
		},
	)

	r.Put(
		"/exportar_processos", requireStaff, func(c *fiber.Ctx) error {
			fh, err := c.FormFile("planilha")
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("planilha is required"))
			}
			f, err := fh.Open()
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("failed to read planilha"))
			}
			defer f.Close()
			if err = bridge.Import(f); err != nil {
				return storageError(c, err)
			}
			return c.SendStatus(fiber.StatusNoContent)
		},
	)
}
