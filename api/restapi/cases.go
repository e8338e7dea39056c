package restapi

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

const (
	defaultPageSize = 5
	maxPageSize     = 100
)

// pageResponse is the envelope for paginated list endpoints
type pageResponse struct {
	Count    int64        `json:"count"`
	NumPages int          `json:"num_pages"`
	Next     *string      `json:"next"`
	Previous *string      `json:"previous"`
	Results  []model.Case `json:"results"`
}

// parsePage reads page/page_size from the query string, clamping the size
func parsePage(c *fiber.Ctx) model.Page {
	p := model.Page{Number: c.QueryInt("page", 1), Size: c.QueryInt("page_size", defaultPageSize)}
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

// pageURL rebuilds the request URL with the given page number
func pageURL(c *fiber.Ctx, page int) *string {
	q, _ := url.ParseQuery(string(c.Request().URI().QueryString()))
	q.Set("page", strconv.Itoa(page))
	u := c.BaseURL() + c.Path() + "?" + q.Encode()
	return &u
}

func registerCases(r fiber.Router, cases model.CasesStore) {
	g := r.Group("/processo")

	g.Get(
		"/", func(c *fiber.Ctx) error {
			filter := model.CaseFilter{
				Identificacao:      c.Query("identificacao"),
				AutoInfracao:       c.Query("auto_infracao"),
				FichaDeAtendimento: c.Query("ficha_de_atendimento"),
				Reclamante:         c.Query("reclamante"),
				Reclamada:          c.Query("reclamada"),
				CPFCNPJ:            c.Query("cpf_cnpj"),
				TipoDeSituacao:     uint(c.QueryInt("tipo_de_situacao")),
			}
			page := parsePage(c)
			res, err := cases.List(filter, page)
			if err != nil {
				return storageError(c, err)
			}
			numPages := int((res.Total + int64(page.Size) - 1) / int64(page.Size))
			if numPages < 1 {
				numPages = 1
			}
			if page.Number > numPages {
				return c.Status(fiber.StatusNotFound).JSON(detail(fmt.Sprintf("Página inválida: %d.", page.Number)))
			}
			resp := pageResponse{Count: res.Total, NumPages: numPages, Results: res.Cases}
			if page.Number < numPages {
				resp.Next = pageURL(c, page.Number+1)
			}
			if page.Number > 1 {
				resp.Previous = pageURL(c, page.Number-1)
			}
			return c.JSON(resp)
		},
	)

	g.Post(
		"/", func(c *fiber.Ctx) error {
			var req model.AddCase
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("invalid body"))
			}
			if req.Identificacao == "" {
				return c.Status(fiber.StatusBadRequest).JSON(detail("identificacao is required"))
			}
			item, err := cases.Create(req)
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
			item, err := cases.Get(uint(id))
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
			var req model.AddCase
			if err = c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("invalid body"))
			}
			item, err := cases.Update(uint(id), req)
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
			if err = cases.Delete(uint(id)); err != nil {
				return storageError(c, err)
			}
			return c.SendStatus(fiber.StatusNoContent)
		},
	)
}
