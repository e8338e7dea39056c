package restapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

// minimalUserDTO is what any authenticated caller may see about another
// account, enough to display comment authorship
type minimalUserDTO struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// fullUserDTO is the management representation, visible to staff and to the
// account itself
type fullUserDTO struct {
	ID          uint           `json:"id"`
	Username    string         `json:"username"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	IsStaff     bool           `json:"is_staff"`
	IsSuperuser bool           `json:"is_superuser"`
	IsActive    bool           `json:"is_active"`
	LastLogin   time.Time      `json:"last_login"`
	DateJoined  time.Time      `json:"date_joined"`
	Profile     *model.Profile `json:"profile,omitempty"`
}

func minimalUser(u *model.User) minimalUserDTO {
	return minimalUserDTO{ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
}

func fullUser(u *model.User) fullUserDTO {
	return fullUserDTO{
		ID:          u.ID,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		LastLogin:   u.LastLogin,
		DateJoined:  u.DateJoined,
		Profile:     u.Profile,
	}
}

// userDTOFor shapes a user for the given viewer: staff and the account
// itself get the full representation, everyone else the minimal one
func userDTOFor(u, viewer *model.User) any {
	if viewer != nil && (viewer.IsStaff || viewer.ID == u.ID) {
		return fullUser(u)
	}
	return minimalUser(u)
}

func registerUsers(r fiber.Router, users model.UsersStore) {
	// read-only name lookup, available to every authenticated caller
	u := r.Group("/user")

	u.Get(
		"/", func(c *fiber.Ctx) error {
			list, err := users.List(true)
			if err != nil {
				return storageError(c, err)
			}
			out := make([]minimalUserDTO, len(list))
			for i := range list {
				out[i] = minimalUser(&list[i])
			}
			return c.JSON(out)
		},
	)

	u.Get(
		"/:id", func(c *fiber.Ctx) error {
			id, err := c.ParamsInt("id")
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("invalid id"))
			}
			item, err := users.Get(uint(id))
			if err != nil {
				return storageError(c, err)
			}
			return c.JSON(minimalUser(item))
		},
	)

	// account management, shaped per caller role
	g := r.Group("/userprofile")

	g.Get(
		"/", func(c *fiber.Ctx) error {
			viewer := currentUser(c)
			if !viewer.IsStaff {
				self, err := users.Get(viewer.ID)
				if err != nil {
					return storageError(c, err)
				}
				return c.JSON([]fullUserDTO{fullUser(self)})
			}
			list, err := users.List(viewer.IsSuperuser)
			if err != nil {
				return storageError(c, err)
			}
			out := make([]fullUserDTO, len(list))
			for i := range list {
				out[i] = fullUser(&list[i])
			}
			return c.JSON(out)
		},
	)

	g.Post(
		"/", requireStaff, func(c *fiber.Ctx) error {
			var req model.AddUser
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("invalid body"))
			}
			if req.Username == "" {
				return c.Status(fiber.StatusBadRequest).JSON(detail("username is required"))
			}
			item, err := users.Create(req)
			if err != nil {
				return storageError(c, err)
			}
			return c.Status(fiber.StatusCreated).JSON(fullUser(item))
		},
	)

	g.Get(
		"/:id", func(c *fiber.Ctx) error {
			id, err := c.ParamsInt("id")
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("invalid id"))
			}
			viewer := currentUser(c)
			if !viewer.IsStaff && viewer.ID != uint(id) {
				return c.Status(fiber.StatusForbidden).JSON(detail("Você não tem permissão para executar essa ação."))
			}
			item, err := users.Get(uint(id))
			if err != nil {
				return storageError(c, err)
			}
			return c.JSON(fullUser(item))
		},
	)

	g.Put(
		"/:id", func(c *fiber.Ctx) error {
			id, err := c.ParamsInt("id")
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("invalid id"))
			}
			viewer := currentUser(c)
			if !viewer.IsStaff && viewer.ID != uint(id) {
				return c.Status(fiber.StatusForbidden).JSON(detail("Você não tem permissão para executar essa ação."))
			}
			var req model.AddUser
			if err = c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("invalid body"))
			}
			if !viewer.IsStaff {
				// non-staff may edit their own names and profile only
				req.IsStaff = nil
				req.IsSuperuser = nil
				req.IsActive = nil
				req.Password = nil
			}
			item, err := users.Update(uint(id), req)
			if err != nil {
				return storageError(c, err)
			}
			return c.JSON(fullUser(item))
		},
	)

	g.Delete(
		"/:id", requireStaff, func(c *fiber.Ctx) error {
			id, err := c.ParamsInt("id")
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("invalid id"))
			}
			if err = users.Delete(uint(id)); err != nil {
				return storageError(c, err)
			}
			return c.SendStatus(fiber.StatusNoContent)
		},
	)
}
