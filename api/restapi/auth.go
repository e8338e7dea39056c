package restapi

import (
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

const (
	localUser  = "user"
	localToken = "token"
)

// currentUser returns the authenticated user set by authMiddleware
func currentUser(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(localUser).(*model.User)
	return u
}

// authMiddleware resolves the bearer token to its user and stores both in
// the request locals. Requests without a valid token of an active user are
// rejected.
func authMiddleware(users model.UsersStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := parseTokenAuth(c)
		if !ok {
			c.Set("WWW-Authenticate", "Token")
			return c.Status(fiber.StatusUnauthorized).JSON(detail("As credenciais de autenticação não foram fornecidas."))
		}
		u, err := users.UserForToken(token)
		if err != nil || !u.IsActive {
			c.Set("WWW-Authenticate", "Token")
			return c.Status(fiber.StatusUnauthorized).JSON(detail("Token inválido."))
		}
		c.Locals(localUser, u)
		c.Locals(localToken, token)
		return c.Next()
	}
}

// requireStaff guards routes only staff accounts may call
func requireStaff(c *fiber.Ctx) error {
	if u := currentUser(c); u == nil || !u.IsStaff {
		return c.Status(fiber.StatusForbidden).JSON(detail("Você não tem permissão para executar essa ação."))
	}
	return c.Next()
}

// parseTokenAuth extracts the token value from the Authorization header.
// Both the "Token" and the "Bearer" scheme are accepted.
func parseTokenAuth(c *fiber.Ctx) (token string, ok bool) {
	auth := string(c.Request().Header.Peek("Authorization"))
	for _, prefix := range []string{"Token ", "Bearer "} {
		if strings.HasPrefix(auth, prefix) && len(auth) > len(prefix) {
			return auth[len(prefix):], true
		}
	}
	return "", false
}

// parseBasicAuth extracts Basic auth credentials from request headers
func parseBasicAuth(c *fiber.Ctx) (username, password string, ok bool) {
	auth := string(c.Request().Header.Peek("Authorization"))
	const prefix = "Basic "
	if !strings.HasPrefix(auth, prefix) {
		return "", "", false
	}
	b, err := base64.StdEncoding.DecodeString(auth[len(prefix):])
	if err != nil {
		return "", "", false
	}
	creds := string(b)
	i := strings.IndexByte(creds, ':')
	if i < 0 {
		return "", "", false
	}
	return creds[:i], creds[i+1:], true
}

// registerLogin mounts the only route reachable without a token
func registerLogin(r fiber.Router, users model.UsersStore) {
	r.Post(
		"/auth/login", func(c *fiber.Ctx) error {
			username, password, ok := parseBasicAuth(c)
			if !ok {
				c.Set("WWW-Authenticate", "Basic realm=api")
				return c.Status(fiber.StatusUnauthorized).JSON(detail("As credenciais de autenticação não foram fornecidas."))
			}
			u, err := users.Authenticate(username, password)
			if err != nil {
				c.Set("WWW-Authenticate", "Basic realm=api")
				return c.Status(fiber.StatusUnauthorized).JSON(detail("Usuário ou senha inválido."))
			}
			token, err := users.IssueToken(u.ID)
			if err != nil {
				return storageError(c, err)
			}
			return c.JSON(fiber.Map{"token": token, "user": userDTOFor(u, u)})
		},
	)
}

// registerAuthenticated mounts the token-bound session routes
func registerAuthenticated(r fiber.Router, users model.UsersStore) {
	// token echo, lets a client validate a stored token
	r.Get(
		"/auth/login", func(c *fiber.Ctx) error {
			u := currentUser(c)
			token, _ := c.Locals(localToken).(string)
			return c.JSON(fiber.Map{"token": token, "user": userDTOFor(u, u)})
		},
	)

	r.Post(
		"/auth/logout", func(c *fiber.Ctx) error {
			token, _ := c.Locals(localToken).(string)
			if err := users.RevokeToken(token); err != nil {
				return storageError(c, err)
			}
			return c.SendStatus(fiber.StatusNoContent)
		},
	)

	r.Post(
		"/auth/logoutall", func(c *fiber.Ctx) error {
			if err := users.RevokeAllTokens(currentUser(c).ID); err != nil {
				return storageError(c, err)
			}
			return c.SendStatus(fiber.StatusNoContent)
		},
	)

	type changePasswordReq struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	r.Put(
		"/changepassword", func(c *fiber.Ctx) error {
			var req changePasswordReq
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(detail("invalid body"))
			}
			if req.NewPassword == "" {
				return c.Status(fiber.StatusBadRequest).JSON(detail("new_password is required"))
			}
			if err := users.ChangePassword(currentUser(c).ID, req.OldPassword, req.NewPassword); err != nil {
				var invalid model.InvalidRequestError
				if errors.As(err, &invalid) {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"old_password": []string{invalid.Error()}})
				}
				return storageError(c, err)
			}
			return c.SendStatus(fiber.StatusNoContent)
		},
	)
}
