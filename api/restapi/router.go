package restapi

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/fileblob"
	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

// Bridge carries the bulk operations implemented by the server root so the
// handlers can invoke them without a direct dependency.
type Bridge struct {
	// Export writes the full case workbook to w
	Export func(w io.Writer) error
	// Import reads a case workbook from r
	Import func(r io.Reader) error
	// Archive returns a zip of every document blob of the given case
	Archive func(caseID uint) ([]byte, error)
}

// Register mounts all REST routes under the provided group. Every route
// except the login endpoints requires a valid token.
func Register(r fiber.Router, storages model.Backends, blobs *fileblob.Store, bridge Bridge) {
	registerLogin(r, storages.Users)
	r.Use(authMiddleware(storages.Users))

	registerAuthenticated(r, storages.Users)
	registerCases(r, storages.Cases)
	registerStatusTypes(r, storages.StatusTypes)
	registerStatusEvents(r, storages.StatusEvents)
	registerDocuments(r, storages.Documents)
	registerComments(r, storages.Comments)
	registerUsers(r, storages.Users)
	registerBulk(r, bridge)
	registerMedia(r, storages.Documents, blobs)
}
