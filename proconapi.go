package proconapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"

	"github.com/JonasBM/procon-itajai-simplificado-api/api/restapi"
	"github.com/JonasBM/procon-itajai-simplificado-api/storage/fileblob"
	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

// FiberServerConfig is the fiber.Config that is used to init the http fiber.App
var FiberServerConfig = fiber.Config{
	ReadTimeout:    3 * time.Second,
	WriteTimeout:   30 * time.Second,
	IdleTimeout:    150 * time.Second,
	ReadBufferSize: 8192,
	BodyLimit:      64 * 1024 * 1024, // document and workbook uploads
	Network:        "tcp",
}

// ProconAPI is the case-management server: a fiber app serving the REST
// endpoints over the configured storage backends and blob store.
type ProconAPI struct {
	server     *fiber.App
	serverConf ServerConf
	storages   model.Backends
	blobs      *fileblob.Store
}

// NewProconAPI creates a new ProconAPI and mounts all routes
func NewProconAPI(serverConf ServerConf, storages model.Backends, blobs *fileblob.Store) *ProconAPI {
	if tps := serverConf.TrustedProxies; len(tps) > 0 {
		FiberServerConfig.TrustedProxies = tps
		FiberServerConfig.EnableTrustedProxyCheck = true
	}
	FiberServerConfig.ProxyHeader = serverConf.ForwardedIPHeader
	if serverConf.BodyLimitMiB > 0 {
		FiberServerConfig.BodyLimit = serverConf.BodyLimitMiB * 1024 * 1024
	}
	server := fiber.New(FiberServerConfig)
	server.Use(recover.New())
	server.Use(compress.New())
	server.Use(logger.New())
	server.Use(requestid.New())

	a := &ProconAPI{
		server:     server,
		serverConf: serverConf,
		storages:   storages,
		blobs:      blobs,
	}
	restapi.Register(
		server.Group("/api"), storages, blobs, restapi.Bridge{
			Export: a.ExportCases,
			Import: func(r io.Reader) error {
				_, err := a.ImportCases(r)
				return err
			},
			Archive: a.ArchiveCaseDocuments,
		},
	)
	return a
}

// HttpHandlerFunc returns an http.HandlerFunc for serving all the necessary endpoints
func (a *ProconAPI) HttpHandlerFunc() http.HandlerFunc {
	return adaptor.FiberApp(a.server)
}

// Listen starts an http server at the specific address for serving all the
// necessary endpoints
func (a *ProconAPI) Listen(addr string) error {
	return a.server.Listen(addr)
}

// Start starts the server according to the ServerConf
func (a *ProconAPI) Start() {
	conf := a.serverConf
	if !conf.TLS.Enabled {
		log.WithField("port", conf.Port).Info("TLS is disabled, starting http server")
		log.WithError(a.server.Listen(fmt.Sprintf("%s:%d", conf.IPListen, conf.Port))).Fatal()
	}
	if conf.TLS.RedirectHTTP {
		httpServer := fiber.New(FiberServerConfig)
		httpServer.All(
			"*", func(ctx *fiber.Ctx) error {
				//goland:noinspection HttpUrlsUsage
				return ctx.Redirect(
					strings.Replace(ctx.Request().URI().String(), "http://", "https://", 1),
					fiber.StatusPermanentRedirect,
				)
			},
		)
		log.Info("TLS and http redirect enabled, starting redirect server on port 80")
		go func() {
			log.WithError(httpServer.Listen(":80")).Fatal()
		}()
	}
	log.Info("TLS enabled, starting https server on port 443")
	log.WithError(a.server.ListenTLS(":443", conf.TLS.Cert, conf.TLS.Key)).Fatal()
}
