package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	proconapi "github.com/JonasBM/procon-itajai-simplificado-api"
	"github.com/JonasBM/procon-itajai-simplificado-api/cmd/proconapi/config"
	"github.com/JonasBM/procon-itajai-simplificado-api/internal/logger"
	"github.com/JonasBM/procon-itajai-simplificado-api/internal/version"
)

func main() {
	var configFile string
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}
	config.Load(configFile)
	logger.Init(config.Get().Logging.Internal)
	log.WithField("version", version.VERSION).Info("Loaded Config")
	c := config.Get()

	store, err := config.LoadStorage(c.Storage, c.Users)
	if err != nil {
		log.Fatal(err)
	}

	api := proconapi.NewProconAPI(c.Server, store.Backends(), store.Blobs())
	api.Start()
}
