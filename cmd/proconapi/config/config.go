package config

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/zachmann/go-utils/fileutils"
	"gopkg.in/yaml.v3"

	proconapi "github.com/JonasBM/procon-itajai-simplificado-api"
)

// Config holds the configuration of the whole application
type Config struct {
	Server  proconapi.ServerConf `yaml:"server"`
	Storage storageConf          `yaml:"storage"`
	Logging loggingConf          `yaml:"logging"`
	Users   usersConf            `yaml:"users"`
}

var conf *Config

// Get returns the loaded Config
func Get() *Config {
	return conf
}

var possibleConfigLocations = []string{
	"config.yaml",
	"config/config.yaml",
	"/etc/proconapi/config.yaml",
}

// Load loads the config from the given file; when file is empty the
// default locations are tried in order
func Load(file string) {
	if file == "" {
		for _, f := range possibleConfigLocations {
			if fileutils.FileExists(f) {
				file = f
				break
			}
		}
	}
	if file == "" {
		log.WithField("locations", possibleConfigLocations).Fatal("no config file found")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		log.WithError(err).WithField("file", file).Fatal("could not read config file")
	}
	conf = &Config{
		Storage: defaultStorageConf,
		Logging: defaultLoggingConf,
		Users:   defaultUsersConf,
	}
	if err = yaml.Unmarshal(data, conf); err != nil {
		log.WithError(err).Fatal("could not parse config file")
	}
	if err = conf.validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Server.TLS.Enabled {
		return errors.New("error in server conf: port must be specified when tls is disabled")
	}
	if err := c.Storage.validate(); err != nil {
		return err
	}
	return c.Logging.validate()
}
