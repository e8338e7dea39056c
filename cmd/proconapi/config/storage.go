package config

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/zachmann/go-utils/fileutils"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage"
)

type storageConf struct {
	Driver   storage.DriverType `yaml:"driver"`
	DataDir  string             `yaml:"data_dir"`
	MediaDir string             `yaml:"media_dir"`
	DSN      string             `yaml:"dsn"`
	storage.DSNConf
	Debug bool `yaml:"debug"`
}

func (c *storageConf) validate() error {
	if c.MediaDir == "" {
		return errors.New("error in storage conf: media_dir must be specified")
	}
	if !fileutils.FileExists(c.MediaDir) {
		return errors.Errorf("media directory '%s' does not exist", c.MediaDir)
	}
	if c.Driver == storage.DriverSQLite {
		if c.DataDir == "" {
			return errors.New("error in storage conf: data_dir must be specified")
		}
		return nil
	}
	var err error
	if c.DSN == "" {
		c.DSN, err = storage.DSN(c.Driver, c.DSNConf)
	}
	return err
}

var defaultStorageConf = storageConf{
	Driver:   storage.DriverSQLite,
	MediaDir: "media",
	DSNConf: storage.DSNConf{
		User: "proconapi",
		Host: "localhost",
		DB:   "proconapi",
	},
	Debug: false,
}

// LoadStorage opens the configured storage backend
func LoadStorage(c storageConf, users usersConf) (*storage.Storage, error) {
	s, err := storage.NewStorage(
		storage.Config{
			Driver:    c.Driver,
			DSN:       c.DSN,
			DataDir:   c.DataDir,
			MediaDir:  c.MediaDir,
			Debug:     c.Debug,
			UsersHash: users.Argon2idParams,
		},
	)
	if err != nil {
		return nil, err
	}
	log.Info("Loaded storage backend")
	return s, nil
}
