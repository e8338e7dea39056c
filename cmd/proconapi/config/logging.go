package config

import (
	"github.com/pkg/errors"
	"github.com/zachmann/go-utils/fileutils"

	"github.com/JonasBM/procon-itajai-simplificado-api/internal/logger"
)

// loggingConf holds all logging-related configuration under the `logging`
// key.
//
// YAML example:
//
//	logging:
//	  internal:
//	    dir: /var/log/proconapi
//	    stderr: true
//	    level: INFO
type loggingConf struct {
	Internal logger.Conf `yaml:"internal"`
}

func (l *loggingConf) validate() error {
	if dir := l.Internal.Dir; dir != "" && !fileutils.FileExists(dir) {
		return errors.Errorf("logging directory '%s' does not exist", dir)
	}
	return nil
}

var defaultLoggingConf = loggingConf{
	Internal: logger.Conf{
		Level:  "INFO",
		StdErr: true,
	},
}
