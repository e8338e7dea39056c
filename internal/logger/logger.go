package logger

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// Conf configures the internal logger
type Conf struct {
	// Dir, when set, appends logs to proconapi.log inside it
	Dir string `yaml:"dir"`
	// StdErr additionally logs to stderr
	StdErr bool `yaml:"stderr"`
	// Level sets the verbosity (e.g. DEBUG, INFO, WARN, ERROR)
	Level string `yaml:"level"`
}

const logFileName = "proconapi.log"

// Init configures logrus from the passed Conf
func Init(conf Conf) {
	log.SetFormatter(
		&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		},
	)
	level, err := log.ParseLevel(conf.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	var writers []io.Writer
	if conf.StdErr || conf.Dir == "" {
		writers = append(writers, os.Stderr)
	}
	if conf.Dir != "" {
		f, err := os.OpenFile(
			filepath.Join(conf.Dir, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644,
		)
		if err != nil {
			log.WithError(err).Error("could not open log file, logging to stderr only")
		} else {
			writers = append(writers, f)
		}
	}
	if len(writers) == 1 {
		log.SetOutput(writers[0])
	} else {
		log.SetOutput(io.MultiWriter(writers...))
	}
}
