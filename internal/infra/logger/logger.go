// internal/infra/logger/logger.go
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"homework_status_bot/internal/infra/config"
)

// New builds a logger from application configuration. A nil cfg yields a
// debug-level text logger, which is what main uses before config is loaded.
func New(cfg *config.AppConfig) *logrus.Logger {
	return NewWithOutput(cfg, os.Stdout)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(cfg *config.AppConfig, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	levelName, environment := "debug", "development"
	if cfg != nil {
		levelName, environment = cfg.LogLevel, cfg.Environment
	}

	// Set Log Level
	level, err := logrus.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		log.SetLevel(logrus.DebugLevel)
		log.Warnf("Invalid log level '%s', defaulting to 'debug'. Error: %v", levelName, err)
	} else {
		log.SetLevel(level)
	}

	// Set Log Formatter
	switch strings.ToLower(environment) {
	case "production", "staging":
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
		})
	default:
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	log.Debugf("Logger initialized: level=%s environment=%s", log.GetLevel(), environment)
	return log
}
