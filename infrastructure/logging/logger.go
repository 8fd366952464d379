package logging

import (
	"fmt"
	"io"
	"os"

	"video-to-mp3/infrastructure/config"

	"github.com/sirupsen/logrus"
)

// New builds a logrus logger from the logging section of the config
func New(cfg config.LoggingConfig, out io.Writer) (*logrus.Logger, error) {
	if out == nil {
		out = os.Stderr
	}

	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format %q: expected text or json", cfg.Format)
	}

	return logger, nil
}
