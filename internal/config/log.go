package config

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogConfig selects the logrus level and output format.
type LogConfig struct {
	Level  logrus.Level
	Format string // "json" or "text"
}

// LoadLogConfig reads LOG_LEVEL (default info) and LOG_FORMAT (default
// json).  Unknown levels fall back to info.
func LoadLogConfig() LogConfig {
	level, err := logrus.ParseLevel(envStr("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	format := strings.ToLower(envStr("LOG_FORMAT", "json"))
	if format != "text" {
		format = "json"
	}
	return LogConfig{Level: level, Format: format}
}

// NewLogger builds a logger writing to stdout.
func (c LogConfig) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(c.Level)
	if c.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}
