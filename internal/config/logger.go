package config

import (
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// NewLogger returns a text logger at the given level ("debug", "info",
// "warn", "error").
func NewLogger(w io.Writer, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return logger, nil
}

// LoadEnvFile reads KEY=VALUE pairs passed to every benchmark program.
// An empty path yields no variables.
func LoadEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return env, nil
}
