// Package config loads CLI configuration from the environment and sets up
// the global logger.
package config

import (
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration. All fields come from PAPERLESS_*
// environment variables.
type Config struct {
	// ServiceURL is the base URL of the document service.
	ServiceURL string `envconfig:"SERVICE_URL" default:"http://localhost:8080"`
	// LogLevel is the zerolog level name (debug, info, warn, error).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// StateDir holds client-local state such as the chat session id.
	// Defaults to ~/.paperless.
	StateDir string `envconfig:"STATE_DIR"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("PAPERLESS", &cfg); err != nil {
		return nil, err
	}
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.StateDir = filepath.Join(home, ".paperless")
	}
	return &cfg, nil
}

// Init configures logging from the loaded settings.
func (c *Config) Init() {
	InitLogger()
	SetLogLevel(c.Level())
}

// Level parses the configured log level, defaulting to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// InitLogger configures zerolog for text output with no coloring.
func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	})
}

// SetLogLevel sets the global log level for zerolog.
func SetLogLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}
