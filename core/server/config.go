package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// Profile is the catalog/record profile used when a request names none.
	Profile string `mapstructure:"profile" default:"default"`
	// ReadTimeoutSeconds bounds reading a request.
	ReadTimeoutSeconds int `mapstructure:"read_timeout_seconds" default:"30"`
	// BodyLimitKB bounds request bodies.
	BodyLimitKB int `mapstructure:"body_limit_kb" default:"512"`
}

// Address returns the listen address.
func (c Config) Address() string {
	return ":" + c.Port
}

// FiberConfig returns the fiber settings derived from c.
func (c Config) FiberConfig() fiber.Config {
	cfg := fiber.Config{
		DisableStartupMessage: true,
	}
	if c.ReadTimeoutSeconds > 0 {
		cfg.ReadTimeout = time.Duration(c.ReadTimeoutSeconds) * time.Second
	}
	if c.BodyLimitKB > 0 {
		cfg.BodyLimit = c.BodyLimitKB * 1024
	}
	return cfg
}
