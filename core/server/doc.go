// Package server holds the HTTP server configuration.
//
// The Config struct defines the listen port, the default profile served to requests
// that name none, and request limits translated into fiber settings by FiberConfig.
package server
