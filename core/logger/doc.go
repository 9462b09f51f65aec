// Package logger provides the zap logger used across the service.
//
// Debug level selects zap's development preset; anything else the production preset
// with the configured minimum level. Format picks json or console encoding.
//
// WithRayID attaches the request id stored by the rayid middleware, so every line
// logged while serving a request can be correlated.
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	l := logger.WithRayID(log, c)
//	l.Warn("Option fetch failed", zap.Error(err))
package logger
