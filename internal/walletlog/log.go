// Package walletlog provides the structured logger shared across engine
// packages. It wraps hclog the way the teacher's backend wrapped a
// Vault-supplied logger, but constructs its own instead of receiving one
// from a plugin host.
package walletlog

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// New returns a named hclog.Logger writing to stderr at Info level by
// default; set WALLET_LOG_LEVEL to override (debug, warn, error).
func New(name string) hclog.Logger {
	level := hclog.Info
	if v := os.Getenv("WALLET_LOG_LEVEL"); v != "" {
		level = hclog.LevelFromString(v)
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  level,
		Output: os.Stderr,
	})
}

// NoOp returns a logger that discards everything, for tests that do not
// want log noise but still need to satisfy a Logger-accepting constructor.
func NoOp() hclog.Logger {
	return hclog.NewNullLogger()
}
