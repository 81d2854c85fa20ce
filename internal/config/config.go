// Package config resolves the Runtime Config (target, project root, log
// level) shared by the CLI and the core components.
package config

import (
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
)

// RuntimeConfig holds the target task id, the resolved absolute project
// root, and the logger built from the requested log level.
type RuntimeConfig struct {
	Target   string
	Root     string
	LogLevel string
	Logger   hclog.Logger
}

// DefaultLogLevel matches the CLI surface's documented default.
const DefaultLogLevel = "warn"

// New resolves root to an absolute path and constructs the shared logger.
// An empty logLevel falls back to DefaultLogLevel.
func New(target, root, logLevel string) (*RuntimeConfig, error) {
	if logLevel == "" {
		logLevel = DefaultLogLevel
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "tessy",
		Level:      parseLevel(logLevel),
		Output:     os.Stderr,
		JSONFormat: false,
	})

	return &RuntimeConfig{
		Target:   target,
		Root:     absRoot,
		LogLevel: logLevel,
		Logger:   logger,
	}, nil
}

// parseLevel maps the CLI's documented level names onto hclog levels.
// "silent" suppresses all output; hclog has no silent level of its own, so
// it maps to hclog.Off.
func parseLevel(name string) hclog.Level {
	switch name {
	case "debug":
		return hclog.Debug
	case "info":
		return hclog.Info
	case "warn":
		return hclog.Warn
	case "error":
		return hclog.Error
	case "silent":
		return hclog.Off
	default:
		return hclog.Warn
	}
}
