package cliconfig

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/bft-labs/wxnotify/pkg/log"
)

// Logger returns a console logger on stderr at the configured level.
func (c Config) Logger() (zerolog.Logger, error) {
	return log.NewConsoleLogger(os.Stderr, c.LogLevel)
}
