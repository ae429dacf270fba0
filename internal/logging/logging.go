// Package logging points the standard logger at a rotating file when one
// is configured.
package logging

import (
	"io"
	"log"
	"os"

	"github.com/crossfader-relay/crossfader/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup configures the standard logger from cfg and returns a closer for the
// log file (a no-op closer when logging to stderr).
func Setup(cfg config.LogConfig) io.Closer {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	w := Writer(cfg)
	log.SetOutput(w)
	if lj, ok := w.(*lumberjack.Logger); ok {
		return lj
	}
	return nopCloser{}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Writer returns the destination for log output described by cfg.
func Writer(cfg config.LogConfig) io.Writer {
	if cfg.File == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}
}
