package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rodzevich/tic-tac-toe/internal/config"
)

var writer io.Writer = os.Stdout

// Init configures the global zerolog logger. Must run before any component
// starts logging.
func Init(cfg config.LogConfig) error {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	writer = os.Stdout
	if cfg.File != "" {
		w, err := newCappedFileWriter(cfg.File, cfg.MaxMB)
		if err != nil {
			return err
		}
		writer = w
	}

	output := writer
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: writer}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
	return nil
}

// Writer returns the destination selected by Init, for collaborators that
// write log lines outside zerolog (request logging middleware).
func Writer() io.Writer {
	return writer
}
