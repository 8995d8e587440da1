// Package logger contains the construction of the process logger.
package logger

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/judocare/hevcrec/internal/conf"
)

// New allocates a logger that writes to the configured output.
func New(cfg conf.Log) (zerolog.Logger, error) {
	var w io.Writer = os.Stderr
	if cfg.Output == "stdout" {
		w = os.Stdout
	}
	return NewWithWriter(cfg, w)
}

// NewWithWriter allocates a logger that writes to w.
func NewWithWriter(cfg conf.Log, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Logger{}, err
	}

	if cfg.Format != "json" {
		console := &zerolog.ConsoleWriter{Out: w}

		switch cfg.Format {
		case "text":
			console.NoColor = true
		case "color":
			console.NoColor = false
		default:
			// enable colors only on terminals
			f, ok := w.(*os.File)
			console.NoColor = !ok || !isatty.IsTerminal(f.Fd())
		}

		if cfg.Time != "" {
			console.TimeFormat = "15:04:05.000"
		} else {
			console.PartsOrder = []string{
				zerolog.LevelFieldName,
				zerolog.CallerFieldName,
				zerolog.MessageFieldName,
			}
		}

		w = console
	}

	l := zerolog.New(w).Level(lvl)

	if cfg.Time != "" {
		zerolog.TimeFieldFormat = cfg.Time
		l = l.With().Timestamp().Logger()
	}

	return l, nil
}
