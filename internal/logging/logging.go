package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Rrens/routine-advisor/internal/config"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger
func Setup(cfg config.LoggingConfig) error {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return fmt.Errorf("invalid log level '%s': %w", cfg.Level, err)
		}
		level = parsed
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	out, err := Writer(cfg, os.Stderr)
	if err != nil {
		return err
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	return nil
}

// Writer builds the log sink: console or JSON on stderr, plus an optional
// rotating file which always receives JSON.
func Writer(cfg config.LoggingConfig, stderr io.Writer) (io.Writer, error) {
	var out io.Writer = stderr
	if strings.ToLower(cfg.Format) == "console" {
		out = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}
	}

	if cfg.File == "" {
		return out, nil
	}

	rotation := cfg.RotationTime
	if rotation <= 0 {
		rotation = 24 * time.Hour
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}

	file, err := rotatelogs.New(
		cfg.File+".%Y%m%d",
		rotatelogs.WithLinkName(cfg.File),
		rotatelogs.WithRotationTime(rotation),
		rotatelogs.WithMaxAge(maxAge),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file '%s': %w", cfg.File, err)
	}

	return zerolog.MultiLevelWriter(out, file), nil
}
