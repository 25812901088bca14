// Package logging wires the process-wide slog default used across the
// build core.
package logging

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

const (
	JSON = "json"
	Text = "text"
	Tint = "tint"

	// Default is what callers get when they have no opinion.
	Default = Tint
)

// Initialize installs the default slog logger. loggingType selects the
// handler; logLevelName is parsed as a slog level.
func Initialize(loggingType string, logLevelName string) error {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(logLevelName)); err != nil {
		return fmt.Errorf("could not parse log level: %v", err)
	}

	handler, err := newHandler(loggingType, logLevel)
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(handler))
	slog.Debug("logging initialized", "logLevel", logLevel)
	return nil
}

func newHandler(loggingType string, level slog.Level) (slog.Handler, error) {
	opts := slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	}

	switch loggingType {
	case JSON:
		return slog.NewJSONHandler(os.Stdout, &opts), nil
	case Text:
		return slog.NewTextHandler(os.Stdout, &opts), nil
	case Tint:
		return tint.NewHandler(os.Stdout, &tint.Options{
			AddSource: opts.AddSource,
			Level:     opts.Level,
		}), nil
	default:
		return nil, fmt.Errorf("unknown logging type: %s", loggingType)
	}
}
