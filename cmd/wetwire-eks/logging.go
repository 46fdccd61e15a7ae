package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// configureLogging sets up the global logger. Logs always go to w so that
// stdout carries only command output.
func configureLogging(verbose bool, format string, w io.Writer) error {
	switch format {
	case "console":
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
	case "json":
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	default:
		return fmt.Errorf("unknown log format: %s (use 'console' or 'json')", format)
	}

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
	return nil
}
