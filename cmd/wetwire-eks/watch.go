package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// newWatchCmd creates the "watch" subcommand for rebuilding on config changes.
func newWatchCmd() *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the template when the config changes",
		Long: `Watch monitors the component config and rebuilds the template on change.

The watch command:
- Watches the directory of the config file
- Validates the template on each change
- Writes the template if validation passes
- Debounces rapid changes to avoid excessive rebuilds

Examples:
    wetwire-eks watch -o template.json
    wetwire-eks watch -c eks.config.hcl -f yaml -o template.yaml
    wetwire-eks watch --debounce 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configFile, "config", "c", defaultConfigFile, "Component config file")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVarP(&opts.outputFormat, "format", "f", "json", "Output format for build: json or yaml")
	cmd.Flags().StringVarP(&opts.outputFile, "output", "o", "", "Output file for build (default: report only)")

	return cmd
}

type watchOptions struct {
	configFile   string
	debounce     time.Duration
	outputFormat string
	outputFile   string
}

// runWatch rebuilds on every debounced change of the config file until ctx is done.
func runWatch(ctx context.Context, w io.Writer, opts watchOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	target, err := filepath.Abs(opts.configFile)
	if err != nil {
		return err
	}
	// Editors replace files on save, so watch the directory rather than the file.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}
	fmt.Fprintf(w, "Watching: %s\n", target)

	rebuild(w, opts)

	var debounceTimer *time.Timer
	rebuildChan := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isConfigEvent(event, target) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(opts.debounce, func() {
				select {
				case rebuildChan <- struct{}{}:
				default:
				}
			})

		case <-rebuildChan:
			fmt.Fprintf(w, "\n[%s] Change detected, rebuilding...\n", time.Now().Format("15:04:05"))
			rebuild(w, opts)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("watch error")

		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			fmt.Fprintln(w, "Stopping watch...")
			return nil
		}
	}
}

// isConfigEvent reports whether event writes or recreates the watched config.
func isConfigEvent(event fsnotify.Event, target string) bool {
	if filepath.Clean(event.Name) != target {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// rebuild assembles, validates and writes the template. Failures are logged.
func rebuild(w io.Writer, opts watchOptions) bool {
	built, err := assembleFromFile(opts.configFile)
	if err != nil {
		log.Error().Err(err).Msg("build failed")
		return false
	}

	if err := validateBuilt(built.Template); err != nil {
		log.Error().Err(err).Msg("validation failed, skipping write")
		return false
	}

	data, err := renderTemplate(built.Template, opts.outputFormat)
	if err != nil {
		log.Error().Err(err).Msg("render failed")
		return false
	}

	if opts.outputFile != "" {
		if err := os.WriteFile(opts.outputFile, data, 0o644); err != nil {
			log.Error().Err(err).Msg("failed to write output")
			return false
		}
	}
	if opts.outputFile == "" {
		fmt.Fprintf(w, "Build successful: %d resources\n", len(built.Order))
	} else {
		fmt.Fprintf(w, "Build successful, wrote %s\n", opts.outputFile)
	}
	return true
}
