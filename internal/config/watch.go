package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiwars-hackathon/hackdash/internal/watcher"
)

// Watch reloads the config at path whenever it changes and passes the new
// config to onChange. Invalid edits are logged and ignored. The returned
// function stops watching.
func Watch(path string, log zerolog.Logger, onChange func(*Config)) (func(), error) {
	if path == "" {
		path = DefaultPath()
	}
	w, err := watcher.WatchFile(path, func() {
		cfg, err := Load(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("ignoring invalid config change")
			return
		}
		log.Info().Str("path", path).Msg("config reloaded")
		if onChange != nil {
			onChange(cfg)
		}
	},
		watcher.WithDebounceDuration(500*time.Millisecond),
		watcher.WithErrorHandler(func(err error) {
			log.Warn().Err(err).Msg("config watcher error")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}
	return func() { w.Close() }, nil
}
