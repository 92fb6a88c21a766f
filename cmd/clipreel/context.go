package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/PizzaHomicide/clipreel/internal/config"
	"github.com/PizzaHomicide/clipreel/internal/domain"
	"github.com/PizzaHomicide/clipreel/internal/library"
	"github.com/PizzaHomicide/clipreel/internal/log"
	"github.com/PizzaHomicide/clipreel/internal/version"
)

// commandContext lazily loads the shared state subcommands need
type commandContext struct {
	cfg    *config.Config
	logger *log.Logger
	store  *library.Store
}

// ensureConfig loads the configuration and installs the file logger.  Safe to call more than once.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.New(log.Config{
		Level:    cfg.Logging.Level,
		FilePath: cfg.Logging.FilePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialise logger: %w", err)
	}

	// Set the default global logger
	log.SetDefaultLogger(logger)
	log.Info("Starting up clipreel", "version", version.GetVersion(), "build_time", version.GetBuildTime())

	c.cfg = cfg
	c.logger = logger
	return cfg, nil
}

func (c *commandContext) ensureStore() (*library.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := library.NewStore(cfg.Library.Dir)
	if err != nil {
		return nil, err
	}
	c.store = store
	return store, nil
}

// resolvePlaylist loads the playlist named exactly, else the closest fuzzy match
func (c *commandContext) resolvePlaylist(ctx context.Context, name string) (*domain.Playlist, error) {
	store, err := c.ensureStore()
	if err != nil {
		return nil, err
	}

	playlist, err := store.Load(ctx, name)
	if err == nil {
		return playlist, nil
	}
	if !errors.Is(err, library.ErrPlaylistNotFound) {
		return nil, err
	}

	matches, err := store.Find(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: nothing in %s matches %q", library.ErrPlaylistNotFound, store.Dir(), name)
	}
	log.Debug("Resolved playlist by fuzzy match", "query", name, "playlist", matches[0].Name, "candidates", len(matches))
	return matches[0], nil
}

func (c *commandContext) close() {
	if c.logger == nil {
		return
	}
	log.Info("clipreel shutting down.  Goodbye!")
	c.logger.Close()
	c.logger = nil
}
