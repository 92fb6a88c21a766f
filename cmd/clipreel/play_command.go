package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/PizzaHomicide/clipreel/internal/config"
	"github.com/PizzaHomicide/clipreel/internal/domain"
	"github.com/PizzaHomicide/clipreel/internal/log"
	"github.com/PizzaHomicide/clipreel/internal/playback"
	"github.com/PizzaHomicide/clipreel/internal/player"
	"github.com/PizzaHomicide/clipreel/internal/ui/tui"
)

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var clip int

	cmd := &cobra.Command{
		Use:   "play <playlist>",
		Short: "Play a playlist from the library",
		Long: "Play a playlist from the library.  The name is matched exactly first, then fuzzily.\n" +
			"An out of range --clip starts from the first clip.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			playlist, err := ctx.resolvePlaylist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			return runPlayer(cmd.Context(), ctx.cfg, store, playlist, clip-1)
		},
	}

	cmd.Flags().IntVar(&clip, "clip", 1, "Clip number to start from")
	return cmd
}

// runPlayer starts the players and the playback loop, then blocks in the TUI until the user quits
func runPlayer(parent context.Context, cfg *config.Config, saver domain.PlaylistSaver, playlist *domain.Playlist, index int) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	log.Info("Opening playlist", "playlist", playlist.Name, "clips", playlist.Len(), "start_index", index,
		"interstitial", playlist.Interstitial.EffectiveKind())

	adapter, err := player.CreateAdapter(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := adapter.Close(); err != nil {
			log.Warn("Failed to close video player", "error", err)
		}
	}()

	deps := playback.Deps{
		Adapter: adapter,
		Route:   player.NewRouteOwnership(),
		Saver:   saver,
	}

	// Without an audio channel audio cues are skipped like a missing asset
	if playlist.Interstitial.EffectiveKind() == domain.InterstitialAudio {
		audio, err := player.CreateAudioChannel(ctx, cfg)
		if err != nil {
			log.Warn("Audio channel unavailable.  Audio interstitials will be skipped", "error", err)
		} else {
			deps.Audio = audio
			defer func() {
				if err := audio.Close(); err != nil {
					log.Warn("Failed to close audio player", "error", err)
				}
			}()
		}
	}

	runner := playback.NewRunner(playback.OptionsFromConfig(cfg.Playback), deps)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := runner.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if err := runner.Open(gctx, playlist, index); err != nil {
		cancel()
		_ = g.Wait()
		return fmt.Errorf("open playlist %q: %w", playlist.Name, err)
	}

	uiErr := tui.Run(playback.NewTransport(runner))
	if uiErr != nil {
		log.Error("Unhandled error while running TUI", "error", uiErr)
	}

	cancel()
	if err := g.Wait(); err != nil && uiErr == nil {
		return err
	}
	return uiErr
}
