package player

import (
	"context"
	"fmt"

	"github.com/PizzaHomicide/clipreel/internal/config"
	"github.com/PizzaHomicide/clipreel/internal/log"
)

// PlayerType defines the type of media player to use
type PlayerType string

const (
	// PlayerTypeMPV represents the MPV player
	PlayerTypeMPV PlayerType = "mpv"
	// PlayerTypeCustom represents a custom player executable
	PlayerTypeCustom PlayerType = "custom"
)

func mpvOptions(cfg *config.Config) MPVOptions {
	return MPVOptions{Path: cfg.Player.Path, Args: cfg.Player.Args}
}

// CreateAdapter creates and starts the video adapter described by the configuration
func CreateAdapter(ctx context.Context, cfg *config.Config) (Adapter, error) {
	playerType := PlayerType(cfg.Player.Type)
	log.Info("Creating video adapter", "type", playerType)

	switch playerType {
	case PlayerTypeMPV, "":
	case PlayerTypeCustom:
		return nil, fmt.Errorf("custom player not yet implemented")
	default:
		log.Warn("Unknown player type, falling back to MPV", "type", playerType)
	}

	adapter := NewMPVAdapter(mpvOptions(cfg), cfg.Player.URLTemplate)
	if err := adapter.Start(ctx); err != nil {
		return nil, fmt.Errorf("start video player: %w", err)
	}
	return adapter, nil
}

// CreateAudioChannel creates and starts the audio channel used for interstitial cues
func CreateAudioChannel(ctx context.Context, cfg *config.Config) (AudioChannel, error) {
	audio := NewMPVAudio(mpvOptions(cfg))
	if err := audio.Start(ctx); err != nil {
		return nil, fmt.Errorf("start audio player: %w", err)
	}
	return audio, nil
}
