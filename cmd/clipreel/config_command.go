package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PizzaHomicide/clipreel/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigPathCommand())
	configCmd.AddCommand(newConfigEnvCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the location of the config file",
		Annotations: map[string]string{skipConfigLoad: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path()
			if err != nil {
				return fmt.Errorf("determine config path: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newConfigEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "env",
		Short:       "List the environment variables that override the config file",
		Annotations: map[string]string{skipConfigLoad: "true"},
		Args:        cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			vars := config.SupportedEnvVars()
			rows := make([][]string, 0, len(vars))
			for _, v := range vars {
				rows = append(rows, []string{v.Name, v.Description})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Variable", "Description"}, rows, nil))
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			p := cfg.Playback
			rows := [][]string{
				{"player.type", cfg.Player.Type},
				{"player.path", cfg.Player.Path},
				{"player.args", cfg.Player.Args},
				{"player.url_template", cfg.Player.URLTemplate},
				{"playback.autoplay", yesNo(p.AutoplayEnabled())},
				{"playback.volume", fmt.Sprint(p.VolumeLevel())},
				{"playback.duck_volume", fmt.Sprint(p.DuckLevel())},
				{"playback.poll_interval", p.PollInterval.String()},
				{"playback.settle_delay", p.SettleDelay.String()},
				{"playback.cue_timeout", p.CueTimeout.String()},
				{"playback.audio_fallback", p.AudioFallback.String()},
				{"playback.fallback_buffer", p.FallbackBuffer.String()},
				{"playback.loop_delay", p.LoopDelay.String()},
				{"library.dir", cfg.Library.Dir},
				{"logging.level", cfg.Logging.Level},
				{"logging.file_path", cfg.Logging.FilePath},
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Setting", "Value"}, rows, nil))
			return nil
		},
	}
}
