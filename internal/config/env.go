package config

import (
	"os"
	"strconv"
	"time"
)

type envVar struct {
	name  string
	desc  string
	apply func(*Config, string)
}

var supportedEnvVars = []envVar{
	{
		// Documentation only.  Resolved before the config is loaded.
		name:  "CLIPREEL_CONFIG_PATH",
		desc:  "Sets the path to the config file.  Default: OS-specific config directory",
		apply: func(c *Config, s string) {},
	},
	{
		name:  "CLIPREEL_CONFIG_PLAYER_TYPE",
		desc:  "Sets the video player type.  Only `mpv` is supported.  Default: mpv",
		apply: func(c *Config, s string) { c.Player.Type = s },
	},
	{
		name:  "CLIPREEL_CONFIG_PLAYER_PATH",
		desc:  "Sets the path to the mpv binary.  Default: mpv",
		apply: func(c *Config, s string) { c.Player.Path = s },
	},
	{
		name:  "CLIPREEL_CONFIG_PLAYER_ARGS",
		desc:  "Extra arguments passed to mpv.  Default: None",
		apply: func(c *Config, s string) { c.Player.Args = s },
	},
	{
		name:  "CLIPREEL_CONFIG_PLAYER_URL_TEMPLATE",
		desc:  "Template turning a video ID into a URL.  Default: https://www.youtube.com/watch?v=%s",
		apply: func(c *Config, s string) { c.Player.URLTemplate = s },
	},
	{
		name: "CLIPREEL_CONFIG_PLAYBACK_AUTOPLAY",
		desc: "Start each clip automatically once it is cued.  Default: true",
		apply: func(c *Config, s string) {
			if v, err := strconv.ParseBool(s); err == nil {
				c.Playback.Autoplay = &v
			}
		},
	},
	{
		name:  "CLIPREEL_CONFIG_PLAYBACK_VOLUME",
		desc:  "Initial volume, 0-100.  Default: 80",
		apply: intSetter(func(c *Config, v int) { c.Playback.Volume = &v }),
	},
	{
		name:  "CLIPREEL_CONFIG_PLAYBACK_DUCK_VOLUME",
		desc:  "Volume the video is lowered to during audio interstitials.  Default: 20",
		apply: intSetter(func(c *Config, v int) { c.Playback.DuckVolume = &v }),
	},
	{
		name:  "CLIPREEL_CONFIG_PLAYBACK_POLL_INTERVAL",
		desc:  "How often the playback position is checked against the clip end.  Default: 250ms",
		apply: durationSetter(func(c *Config, d time.Duration) { c.Playback.PollInterval = d }),
	},
	{
		name:  "CLIPREEL_CONFIG_PLAYBACK_AUDIO_FALLBACK",
		desc:  "Fallback length of an audio interstitial whose duration is unknown.  Default: 5s",
		apply: durationSetter(func(c *Config, d time.Duration) { c.Playback.AudioFallback = d }),
	},
	{
		name:  "CLIPREEL_CONFIG_PLAYBACK_LOOP_DELAY",
		desc:  "Pause before a looping playlist restarts.  Default: 3s",
		apply: durationSetter(func(c *Config, d time.Duration) { c.Playback.LoopDelay = d }),
	},
	{
		name:  "CLIPREEL_CONFIG_LIBRARY_DIR",
		desc:  "Directory holding playlist files.  Default: OS-specific",
		apply: func(c *Config, s string) { c.Library.Dir = s },
	},
	{
		name:  "CLIPREEL_CONFIG_LOGGING_LEVEL",
		desc:  "Sets the logging level.  One of: trace, debug, info, warn, error.  Default: info",
		apply: func(c *Config, s string) { c.Logging.Level = s },
	},
	{
		name:  "CLIPREEL_CONFIG_LOGGING_FILE_PATH",
		desc:  "Sets the logging file path.  Default: OS-specific",
		apply: func(c *Config, s string) { c.Logging.FilePath = s },
	},
}

// EnvVar describes a supported environment override, for help output
type EnvVar struct {
	Name        string
	Description string
}

// SupportedEnvVars lists every environment override in the order they are applied
func SupportedEnvVars() []EnvVar {
	out := make([]EnvVar, 0, len(supportedEnvVars))
	for _, v := range supportedEnvVars {
		out = append(out, EnvVar{Name: v.name, Description: v.desc})
	}
	return out
}

// Unparseable values are ignored and the previous value is kept
func intSetter(set func(*Config, int)) func(*Config, string) {
	return func(c *Config, s string) {
		if v, err := strconv.Atoi(s); err == nil {
			set(c, v)
		}
	}
}

func durationSetter(set func(*Config, time.Duration)) func(*Config, string) {
	return func(c *Config, s string) {
		if d, err := time.ParseDuration(s); err == nil {
			set(c, d)
		}
	}
}

func applyEnvVarOverrides(c *Config) {
	for _, envVar := range supportedEnvVars {
		if value := os.Getenv(envVar.name); value != "" {
			envVar.apply(c, value)
		}
	}
}
