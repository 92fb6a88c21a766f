package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Player   PlayerConfig   `yaml:"player,omitempty"`
	Playback PlaybackConfig `yaml:"playback,omitempty"`
	Library  LibraryConfig  `yaml:"library,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// PlayerConfig contains external media player settings
type PlayerConfig struct {
	Type string `yaml:"type,omitempty"` // "mpv"
	Path string `yaml:"path,omitempty"`
	Args string `yaml:"args,omitempty"`
	// URLTemplate turns a clip video ID into something mpv can open.  Must contain a single %s.
	URLTemplate string `yaml:"url_template,omitempty"`
}

// PlaybackConfig contains the timing knobs of the clip orchestrator
type PlaybackConfig struct {
	// Autoplay and the volumes are pointers so that an explicit false or 0 in the file survives the merge with defaults
	Autoplay       *bool         `yaml:"autoplay,omitempty"`
	Volume         *int          `yaml:"volume,omitempty"`
	DuckVolume     *int          `yaml:"duck_volume,omitempty"`
	PollInterval   time.Duration `yaml:"poll_interval,omitempty"`
	SettleDelay    time.Duration `yaml:"settle_delay,omitempty"`
	CueTimeout     time.Duration `yaml:"cue_timeout,omitempty"`
	AudioFallback  time.Duration `yaml:"audio_fallback,omitempty"`
	FallbackBuffer time.Duration `yaml:"fallback_buffer,omitempty"`
	LoopDelay      time.Duration `yaml:"loop_delay,omitempty"`
}

// LibraryConfig contains settings for where playlists are stored
type LibraryConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// LoggingConfig contains log related settings
type LoggingConfig struct {
	Level    string `yaml:"level,omitempty"`
	FilePath string `yaml:"file_path,omitempty"`
}

const (
	defaultVolume     = 80
	defaultDuckVolume = 20
)

// AutoplayEnabled reports the effective autoplay setting
func (p PlaybackConfig) AutoplayEnabled() bool {
	return p.Autoplay == nil || *p.Autoplay
}

// VolumeLevel reports the effective initial volume
func (p PlaybackConfig) VolumeLevel() int {
	if p.Volume == nil {
		return defaultVolume
	}
	return *p.Volume
}

// DuckLevel reports the effective volume the video is lowered to during audio interstitials
func (p PlaybackConfig) DuckLevel() int {
	if p.DuckVolume == nil {
		return defaultDuckVolume
	}
	return *p.DuckVolume
}

// Load builds a configuration struct from multiple sources using these steps:
// 1. Create a base config with default values
// 2. If no config file exists on disk, save the default config to that location
// 3. Apply 'dynamic' properties, which are determined at runtime (log and library locations differ per OS)
// 4. Load & merge the config file, overwriting any defaults with user-specified values
// 5. Apply environment variable overrides
func Load() (*Config, error) {
	cfg := createBaseDefaultConfig()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to determine config file path: %w", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		// A failed write of the defaults should not stop the application from starting
		_ = save(cfg, configPath)
	}

	applyDynamicDefaults(cfg)

	fileConfig, err := loadFromDisk(configPath)
	if err != nil {
		return nil, err
	}
	// Without dereferencing, a set pointer in the file replaces the default even when it points at a zero value
	if err = mergo.Merge(cfg, fileConfig, mergo.WithOverride, mergo.WithoutDereference); err != nil {
		return nil, fmt.Errorf("error merging config loaded from disk: %w", err)
	}

	applyEnvVarOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects values the orchestrator cannot work with
func (c *Config) Validate() error {
	if v := c.Playback.VolumeLevel(); v < 0 || v > 100 {
		return fmt.Errorf("playback.volume must be within 0-100, got %d", v)
	}
	if v := c.Playback.DuckLevel(); v < 0 || v > 100 {
		return fmt.Errorf("playback.duck_volume must be within 0-100, got %d", v)
	}
	if c.Playback.PollInterval <= 0 {
		return fmt.Errorf("playback.poll_interval must be positive")
	}
	return nil
}

// applyDynamicDefaults sets runtime-determined default values.  They are never written back to disk.
func applyDynamicDefaults(cfg *Config) {
	cfg.Logging.FilePath = defaultLogFilePath()
	cfg.Library.Dir = defaultLibraryDir()
}

// loadFromDisk loads the YAML config from disk and returns the unmarshalled Config
func loadFromDisk(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	return cfg, nil
}

func save(cfg *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// UpdateConfig reads the existing config, applies the update function, and saves it back to disk
func UpdateConfig(updateFn func(*Config)) error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("unable to determine config file path: %w", err)
	}

	cfg, err := loadFromDisk(configPath)
	if err != nil {
		return fmt.Errorf("error loading config file from disk: %w", err)
	}

	updateFn(cfg)

	return save(cfg, configPath)
}

// Path returns the location of the config file in use
func Path() (string, error) {
	return getConfigPath()
}

// getConfigPath returns the path to the config file.  Uses the environment variable override if present, else tries
// to use OS config location defaults.
func getConfigPath() (string, error) {
	configPath := os.Getenv("CLIPREEL_CONFIG_PATH")
	if configPath != "" {
		return configPath, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "clipreel", "config.yaml"), nil
}

// createBaseDefaultConfig creates a config with all static default values
func createBaseDefaultConfig() *Config {
	autoplay := true
	volume, duckVolume := defaultVolume, defaultDuckVolume
	return &Config{
		Player: PlayerConfig{
			Type:        "mpv",
			Path:        "mpv",
			URLTemplate: "https://www.youtube.com/watch?v=%s",
		},
		Playback: PlaybackConfig{
			Autoplay:       &autoplay,
			Volume:         &volume,
			DuckVolume:     &duckVolume,
			PollInterval:   250 * time.Millisecond,
			SettleDelay:    300 * time.Millisecond,
			CueTimeout:     15 * time.Second,
			AudioFallback:  5 * time.Second,
			FallbackBuffer: time.Second,
			LoopDelay:      3 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// defaultLogFilePath returns the path to the log file.  Tries to use expected OS location defaults.
func defaultLogFilePath() string {
	var basePath string
	homedir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "clipreel.log")
	}

	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			basePath = filepath.Join(appData, "clipreel", "logs")
		} else {
			basePath = filepath.Join(homedir, "AppData", "local", "clipreel", "logs")
		}
	case "darwin":
		basePath = filepath.Join(homedir, "Library", "Logs", "clipreel")
	default:
		if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
			basePath = filepath.Join(xdgState, "clipreel", "logs")
		} else {
			basePath = filepath.Join(homedir, ".local", "state", "clipreel", "logs")
		}
	}

	if err := os.MkdirAll(basePath, 0700); err != nil {
		return filepath.Join(".", "clipreel.log")
	}
	return filepath.Join(basePath, "clipreel.log")
}

// defaultLibraryDir returns where playlists live when the user has not chosen a directory
func defaultLibraryDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" && runtime.GOOS != "windows" && runtime.GOOS != "darwin" {
		return filepath.Join(xdgData, "clipreel", "playlists")
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "playlists")
	}
	return filepath.Join(configDir, "clipreel", "playlists")
}
