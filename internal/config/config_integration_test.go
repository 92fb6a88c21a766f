package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestConfig(t *testing.T) string {
	t.Helper()

	tmpConfigPath := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("CLIPREEL_CONFIG_PATH", tmpConfigPath)

	t.Cleanup(func() {
		cleanupEnvVars(t)
	})

	return tmpConfigPath
}

// TestConfigIntegration exercises the config package against real files in a temporary directory
func TestConfigIntegration(t *testing.T) {
	t.Run("LoadDefaultConfig", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		config := loadConfig(t)

		assert.Equal(t, "mpv", config.Player.Type)
		assert.True(t, config.Playback.AutoplayEnabled())
		assert.Equal(t, 80, config.Playback.VolumeLevel())
		assert.Equal(t, 5*time.Second, config.Playback.AudioFallback)
		assert.Equal(t, time.Second, config.Playback.FallbackBuffer)
		assert.Equal(t, "info", config.Logging.Level)
		assert.NotEmpty(t, config.Logging.FilePath)
		assert.NotEmpty(t, config.Library.Dir)

		_, err := os.Stat(tmpConfigPath)
		require.NoError(t, err, "config file should have been created")

		// Dynamic defaults must not be persisted with the default file
		savedConfig, err := loadFromDisk(tmpConfigPath)
		require.NoError(t, err)
		assert.Empty(t, savedConfig.Logging.FilePath)
		assert.Empty(t, savedConfig.Library.Dir)
	})

	t.Run("SaveAndLoadConfig", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		autoplay := false
		volume, duckVolume := 55, 10
		customConfig := &Config{
			Player: PlayerConfig{
				Type:        "mpv",
				Path:        "/usr/local/bin/mpv",
				Args:        "--fullscreen",
				URLTemplate: "https://example.test/%s",
			},
			Playback: PlaybackConfig{
				Autoplay:      &autoplay,
				Volume:        &volume,
				DuckVolume:    &duckVolume,
				PollInterval:  100 * time.Millisecond,
				AudioFallback: 7 * time.Second,
			},
			Library: LibraryConfig{Dir: "/srv/playlists"},
			Logging: LoggingConfig{
				Level:    "error",
				FilePath: "/var/log/clipreel.log",
			},
		}

		saveConfig(t, customConfig, tmpConfigPath)
		loadedConfig := loadConfig(t)

		assert.Equal(t, "/usr/local/bin/mpv", loadedConfig.Player.Path)
		assert.Equal(t, "--fullscreen", loadedConfig.Player.Args)
		assert.Equal(t, "https://example.test/%s", loadedConfig.Player.URLTemplate)
		assert.False(t, loadedConfig.Playback.AutoplayEnabled())
		assert.Equal(t, 55, loadedConfig.Playback.VolumeLevel())
		assert.Equal(t, 10, loadedConfig.Playback.DuckLevel())
		assert.Equal(t, 100*time.Millisecond, loadedConfig.Playback.PollInterval)
		assert.Equal(t, 7*time.Second, loadedConfig.Playback.AudioFallback)
		// Unset values keep their defaults
		assert.Equal(t, 3*time.Second, loadedConfig.Playback.LoopDelay)
		assert.Equal(t, "/srv/playlists", loadedConfig.Library.Dir)
		assert.Equal(t, "error", loadedConfig.Logging.Level)
		assert.Equal(t, "/var/log/clipreel.log", loadedConfig.Logging.FilePath)
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		require.NoError(t, os.WriteFile(tmpConfigPath, []byte("invalid: yaml: ["), 0600))

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("OutOfRangeVolume", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		require.NoError(t, os.WriteFile(tmpConfigPath, []byte("playback:\n  volume: 140\n"), 0600))

		_, err := Load()
		assert.ErrorContains(t, err, "playback.volume")
	})

	t.Run("ExplicitZeroVolumes", func(t *testing.T) {
		tmpConfigPath := setupTestConfig(t)
		require.NoError(t, os.WriteFile(tmpConfigPath, []byte("playback:\n  volume: 0\n  duck_volume: 0\n"), 0600))

		config := loadConfig(t)
		assert.Equal(t, 0, config.Playback.VolumeLevel())
		assert.Equal(t, 0, config.Playback.DuckLevel())
	})

	t.Run("EnvironmentVariableOverrides", func(t *testing.T) {
		setupTestConfig(t)

		t.Setenv("CLIPREEL_CONFIG_PLAYER_PATH", "/mpv")
		t.Setenv("CLIPREEL_CONFIG_PLAYER_ARGS", "--fullscreen")
		t.Setenv("CLIPREEL_CONFIG_PLAYBACK_AUTOPLAY", "false")
		t.Setenv("CLIPREEL_CONFIG_PLAYBACK_VOLUME", "30")
		t.Setenv("CLIPREEL_CONFIG_PLAYBACK_POLL_INTERVAL", "50ms")
		t.Setenv("CLIPREEL_CONFIG_PLAYBACK_AUDIO_FALLBACK", "not-a-duration")
		t.Setenv("CLIPREEL_CONFIG_LIBRARY_DIR", "/lib")
		t.Setenv("CLIPREEL_CONFIG_LOGGING_LEVEL", "warn")
		t.Setenv("CLIPREEL_CONFIG_LOGGING_FILE_PATH", "/clipreel.log")

		config := loadConfig(t)

		assert.Equal(t, "/mpv", config.Player.Path)
		assert.Equal(t, "--fullscreen", config.Player.Args)
		assert.False(t, config.Playback.AutoplayEnabled())
		assert.Equal(t, 30, config.Playback.VolumeLevel())
		assert.Equal(t, 50*time.Millisecond, config.Playback.PollInterval)
		assert.Equal(t, 5*time.Second, config.Playback.AudioFallback, "unparseable override is ignored")
		assert.Equal(t, "/lib", config.Library.Dir)
		assert.Equal(t, "warn", config.Logging.Level)
		assert.Equal(t, "/clipreel.log", config.Logging.FilePath)

		// Overrides are never persisted to disk
		unsetEnv(t, "CLIPREEL_CONFIG_LOGGING_LEVEL")
		config = loadConfig(t)
		assert.Equal(t, "info", config.Logging.Level)
	})

	t.Run("ModifyConfig", func(t *testing.T) {
		setupTestConfig(t)
		config := loadConfig(t)
		assert.Equal(t, 80, config.Playback.VolumeLevel())

		err := UpdateConfig(func(config *Config) {
			volume := 65
			config.Playback.Volume = &volume
		})
		require.NoError(t, err)

		config = loadConfig(t)
		assert.Equal(t, 65, config.Playback.VolumeLevel())
	})
}

func TestSupportedEnvVarsAreDocumented(t *testing.T) {
	for _, v := range SupportedEnvVars() {
		assert.True(t, strings.HasPrefix(v.Name, "CLIPREEL_CONFIG"), v.Name)
		assert.NotEmpty(t, v.Description, v.Name)
	}
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("Failed to unset environment variable: %v", err)
	}
}

func saveConfig(t *testing.T, config *Config, configPath string) {
	t.Helper()
	if err := save(config, configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
}

func loadConfig(t *testing.T) *Config {
	t.Helper()
	config, err := Load()
	if err != nil {
		t.Fatalf("Loading of config failed: %v", err)
	}
	return config
}

// Removes any env vars with the CLIPREEL_CONFIG prefix to ensure test isolation
func cleanupEnvVars(t *testing.T) {
	t.Helper()

	for _, envVar := range os.Environ() {
		if key := strings.Split(envVar, "=")[0]; strings.HasPrefix(key, "CLIPREEL_CONFIG") {
			_ = os.Unsetenv(key)
		}
	}
}
