package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"video-to-mp3/domain/conversion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `server:
  address: "127.0.0.1:9000"
  max_upload_bytes: 1048576
audio:
  bitrate: "320k"
ffmpeg:
  ffmpeg_path: "/usr/local/bin/ffmpeg"
  timeout: 5m
storage:
  temp_directory: "/var/tmp/v2m"
logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
	assert.Equal(t, int64(1048576), cfg.Server.MaxUploadBytes)
	assert.Equal(t, DefaultReadTimeout, cfg.Server.ReadTimeout, "missing keys keep defaults")
	assert.Equal(t, "320k", cfg.Audio.Bitrate)
	assert.Equal(t, "/usr/local/bin/ffmpeg", cfg.FFmpeg.FFmpegPath)
	assert.Equal(t, "ffprobe", cfg.FFmpeg.FFprobePath)
	assert.Equal(t, 5*time.Minute, cfg.FFmpeg.Timeout)
	assert.Equal(t, "/var/tmp/v2m", cfg.Storage.TempDirectory)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, conversion.Bitrate320, cfg.DefaultBitrate())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		errContains string
	}{
		{"invalid yaml", "server: [", "failed to parse config file"},
		{"bad bitrate", "audio:\n  bitrate: \"64k\"\n", "audio.bitrate"},
		{"zero upload limit", "server:\n  max_upload_bytes: 0\n", "max_upload_bytes must be positive"},
		{"negative timeout", "ffmpeg:\n  timeout: -1s\n", "ffmpeg.timeout"},
		{"negative read timeout", "server:\n  read_timeout: -1s\n", "server.read_timeout"},
		{"bad log format", "logging:\n  format: xml\n", "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = LoadOrDefault(writeConfig(t, "server: ["))
	assert.Error(t, err, "a broken file is still an error")
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Audio.Bitrate = "128k"
	cfg.Storage.TempDirectory = "/tmp/work"

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8501", cfg.Server.Address)
	assert.Equal(t, conversion.DefaultBitrate, cfg.DefaultBitrate())
	assert.Zero(t, cfg.Server.ReadTimeout, "large uploads must not be cut off by a whole-request deadline")
}
