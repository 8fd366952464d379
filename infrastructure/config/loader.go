package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"video-to-mp3/domain/conversion"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Audio   AudioConfig   `yaml:"audio"`
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address        string        `yaml:"address"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
}

// AudioConfig contains audio extraction settings
type AudioConfig struct {
	Bitrate string `yaml:"bitrate"`
}

// FFmpegConfig contains external decoder settings
type FFmpegConfig struct {
	FFmpegPath  string        `yaml:"ffmpeg_path"`
	FFprobePath string        `yaml:"ffprobe_path"`
	Timeout     time.Duration `yaml:"timeout"`
}

// StorageConfig contains temporary storage settings
type StorageConfig struct {
	TempDirectory string `yaml:"temp_directory"`
}

// LoggingConfig contains log output settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	DefaultAddress        = ":8501"
	DefaultMaxUploadBytes = 1 << 30 // 1 GiB
	DefaultFFmpegTimeout  = 30 * time.Minute
)

// DefaultReadTimeout leaves the request body unbounded in time; uploads are bounded by size
const DefaultReadTimeout time.Duration = 0

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:        DefaultAddress,
			MaxUploadBytes: DefaultMaxUploadBytes,
			ReadTimeout:    DefaultReadTimeout,
		},
		Audio: AudioConfig{
			Bitrate: string(conversion.DefaultBitrate),
		},
		FFmpeg: FFmpegConfig{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
			Timeout:     DefaultFFmpegTimeout,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads and parses the configuration from the specified YAML file.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for values the application cannot run with
func (c *Config) Validate() error {
	if _, err := conversion.ParseBitrate(c.Audio.Bitrate); err != nil {
		return fmt.Errorf("audio.bitrate: %w", err)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("server.read_timeout must not be negative, got %s", c.Server.ReadTimeout)
	}
	if c.FFmpeg.Timeout < 0 {
		return fmt.Errorf("ffmpeg.timeout must not be negative, got %s", c.FFmpeg.Timeout)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// DefaultBitrate returns the configured default bitrate selection
func (c *Config) DefaultBitrate() conversion.Bitrate {
	b, err := conversion.ParseBitrate(c.Audio.Bitrate)
	if err != nil {
		return conversion.DefaultBitrate
	}
	return b
}
