package cmd

import (
	"fmt"
	"os"

	"video-to-mp3/infrastructure/config"
	"video-to-mp3/infrastructure/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// DefaultConfigPath is used when --config is not given
const DefaultConfigPath = "config/config.yaml"

var (
	cfgFile   string
	cfg       *config.Config
	cfgErr    error
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "video-to-mp3",
	Short: "Extract the audio track of a video as MP3",
	Long: `video-to-mp3 extracts the audio track of an uploaded video and offers it
as an MP3 download at a chosen bitrate.

  - Serve a single page web UI for upload and download
  - Convert a local file from the command line
  - Create a configuration file interactively

Supported inputs: mov, mp4, m4v, avi, mkv. Bitrates: 320k, 192k (default), 128k.

Example:
  video-to-mp3 serve --address :8501
  video-to-mp3 convert --source "My Clip.mp4" --bitrate 320k`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format override (text, json)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = DefaultConfigPath
	}

	// A missing config file is fine: built-in defaults apply
	cfg, cfgErr = config.LoadOrDefault(cfgFile)
}

// GetConfig returns the loaded configuration
func GetConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	if cfg == nil {
		return config.Default(), nil
	}
	return cfg, nil
}

// newLogger builds the process logger from config plus flag overrides
func newLogger(c *config.Config) (*logrus.Logger, error) {
	logCfg := c.Logging
	if logLevel != "" {
		logCfg.Level = logLevel
	}
	if logFormat != "" {
		logCfg.Format = logFormat
	}
	return logging.New(logCfg, os.Stderr)
}
