package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"video-to-mp3/domain/conversion"
	"video-to-mp3/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through the listen address, upload size limit,
default bitrate, ffmpeg location and temporary directory.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = DefaultConfigPath
	}
	return RunSetupWithPrompter(DefaultPrompter, path, cmd.OutOrStdout())
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, output OutputWriter) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(output, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(output, "Welcome to video-to-mp3 setup!")
	fmt.Fprintln(output)

	cfg := config.Default()

	if err := promptServer(prompter, cfg); err != nil {
		return err
	}

	if err := promptAudio(prompter, cfg); err != nil {
		return err
	}

	if err := promptFFmpeg(prompter, cfg); err != nil {
		return err
	}

	if err := promptStorage(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Save configuration
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(output)
	fmt.Fprintf(output, "Configuration saved to %s\n", configPath)
	return nil
}

func promptServer(prompter Prompter, cfg *config.Config) error {
	address, err := prompter.Input("Address to listen on?", cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if address != "" {
		cfg.Server.Address = address
	}

	defaultMB := strconv.FormatInt(cfg.Server.MaxUploadBytes>>20, 10)
	maxMB, err := prompter.Input("Maximum upload size in MB?", defaultMB)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if maxMB == "" {
		maxMB = defaultMB
	}
	mb, err := strconv.ParseInt(maxMB, 10, 64)
	if err != nil || mb <= 0 {
		return fmt.Errorf("upload size must be a positive number of MB, got %q", maxMB)
	}
	cfg.Server.MaxUploadBytes = mb << 20

	return nil
}

func promptAudio(prompter Prompter, cfg *config.Config) error {
	options := make([]string, 0, len(conversion.Bitrates()))
	for _, b := range conversion.Bitrates() {
		options = append(options, b.String())
	}

	bitrate, err := prompter.Select("Default MP3 bitrate?", options, string(conversion.DefaultBitrate))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if bitrate == "" {
		bitrate = string(conversion.DefaultBitrate)
	}
	cfg.Audio.Bitrate = bitrate
	return nil
}

func promptFFmpeg(prompter Prompter, cfg *config.Config) error {
	ffmpegPath, err := prompter.Input("Path to the ffmpeg executable?", cfg.FFmpeg.FFmpegPath)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if ffmpegPath != "" {
		cfg.FFmpeg.FFmpegPath = ffmpegPath
	}

	ffprobePath, err := prompter.Input("Path to the ffprobe executable?", cfg.FFmpeg.FFprobePath)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if ffprobePath != "" {
		cfg.FFmpeg.FFprobePath = ffprobePath
	}

	return nil
}

func promptStorage(prompter Prompter, cfg *config.Config) error {
	custom, err := prompter.Confirm("Use a custom temporary directory?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if !custom {
		return nil
	}

	dir, err := prompter.Input("Temporary directory for uploads?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if dir == "" {
		return fmt.Errorf("temporary directory is required")
	}
	cfg.Storage.TempDirectory = dir
	return nil
}
