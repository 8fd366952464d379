//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"video-to-mp3/cmd"
	"video-to-mp3/infrastructure/config"

	"github.com/cucumber/godog"
)

type setupContext struct {
	tempDir         string
	configPath      string
	setupCancelled  bool
	originalContent string
	output          *bytes.Buffer
	err             error
}

var SharedSetupContext = &setupContext{}

// MockPrompter implements cmd.Prompter for testing
type MockPrompter struct {
	inputResponses   []string
	confirmResponses []bool
	selectResponses  []string
	inputIndex       int
	confirmIndex     int
	selectIndex      int
}

func NewMockPrompter(inputs []string, confirms []bool, selects []string) *MockPrompter {
	return &MockPrompter{
		inputResponses:   inputs,
		confirmResponses: confirms,
		selectResponses:  selects,
	}
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if m.inputIndex >= len(m.inputResponses) {
		return defaultValue, nil
	}
	response := m.inputResponses[m.inputIndex]
	m.inputIndex++
	return response, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if m.confirmIndex >= len(m.confirmResponses) {
		return defaultValue, nil
	}
	response := m.confirmResponses[m.confirmIndex]
	m.confirmIndex++
	return response, nil
}

func (m *MockPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	if m.selectIndex >= len(m.selectResponses) {
		return defaultValue, nil
	}
	response := m.selectResponses[m.selectIndex]
	m.selectIndex++
	for _, o := range options {
		if o == response {
			return response, nil
		}
	}
	return "", fmt.Errorf("%q is not one of %v", response, options)
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedSetupContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config", "config.yaml")
		testCtx.setupCancelled = false
		testCtx.originalContent = ""
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^no config file exists for setup$`, testCtx.noConfigFileExistsForSetup)
	ctx.Step(`^a config file already exists for setup$`, testCtx.aConfigFileAlreadyExistsForSetup)
	ctx.Step(`^I run the setup command with inputs:$`, testCtx.iRunTheSetupCommandWithInputs)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)"$`, testCtx.iRunTheSetupCommandWithConfirmation)
	ctx.Step(`^a config file should exist$`, testCtx.aConfigFileShouldExist)
	ctx.Step(`^the config should have address "([^"]*)"$`, testCtx.theConfigShouldHaveAddress)
	ctx.Step(`^the config should have a maximum upload of (\d+) MB$`, testCtx.theConfigShouldHaveAMaximumUploadOfMB)
	ctx.Step(`^the config should have bitrate "([^"]*)"$`, testCtx.theConfigShouldHaveBitrate)
	ctx.Step(`^the config should have temp directory "([^"]*)"$`, testCtx.theConfigShouldHaveTempDirectory)
	ctx.Step(`^the setup should be cancelled$`, testCtx.theSetupShouldBeCancelled)
	ctx.Step(`^the existing config should be unchanged$`, testCtx.theExistingConfigShouldBeUnchanged)
}

func (s *setupContext) noConfigFileExistsForSetup() error {
	return os.MkdirAll(filepath.Dir(s.configPath), 0755)
}

func (s *setupContext) aConfigFileAlreadyExistsForSetup() error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}

	content := `server:
  address: ":9999"
audio:
  bitrate: "128k"
ffmpeg:
  ffmpeg_path: "/opt/ffmpeg/bin/ffmpeg"
`
	s.originalContent = content
	return os.WriteFile(s.configPath, []byte(content), 0644)
}

func (s *setupContext) iRunTheSetupCommandWithInputs(table *godog.Table) error {
	inputs, confirms, selects := parseInputTable(table)
	prompter := NewMockPrompter(inputs, confirms, selects)

	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath, s.output)
	if s.err != nil {
		return fmt.Errorf("setup command failed: %w", s.err)
	}
	return nil
}

func (s *setupContext) iRunTheSetupCommandWithConfirmation(confirmation string) error {
	confirm := strings.ToLower(confirmation) == "y"
	prompter := NewMockPrompter(nil, []bool{confirm}, nil)

	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath, s.output)
	if !confirm {
		s.setupCancelled = strings.Contains(s.output.String(), "Setup cancelled.")
	}
	return nil
}

// parseInputTable sorts answers by prompt kind; "Use ..." rows are confirms, "Bitrate" is a select
func parseInputTable(table *godog.Table) ([]string, []bool, []string) {
	var inputs []string
	var confirms []bool
	var selects []string

	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		prompt := strings.ToLower(row.Cells[0].Value)
		value := row.Cells[1].Value

		switch {
		case strings.HasPrefix(prompt, "use"):
			confirms = append(confirms, strings.ToLower(value) == "y")
		case prompt == "bitrate":
			selects = append(selects, value)
		default:
			inputs = append(inputs, value)
		}
	}

	return inputs, confirms, selects
}

func (s *setupContext) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func (s *setupContext) aConfigFileShouldExist() error {
	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist at %s", s.configPath)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveAddress(expected string) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Server.Address != expected {
		return fmt.Errorf("expected address %q, got %q", expected, cfg.Server.Address)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveAMaximumUploadOfMB(mb string) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}
	n, err := strconv.ParseInt(mb, 10, 64)
	if err != nil {
		return err
	}
	if cfg.Server.MaxUploadBytes != n<<20 {
		return fmt.Errorf("expected max upload %d bytes, got %d", n<<20, cfg.Server.MaxUploadBytes)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveBitrate(expected string) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Audio.Bitrate != expected {
		return fmt.Errorf("expected bitrate %q, got %q", expected, cfg.Audio.Bitrate)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveTempDirectory(expected string) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Storage.TempDirectory != expected {
		return fmt.Errorf("expected temp directory %q, got %q", expected, cfg.Storage.TempDirectory)
	}
	return nil
}

func (s *setupContext) theSetupShouldBeCancelled() error {
	if !s.setupCancelled {
		return fmt.Errorf("expected setup to be cancelled")
	}
	return nil
}

func (s *setupContext) theExistingConfigShouldBeUnchanged() error {
	content, err := os.ReadFile(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if string(content) != s.originalContent {
		return fmt.Errorf("config content was changed")
	}
	return nil
}
