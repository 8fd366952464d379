//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"video-to-mp3/cmd"
	"video-to-mp3/infrastructure/filesystem"

	"github.com/cucumber/godog"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

// convertContext holds test state for convert scenarios
type convertContext struct {
	workDir   string
	sourceDir string
	outputDir string
	store     *filesystem.TempStore
	engine    *fakeMediaEngine
	output    *bytes.Buffer
	err       error
}

// SharedConvertContext is reset before each scenario via Before hook
var SharedConvertContext *convertContext

func getConvertContext() *convertContext {
	return SharedConvertContext
}

func InitializeConvertScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		workDir, err := os.MkdirTemp("", "convert-test-*")
		if err != nil {
			return c, err
		}
		store, err := filesystem.NewTempStore(filepath.Join(workDir, "tmp"))
		if err != nil {
			return c, err
		}
		SharedConvertContext = &convertContext{
			workDir:   workDir,
			sourceDir: filepath.Join(workDir, "videos"),
			outputDir: filepath.Join(workDir, "mp3"),
			store:     store,
			engine:    &fakeMediaEngine{},
			output:    &bytes.Buffer{},
		}
		return c, os.MkdirAll(SharedConvertContext.sourceDir, 0755)
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedConvertContext != nil {
			os.RemoveAll(SharedConvertContext.workDir)
		}
		SharedConvertContext = nil
		return c, nil
	})

	ctx.Step(`^the MP3 output directory is empty$`, theMP3OutputDirectoryIsEmpty)
	ctx.Step(`^a video "([^"]*)" with an audio track$`, aVideoWithAnAudioTrack)
	ctx.Step(`^a video "([^"]*)" without an audio track$`, aVideoWithoutAnAudioTrack)
	ctx.Step(`^a corrupt video "([^"]*)"$`, aCorruptVideo)
	ctx.Step(`^I convert "([^"]*)" with bitrate "([^"]*)"$`, iConvertWithBitrate)
	ctx.Step(`^I attempt to convert "([^"]*)" with bitrate "([^"]*)"$`, iAttemptToConvertWithBitrate)
	ctx.Step(`^the conversion should succeed$`, theConversionShouldSucceed)
	ctx.Step(`^the MP3 file "([^"]*)" should exist$`, theMP3FileShouldExist)
	ctx.Step(`^the MP3 content type should be "([^"]*)"$`, theMP3ContentTypeShouldBe)
	ctx.Step(`^ffmpeg should have encoded with bitrate "([^"]*)"$`, ffmpegShouldHaveEncodedWithBitrate)
	ctx.Step(`^no temporary files should remain$`, noTemporaryFilesShouldRemain)
	ctx.Step(`^no MP3 file should be written$`, noMP3FileShouldBeWritten)
	ctx.Step(`^I should see the error "([^"]*)"$`, iShouldSeeTheError)
	ctx.Step(`^I should see an error starting with "([^"]*)"$`, iShouldSeeAnErrorStartingWith)
}

func theMP3OutputDirectoryIsEmpty() error {
	c := getConvertContext()
	return os.MkdirAll(c.outputDir, 0755)
}

func writeVideo(name, content string) error {
	c := getConvertContext()
	return os.WriteFile(filepath.Join(c.sourceDir, name), []byte(content), 0644)
}

func aVideoWithAnAudioTrack(name string) error {
	return writeVideo(name, videoWithAudio)
}

func aVideoWithoutAnAudioTrack(name string) error {
	return writeVideo(name, videoWithoutAudio)
}

func aCorruptVideo(name string) error {
	return writeVideo(name, videoCorrupt)
}

func runConvert(name, bitrate string) error {
	c := getConvertContext()
	logger, _ := logtest.NewNullLogger()
	c.err = cmd.RunConvertWithDependencies(
		context.Background(),
		c.engine,
		c.store,
		logger,
		0,
		c.outputDir,
		bitrate,
		filepath.Join(c.sourceDir, name),
		c.output,
	)
	return c.err
}

func iConvertWithBitrate(name, bitrate string) error {
	if err := runConvert(name, bitrate); err != nil {
		return fmt.Errorf("unexpected error: %v", err)
	}
	return nil
}

func iAttemptToConvertWithBitrate(name, bitrate string) error {
	runConvert(name, bitrate)
	return nil
}

func theConversionShouldSucceed() error {
	c := getConvertContext()
	if c.err != nil {
		return fmt.Errorf("expected success, got: %v", c.err)
	}
	if !strings.Contains(c.output.String(), "Successfully created:") {
		return fmt.Errorf("expected success message in output, got: %s", c.output.String())
	}
	return nil
}

func theMP3FileShouldExist(name string) error {
	c := getConvertContext()
	path := filepath.Join(c.outputDir, name)
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("expected %s to exist: %v", path, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("expected %s to have content", path)
	}
	return nil
}

func theMP3ContentTypeShouldBe(contentType string) error {
	c := getConvertContext()
	if !strings.Contains(c.output.String(), "("+contentType+")") {
		return fmt.Errorf("expected content type %q in output, got: %s", contentType, c.output.String())
	}
	return nil
}

func ffmpegShouldHaveEncodedWithBitrate(bitrate string) error {
	c := getConvertContext()
	encoded := c.engine.encoded()
	if len(encoded) != 1 {
		return fmt.Errorf("expected 1 encode, got %d", len(encoded))
	}
	if encoded[0].String() != bitrate {
		return fmt.Errorf("expected bitrate %q, got %q", bitrate, encoded[0])
	}
	return nil
}

func noTemporaryFilesShouldRemain() error {
	c := getConvertContext()
	entries, err := os.ReadDir(c.store.Dir())
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		return fmt.Errorf("temporary files left behind: %v", names)
	}
	return nil
}

func noMP3FileShouldBeWritten() error {
	c := getConvertContext()
	entries, err := os.ReadDir(c.outputDir)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		return fmt.Errorf("expected no output, found %d file(s)", len(entries))
	}
	return nil
}

func iShouldSeeTheError(message string) error {
	c := getConvertContext()
	if c.err == nil {
		return fmt.Errorf("expected error %q, got none", message)
	}
	if c.err.Error() != message {
		return fmt.Errorf("expected error %q, got %q", message, c.err.Error())
	}
	return nil
}

func iShouldSeeAnErrorStartingWith(prefix string) error {
	c := getConvertContext()
	if c.err == nil {
		return fmt.Errorf("expected error starting with %q, got none", prefix)
	}
	if !strings.HasPrefix(c.err.Error(), prefix) {
		return fmt.Errorf("expected error starting with %q, got %q", prefix, c.err.Error())
	}
	return nil
}
