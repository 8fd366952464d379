//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	appconversion "video-to-mp3/application/conversion"
	"video-to-mp3/domain/conversion"
	"video-to-mp3/infrastructure/filesystem"
	"video-to-mp3/infrastructure/web"

	"github.com/cucumber/godog"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

// webContext holds test state for web scenarios
type webContext struct {
	tempDir string
	server  *httptest.Server
	status  int
	header  http.Header
	body    string
}

// SharedWebContext is reset before each scenario via Before hook
var SharedWebContext *webContext

func getWebContext() *webContext {
	return SharedWebContext
}

func InitializeWebScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		SharedWebContext = &webContext{}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		w := SharedWebContext
		if w != nil {
			if w.server != nil {
				w.server.Close()
			}
			if w.tempDir != "" {
				os.RemoveAll(w.tempDir)
			}
		}
		SharedWebContext = nil
		return c, nil
	})

	ctx.Step(`^the conversion web server is running$`, theConversionWebServerIsRunning)
	ctx.Step(`^I open the conversion page$`, iOpenTheConversionPage)
	ctx.Step(`^I upload "([^"]*)" with audio and bitrate "([^"]*)"$`, iUploadWithAudioAndBitrate)
	ctx.Step(`^I upload "([^"]*)" without audio and bitrate "([^"]*)"$`, iUploadWithoutAudioAndBitrate)
	ctx.Step(`^the response status should be (\d+)$`, theResponseStatusShouldBe)
	ctx.Step(`^the download should be named "([^"]*)"$`, theDownloadShouldBeNamed)
	ctx.Step(`^the response content type should be "([^"]*)"$`, theResponseContentTypeShouldBe)
	ctx.Step(`^the page should show "([^"]*)"$`, thePageShouldShow)
	ctx.Step(`^the page should offer the bitrates "([^"]*)"$`, thePageShouldOfferTheBitrates)
	ctx.Step(`^the page should accept "([^"]*)"$`, thePageShouldAccept)
}

func theConversionWebServerIsRunning() error {
	w := getWebContext()
	tempDir, err := os.MkdirTemp("", "web-test-*")
	if err != nil {
		return err
	}
	w.tempDir = tempDir

	store, err := filesystem.NewTempStore(tempDir)
	if err != nil {
		return err
	}
	logger, _ := logtest.NewNullLogger()
	service := appconversion.NewService(&fakeMediaEngine{}, store, appconversion.WithLogger(logger))
	server := web.New(service, web.Options{
		MaxUploadBytes: 1 << 20,
		DefaultBitrate: conversion.DefaultBitrate,
	}, logger)
	w.server = httptest.NewServer(server.Handler())
	return nil
}

func (w *webContext) record(resp *http.Response) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	w.status = resp.StatusCode
	w.header = resp.Header
	w.body = string(body)
	return nil
}

func iOpenTheConversionPage() error {
	w := getWebContext()
	resp, err := http.Get(w.server.URL + "/")
	if err != nil {
		return err
	}
	return w.record(resp)
}

func upload(name, content, bitrate string) error {
	w := getWebContext()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := part.Write([]byte(content)); err != nil {
		return err
	}
	if err := mw.WriteField("bitrate", bitrate); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	resp, err := http.Post(w.server.URL+"/convert", mw.FormDataContentType(), &buf)
	if err != nil {
		return err
	}
	return w.record(resp)
}

func iUploadWithAudioAndBitrate(name, bitrate string) error {
	return upload(name, videoWithAudio, bitrate)
}

func iUploadWithoutAudioAndBitrate(name, bitrate string) error {
	return upload(name, videoWithoutAudio, bitrate)
}

func theResponseStatusShouldBe(status int) error {
	w := getWebContext()
	if w.status != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, w.status, w.body)
	}
	return nil
}

func theDownloadShouldBeNamed(name string) error {
	w := getWebContext()
	disposition, params, err := mime.ParseMediaType(w.header.Get("Content-Disposition"))
	if err != nil {
		return fmt.Errorf("invalid Content-Disposition: %w", err)
	}
	if disposition != "attachment" || params["filename"] != name {
		return fmt.Errorf("expected attachment %q, got %s %v", name, disposition, params)
	}
	return nil
}

func theResponseContentTypeShouldBe(contentType string) error {
	w := getWebContext()
	if got := w.header.Get("Content-Type"); got != contentType {
		return fmt.Errorf("expected content type %q, got %q", contentType, got)
	}
	return nil
}

func thePageShouldShow(text string) error {
	w := getWebContext()
	if !strings.Contains(w.body, text) {
		return fmt.Errorf("expected page to contain %q", text)
	}
	return nil
}

func thePageShouldOfferTheBitrates(list string) error {
	w := getWebContext()
	for _, b := range strings.Split(list, ",") {
		option := fmt.Sprintf(`<option value="%s"`, strings.TrimSpace(b))
		if !strings.Contains(w.body, option) {
			return fmt.Errorf("expected bitrate option %s", option)
		}
	}
	return nil
}

func thePageShouldAccept(accept string) error {
	w := getWebContext()
	if !strings.Contains(w.body, fmt.Sprintf(`accept="%s"`, accept)) {
		return fmt.Errorf("expected file input to accept %q", accept)
	}
	return nil
}
