package ffmpeg

import (
	"context"
	"errors"
	"testing"

	"video-to-mp3/domain/conversion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRunner records invocations and returns canned results
type mockRunner struct {
	calls     []call
	output    []byte
	outputErr error
	runErr    error
}

type call struct {
	name string
	args []string
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) error {
	m.calls = append(m.calls, call{name: name, args: args})
	return m.runErr
}

func (m *mockRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, call{name: name, args: args})
	if m.outputErr != nil {
		return nil, m.outputErr
	}
	return m.output, nil
}

const probeWithAudio = `{"streams":[{"index":0,"codec_type":"video","codec_name":"h264"},{"index":1,"codec_type":"audio","codec_name":"aac"}]}`
const probeVideoOnly = `{"streams":[{"index":0,"codec_type":"video","codec_name":"h264"}]}`

func TestEngine_Open(t *testing.T) {
	tests := []struct {
		name      string
		output    string
		outputErr error
		wantAudio bool
		wantKind  conversion.Kind
	}{
		{name: "video with audio", output: probeWithAudio, wantAudio: true},
		{name: "video without audio", output: probeVideoOnly, wantAudio: false},
		{name: "ffprobe fails", outputErr: &CommandError{Name: "ffprobe", Err: errors.New("exit status 1"), Stderr: "Invalid data found when processing input"}, wantKind: conversion.KindDecodeFailure},
		{name: "unparseable output", output: "not json", wantKind: conversion.KindDecodeFailure},
		{name: "no streams", output: `{"streams":[]}`, wantKind: conversion.KindDecodeFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{output: []byte(tt.output), outputErr: tt.outputErr}
			engine := NewEngine(WithCommandRunner(runner), WithFFprobePath("/opt/bin/ffprobe"))

			src, err := engine.Open(context.Background(), "/tmp/in.mp4")

			require.Len(t, runner.calls, 1)
			assert.Equal(t, "/opt/bin/ffprobe", runner.calls[0].name)
			assert.Equal(t, "/tmp/in.mp4", runner.calls[0].args[len(runner.calls[0].args)-1])

			if tt.wantKind != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, conversion.KindOf(err))
				assert.Nil(t, src)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAudio, src.HasAudio())
			assert.NoError(t, src.Close())
		})
	}
}

func TestEngine_OpenKeepsDiagnostic(t *testing.T) {
	runner := &mockRunner{outputErr: &CommandError{Name: "ffprobe", Err: errors.New("exit status 1"), Stderr: "moov atom not found"}}
	engine := NewEngine(WithCommandRunner(runner))

	_, err := engine.Open(context.Background(), "/tmp/in.mp4")

	require.Error(t, err)
	assert.Equal(t, "Conversion failed: moov atom not found", conversion.UserMessage(err))
}

func TestSource_EncodeMP3(t *testing.T) {
	runner := &mockRunner{output: []byte(probeWithAudio)}
	engine := NewEngine(WithCommandRunner(runner), WithFFmpegPath("/opt/bin/ffmpeg"))

	src, err := engine.Open(context.Background(), "/tmp/in.mp4")
	require.NoError(t, err)

	err = src.EncodeMP3(context.Background(), conversion.Bitrate320, "/tmp/out.mp3")
	require.NoError(t, err)

	require.Len(t, runner.calls, 2)
	encode := runner.calls[1]
	assert.Equal(t, "/opt/bin/ffmpeg", encode.name)
	assert.Equal(t, []string{
		"-v", "error",
		"-i", "/tmp/in.mp4",
		"-vn",
		"-map", "0:a:0",
		"-acodec", "libmp3lame",
		"-ab", "320k",
		"-y",
		"/tmp/out.mp3",
	}, encode.args)
}

func TestSource_EncodeMP3Failure(t *testing.T) {
	runner := &mockRunner{
		output: []byte(probeWithAudio),
		runErr: &CommandError{Name: "ffmpeg", Err: errors.New("exit status 1"), Stderr: "Error while decoding stream"},
	}
	engine := NewEngine(WithCommandRunner(runner))

	src, err := engine.Open(context.Background(), "/tmp/in.mp4")
	require.NoError(t, err)

	err = src.EncodeMP3(context.Background(), conversion.Bitrate128, "/tmp/out.mp3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, conversion.ErrDecodeFailure))
	assert.Contains(t, err.Error(), "Error while decoding stream")
}

func TestSource_EncodeMP3WithoutAudio(t *testing.T) {
	runner := &mockRunner{output: []byte(probeVideoOnly)}
	engine := NewEngine(WithCommandRunner(runner))

	src, err := engine.Open(context.Background(), "/tmp/in.mov")
	require.NoError(t, err)

	err = src.EncodeMP3(context.Background(), conversion.DefaultBitrate, "/tmp/out.mp3")
	assert.True(t, errors.Is(err, conversion.ErrNoAudioTrack))
	assert.Len(t, runner.calls, 1, "ffmpeg must not run without an audio stream")
}

func TestSource_CloseTwice(t *testing.T) {
	runner := &mockRunner{output: []byte(probeWithAudio)}
	src, err := NewEngine(WithCommandRunner(runner)).Open(context.Background(), "/tmp/in.mp4")
	require.NoError(t, err)

	require.NoError(t, src.Close())
	assert.ErrorIs(t, src.Close(), ErrSourceClosed)
	assert.ErrorIs(t, src.EncodeMP3(context.Background(), conversion.DefaultBitrate, "/tmp/out.mp3"), ErrSourceClosed)
}

func TestEngine_VerifyInstalled(t *testing.T) {
	runner := &mockRunner{}
	engine := NewEngine(WithCommandRunner(runner))
	require.NoError(t, engine.VerifyInstalled(context.Background()))
	require.Len(t, runner.calls, 2)
	assert.Equal(t, "ffmpeg", runner.calls[0].name)
	assert.Equal(t, "ffprobe", runner.calls[1].name)
	assert.Equal(t, []string{"-version"}, runner.calls[0].args)

	failing := &mockRunner{outputErr: errors.New("executable file not found in $PATH")}
	err := NewEngine(WithCommandRunner(failing)).VerifyInstalled(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ffmpeg not found or not executable")
}

func TestParseProbe(t *testing.T) {
	result, err := ParseProbe([]byte(probeWithAudio))
	require.NoError(t, err)
	require.Len(t, result.Streams, 2)
	assert.Equal(t, "aac", result.Streams[1].CodecName)
	assert.True(t, result.HasAudio())

	_, err = ParseProbe([]byte("{"))
	assert.Error(t, err)
}

func TestCommandError(t *testing.T) {
	cause := errors.New("exit status 1")
	err := &CommandError{Name: "ffmpeg", Err: cause}
	assert.Equal(t, "ffmpeg: exit status 1", err.Error())
	assert.ErrorIs(t, err, cause)

	err.Stderr = "bad input"
	assert.Equal(t, "bad input", err.Error())
}

func TestLastLines(t *testing.T) {
	assert.Equal(t, "c\nd", lastLines("a\nb\nc\nd\n", 2))
	assert.Equal(t, "only", lastLines("  only  ", 5))
	assert.Equal(t, "", lastLines("", 5))
}
