package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"video-to-mp3/domain/conversion"
)

// ErrSourceClosed is returned when a closed source is used again
var ErrSourceClosed = errors.New("media source already closed")

// Engine implements conversion.MediaEngine using ffprobe and ffmpeg
type Engine struct {
	ffmpegPath  string
	ffprobePath string
	runner      CommandRunner
}

// EngineOption is a functional option for configuring Engine
type EngineOption func(*Engine)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) EngineOption {
	return func(e *Engine) {
		if path != "" {
			e.ffmpegPath = path
		}
	}
}

// WithFFprobePath sets a custom ffprobe executable path
func WithFFprobePath(path string) EngineOption {
	return func(e *Engine) {
		if path != "" {
			e.ffprobePath = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) EngineOption {
	return func(e *Engine) {
		e.runner = runner
	}
}

// NewEngine creates a new FFmpeg-based media engine
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		runner:      &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Open implements conversion.MediaEngine
func (e *Engine) Open(ctx context.Context, path string) (conversion.MediaSource, error) {
	out, err := e.runner.Output(ctx, e.ffprobePath, probeArgs(path)...)
	if err != nil {
		return nil, conversion.DecodeFailure("probe media", err)
	}

	probe, err := ParseProbe(out)
	if err != nil {
		return nil, conversion.DecodeFailure("probe media", err)
	}
	if len(probe.Streams) == 0 {
		return nil, conversion.DecodeFailure("probe media", fmt.Errorf("no media streams found in %s", path))
	}

	return &source{
		engine:   e,
		path:     path,
		hasAudio: probe.HasAudio(),
	}, nil
}

// VerifyInstalled checks that ffmpeg and ffprobe are available
func (e *Engine) VerifyInstalled(ctx context.Context) error {
	for _, bin := range []string{e.ffmpegPath, e.ffprobePath} {
		if _, err := e.runner.Output(ctx, bin, "-version"); err != nil {
			return fmt.Errorf("%s not found or not executable: %w", bin, err)
		}
	}
	return nil
}

// encodeArgs builds the ffmpeg arguments for extracting the first audio stream as MP3
func encodeArgs(inputPath string, bitrate conversion.Bitrate, outputPath string) []string {
	return []string{
		"-v", "error",
		"-i", inputPath,
		"-vn",                   // No video
		"-map", "0:a:0",         // First audio stream
		"-acodec", "libmp3lame", // MP3 codec
		"-ab", bitrate.String(), // Audio bitrate
		"-y",                    // Overwrite output file if it exists
		outputPath,
	}
}

// source is an opened, probed media file
type source struct {
	engine   *Engine
	path     string
	hasAudio bool

	mu     sync.Mutex
	closed bool
}

func (s *source) HasAudio() bool {
	return s.hasAudio
}

func (s *source) EncodeMP3(ctx context.Context, bitrate conversion.Bitrate, outputPath string) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrSourceClosed
	}
	if !s.hasAudio {
		return conversion.NoAudioTrack("encode mp3")
	}

	if err := s.engine.runner.Run(ctx, s.engine.ffmpegPath, encodeArgs(s.path, bitrate, outputPath)...); err != nil {
		return conversion.DecodeFailure("encode mp3", err)
	}
	return nil
}

func (s *source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSourceClosed
	}
	s.closed = true
	return nil
}

// Ensure Engine implements conversion.MediaEngine
var _ conversion.MediaEngine = (*Engine)(nil)
