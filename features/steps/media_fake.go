//go:build integration

package steps

import (
	"context"
	"errors"
	"os"
	"sync"

	"video-to-mp3/domain/conversion"
)

// Video fixtures are plain files whose content tells the fake engine how to behave
const (
	videoWithAudio    = "video+audio"
	videoWithoutAudio = "video-only"
	videoCorrupt      = "garbage"
)

// fakeMediaEngine implements conversion.MediaEngine without ffmpeg
type fakeMediaEngine struct {
	mu       sync.Mutex
	bitrates []conversion.Bitrate
}

func (e *fakeMediaEngine) Open(ctx context.Context, path string) (conversion.MediaSource, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if string(content) == videoCorrupt {
		return nil, conversion.DecodeFailure("probe media", errors.New("Invalid data found when processing input"))
	}
	return &fakeMediaSource{engine: e, hasAudio: string(content) == videoWithAudio}, nil
}

func (e *fakeMediaEngine) encoded() []conversion.Bitrate {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]conversion.Bitrate(nil), e.bitrates...)
}

type fakeMediaSource struct {
	engine   *fakeMediaEngine
	hasAudio bool
}

func (s *fakeMediaSource) HasAudio() bool { return s.hasAudio }

func (s *fakeMediaSource) EncodeMP3(ctx context.Context, bitrate conversion.Bitrate, outputPath string) error {
	if !s.hasAudio {
		return conversion.NoAudioTrack("encode mp3")
	}
	s.engine.mu.Lock()
	s.engine.bitrates = append(s.engine.bitrates, bitrate)
	s.engine.mu.Unlock()
	return os.WriteFile(outputPath, []byte("ID3"+bitrate.String()), 0600)
}

func (s *fakeMediaSource) Close() error { return nil }
