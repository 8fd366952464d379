package conversion

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"no audio", NoAudioTrack("probe"), ErrNoAudioTrack},
		{"decode", DecodeFailure("open", errors.New("moov atom not found")), ErrDecodeFailure},
		{"io", IOFailure("write input", errors.New("disk full")), ErrIOFailure},
		{"wrapped", fmt.Errorf("convert: %w", IOFailure("read", errors.New("eof"))), ErrIOFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.target))
			for _, other := range []error{ErrNoAudioTrack, ErrDecodeFailure, ErrIOFailure, ErrInvalidBitrate} {
				if other != tt.target {
					assert.False(t, errors.Is(tt.err, other), "should not match %v", other)
				}
			}
		})
	}
}

func TestError_UnwrapKeepsDiagnostic(t *testing.T) {
	cause := errors.New("permission denied")
	err := IOFailure("write input", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "write input: permission denied", err.Error())
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"no audio", NoAudioTrack("probe"), "No audio track found in this video."},
		{"decode with diagnostic", DecodeFailure("open", errors.New("Invalid data found when processing input")), "Conversion failed: Invalid data found when processing input"},
		{"decode without diagnostic", DecodeFailure("open", nil), "Conversion failed: media could not be decoded"},
		{"io", IOFailure("write", errors.New("no space left on device")), "Conversion failed: no space left on device"},
		{"foreign error", errors.New("boom"), "Conversion failed: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "no_audio_track", KindNoAudioTrack.String())
	assert.Equal(t, "decode_failure", KindDecodeFailure.String())
	assert.Equal(t, "io_failure", KindIOFailure.String())
	assert.Equal(t, "invalid_bitrate", KindInvalidBitrate.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
