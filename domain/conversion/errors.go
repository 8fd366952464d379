package conversion

import (
	"errors"
	"fmt"
)

// Kind classifies a conversion failure
type Kind int

const (
	KindDecodeFailure Kind = iota + 1
	KindNoAudioTrack
	KindIOFailure
	KindInvalidBitrate
)

func (k Kind) String() string {
	switch k {
	case KindNoAudioTrack:
		return "no_audio_track"
	case KindDecodeFailure:
		return "decode_failure"
	case KindIOFailure:
		return "io_failure"
	case KindInvalidBitrate:
		return "invalid_bitrate"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks against a *Error of the matching kind
var (
	ErrNoAudioTrack   = errors.New("no audio track found in this video")
	ErrDecodeFailure  = errors.New("media could not be decoded")
	ErrIOFailure      = errors.New("temporary storage failure")
	ErrInvalidBitrate = errors.New("invalid bitrate")
)

// Error is a conversion failure of a specific Kind
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.sentinel())
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindNoAudioTrack:
		return ErrNoAudioTrack
	case KindDecodeFailure:
		return ErrDecodeFailure
	case KindIOFailure:
		return ErrIOFailure
	case KindInvalidBitrate:
		return ErrInvalidBitrate
	default:
		return nil
	}
}

// NoAudioTrack reports that the input has no audio stream
func NoAudioTrack(op string) *Error {
	return &Error{Kind: KindNoAudioTrack, Op: op}
}

// DecodeFailure wraps a decoder or encoder diagnostic
func DecodeFailure(op string, err error) *Error {
	return &Error{Kind: KindDecodeFailure, Op: op, Err: err}
}

// IOFailure wraps a temporary storage error
func IOFailure(op string, err error) *Error {
	return &Error{Kind: KindIOFailure, Op: op, Err: err}
}

// KindOf returns the Kind of err, or 0 when err is not a conversion error
func KindOf(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return 0
}

// UserMessage turns any conversion error into the message shown to the user
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var cerr *Error
	if !errors.As(err, &cerr) {
		return fmt.Sprintf("Conversion failed: %v", err)
	}

	switch cerr.Kind {
	case KindNoAudioTrack:
		return "No audio track found in this video."
	case KindInvalidBitrate:
		return fmt.Sprintf("Invalid bitrate: %v", cerr.Err)
	default:
		if cerr.Err != nil {
			return fmt.Sprintf("Conversion failed: %v", cerr.Err)
		}
		return fmt.Sprintf("Conversion failed: %v", cerr.sentinel())
	}
}
