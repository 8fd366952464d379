package conversion

import (
	"fmt"
	"strings"
)

// Bitrate is a target MP3 encoding rate in ffmpeg notation (e.g. "192k")
type Bitrate string

const (
	Bitrate320 Bitrate = "320k"
	Bitrate192 Bitrate = "192k"
	Bitrate128 Bitrate = "128k"
)

// DefaultBitrate is used when no bitrate is selected
const DefaultBitrate = Bitrate192

// Bitrates returns the supported bitrates, highest first
func Bitrates() []Bitrate {
	return []Bitrate{Bitrate320, Bitrate192, Bitrate128}
}

// ParseBitrate validates a bitrate selection. An empty selection yields DefaultBitrate.
func ParseBitrate(s string) (Bitrate, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultBitrate, nil
	}

	for _, b := range Bitrates() {
		if string(b) == s {
			return b, nil
		}
	}

	return "", &Error{
		Kind: KindInvalidBitrate,
		Op:   "parse bitrate",
		Err:  fmt.Errorf("unsupported bitrate %q: expected one of 320k, 192k, 128k", s),
	}
}

// Valid reports whether b is one of the supported bitrates
func (b Bitrate) Valid() bool {
	for _, known := range Bitrates() {
		if b == known {
			return true
		}
	}
	return false
}

// String returns the ffmpeg notation of the bitrate
func (b Bitrate) String() string {
	return string(b)
}
