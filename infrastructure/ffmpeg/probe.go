package ffmpeg

import (
	"encoding/json"
	"fmt"
)

// Stream is the subset of an ffprobe stream entry we use
type Stream struct {
	Index     int    `json:"index"`
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
}

// ProbeResult is the parsed output of `ffprobe -show_entries stream=... -of json`
type ProbeResult struct {
	Streams []Stream `json:"streams"`
}

// ParseProbe parses ffprobe JSON output
func ParseProbe(data []byte) (*ProbeResult, error) {
	var result ProbeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &result, nil
}

// HasAudio returns true if any stream is an audio stream
func (p *ProbeResult) HasAudio() bool {
	for _, s := range p.Streams {
		if s.CodecType == "audio" {
			return true
		}
	}
	return false
}

// probeArgs builds the ffprobe arguments that list stream types for path
func probeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "stream=index,codec_type,codec_name",
		"-of", "json",
		path,
	}
}
