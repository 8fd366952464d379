package conversion

import "context"

// MediaEngine opens media files for decoding.
// This is a port implemented by infrastructure adapters (ffmpeg).
type MediaEngine interface {
	// Open probes the file at path. A file that cannot be parsed is an error.
	Open(ctx context.Context, path string) (MediaSource, error)
}

// MediaSource is an opened media file. Close must be called exactly once.
type MediaSource interface {
	// HasAudio reports whether the media contains an audio stream
	HasAudio() bool
	// EncodeMP3 encodes the audio stream to MP3 at the given bitrate into outputPath
	EncodeMP3(ctx context.Context, bitrate Bitrate, outputPath string) error
	Close() error
}

// TempStorage allocates and removes process-local temporary files
type TempStorage interface {
	// CreateUnique writes data to a new uniquely named file ending in suffix
	CreateUnique(suffix string, data []byte) (string, error)
	// Path returns a path in the temporary area for name without creating it
	Path(name string) string
	ReadFile(path string) ([]byte, error)
	// RemoveIfExists deletes path; a missing file is not an error
	RemoveIfExists(path string) error
}
