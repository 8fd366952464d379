package conversion

import (
	"fmt"
	"path/filepath"
)

// Request pairs an uploaded video with the selected bitrate. It is immutable once created.
type Request struct {
	upload  UploadedVideo
	bitrate Bitrate
}

// NewRequest creates a Request, defaulting an empty bitrate to DefaultBitrate
func NewRequest(upload UploadedVideo, bitrate Bitrate) (*Request, error) {
	if bitrate == "" {
		bitrate = DefaultBitrate
	}
	if !bitrate.Valid() {
		return nil, &Error{
			Kind: KindInvalidBitrate,
			Op:   "new request",
			Err:  fmt.Errorf("unsupported bitrate %q", string(bitrate)),
		}
	}

	return &Request{upload: upload, bitrate: bitrate}, nil
}

// Upload returns the uploaded video
func (r *Request) Upload() UploadedVideo {
	return r.upload
}

// Bitrate returns the selected bitrate
func (r *Request) Bitrate() Bitrate {
	return r.bitrate
}

// OutputFilename returns the delivered file name: <sanitized-stem>.mp3
func (r *Request) OutputFilename() string {
	return r.upload.SafeStem() + ".mp3"
}

// InputSuffix returns the suffix used for the temporary input file. The original
// extension is kept so the decoder can sniff the container format.
func (r *Request) InputSuffix() string {
	ext := filepath.Ext(baseName(r.upload.FileName))
	return "_" + r.upload.SafeStem() + SanitizeExtension(ext)
}

// SanitizeExtension keeps a leading dot followed by letters and digits only
func SanitizeExtension(ext string) string {
	if ext == "" {
		return ""
	}
	clean := []rune{'.'}
	for _, r := range ext[1:] {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			clean = append(clean, r)
		}
	}
	if len(clean) == 1 {
		return ""
	}
	return string(clean)
}
