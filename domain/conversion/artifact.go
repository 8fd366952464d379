package conversion

// MP3ContentType is the MIME type of every delivered artifact
const MP3ContentType = "audio/mpeg"

// AudioArtifact is the MP3 produced by a successful conversion. It is never cached.
type AudioArtifact struct {
	FileName    string
	ContentType string
	Data        []byte
	Bitrate     Bitrate
}

// Size returns the artifact length in bytes
func (a *AudioArtifact) Size() int64 {
	return int64(len(a.Data))
}
