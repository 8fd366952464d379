package conversion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadedVideo_Extension(t *testing.T) {
	tests := []struct {
		fileName string
		want     string
		allowed  bool
	}{
		{"sample.mp4", "mp4", true},
		{"silent.MOV", "mov", true},
		{"clip.m4v", "m4v", true},
		{"old.avi", "avi", true},
		{"movie.mkv", "mkv", true},
		{"notes.txt", "txt", false},
		{"noext", "", false},
		{"archive.tar.gz", "gz", false},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			u := UploadedVideo{FileName: tt.fileName}
			assert.Equal(t, tt.want, u.Extension())
			assert.Equal(t, tt.allowed, u.HasAllowedExtension())
		})
	}
}

func TestUploadedVideo_Stem(t *testing.T) {
	tests := []struct {
		fileName string
		want     string
	}{
		{"sample.mp4", "sample"},
		{"My Clip.mp4", "My Clip"},
		{"/tmp/uploads/clip.mov", "clip"},
		{`C:\Users\me\clip.mov`, "clip"},
		{"two.dots.mkv", "two.dots"},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.want, UploadedVideo{FileName: tt.fileName}.Stem())
		})
	}
}

func TestSanitizeStem(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "sample", "sample"},
		{"single space", "My Clip", "My_Clip"},
		{"each space replaced", "a  b", "a__b"},
		{"tab", "a\tb", "a_b"},
		{"path separators", "../etc/passwd", ".._etc_passwd"},
		{"backslash", `..\win`, ".._win"},
		{"unsafe characters", `a:b*c?"d<e>f|g`, "a_b_c__d_e_f_g"},
		{"unicode letters kept", "Grüße Köln", "Grüße_Köln"},
		{"empty", "", "audio"},
		{"only dots", "..", "audio"},
		{"hyphen and underscore kept", "take-2_final", "take-2_final"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeStem(tt.input))
		})
	}
}

func TestIsAllowedExtension(t *testing.T) {
	assert.True(t, IsAllowedExtension(".MP4"))
	assert.True(t, IsAllowedExtension("mkv"))
	assert.False(t, IsAllowedExtension(".webm"))
	assert.False(t, IsAllowedExtension(""))
}
