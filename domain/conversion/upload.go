package conversion

import (
	"path/filepath"
	"strings"
	"unicode"
)

// AllowedExtensions lists the video container extensions accepted for upload (lowercase, no dot)
var AllowedExtensions = []string{"mov", "mp4", "m4v", "avi", "mkv"}

// fallbackStem is used when a file name sanitizes to nothing usable
const fallbackStem = "audio"

// UploadedVideo is a user-submitted file. It lives only for one conversion.
type UploadedVideo struct {
	FileName string
	Content  []byte
}

// Extension returns the lowercase extension of the file name without the dot
func (u UploadedVideo) Extension() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(baseName(u.FileName)), "."))
}

// HasAllowedExtension reports whether the extension is in AllowedExtensions
func (u UploadedVideo) HasAllowedExtension() bool {
	return IsAllowedExtension(u.Extension())
}

// Stem returns the base file name with its extension removed
func (u UploadedVideo) Stem() string {
	name := baseName(u.FileName)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// SafeStem returns the stem made safe for use in a file system path
func (u UploadedVideo) SafeStem() string {
	return SanitizeStem(u.Stem())
}

// IsAllowedExtension reports whether ext (with or without a leading dot) is accepted
func IsAllowedExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// SanitizeStem replaces every whitespace character with an underscore, as does
// every path separator or other character outside letters, digits, '.', '-' and '_'.
// A stem left empty or made only of dots becomes "audio".
func SanitizeStem(stem string) string {
	var b strings.Builder
	b.Grow(len(stem))
	for _, r := range stem {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := b.String()
	if strings.Trim(out, ".") == "" {
		return fallbackStem
	}
	return out
}

// baseName strips any directory part, treating both '/' and '\' as separators
// since browsers on Windows may send full paths.
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return name
}
