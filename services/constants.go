package services

import (
	"path/filepath"
	"strings"
)

var (
	// VideoExtensions defines the file extensions picked up by the scanner.
	VideoExtensions = map[string]bool{
		".mp4":  true,
		".mkv":  true,
		".avi":  true,
		".mov":  true,
		".wmv":  true,
		".m4v":  true,
		".flv":  true,
		".webm": true,
	}

	// taggedExtensions are containers dhowden/tag can read metadata atoms from.
	taggedExtensions = map[string]bool{
		".mp4": true,
		".m4v": true,
		".mov": true,
	}
)

// IsVideoFile reports whether name has a known video extension.
func IsVideoFile(name string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(name))]
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
