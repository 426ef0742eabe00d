package services

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// EmbeddedTags holds the metadata atoms found inside a video container.
type EmbeddedTags struct {
	Title   string
	Year    int
	Genre   string
	Comment string
}

// TagReader reads embedded metadata from a media file. ok is false when the
// file carries no usable tags.
type TagReader interface {
	ReadTags(path string) (tags EmbeddedTags, ok bool)
}

// FileTagReader reads MP4-family tags from disk.
type FileTagReader struct{}

func (FileTagReader) ReadTags(path string) (EmbeddedTags, bool) {
	if !taggedExtensions[strings.ToLower(filepath.Ext(path))] {
		return EmbeddedTags{}, false
	}

	f, err := os.Open(path)
	if err != nil {
		slog.Debug("Failed to open file for tags", "path", path, "error", err)
		return EmbeddedTags{}, false
	}
	defer f.Close()

	md, err := tag.ReadFrom(f)
	if err != nil {
		if !errors.Is(err, tag.ErrNoTagsFound) {
			slog.Debug("Failed to read embedded tags", "path", path, "error", err)
		}
		return EmbeddedTags{}, false
	}

	tags := EmbeddedTags{
		Title:   strings.TrimSpace(md.Title()),
		Year:    md.Year(),
		Genre:   strings.TrimSpace(md.Genre()),
		Comment: strings.TrimSpace(md.Comment()),
	}
	if tags == (EmbeddedTags{}) {
		return tags, false
	}
	return tags, true
}

// NoTags is a TagReader that never finds anything.
type NoTags struct{}

func (NoTags) ReadTags(string) (EmbeddedTags, bool) {
	return EmbeddedTags{}, false
}
