package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectQuality(t *testing.T) {
	tests := map[string]string{
		"Movie.2160p.UHD.mkv":       Quality4K,
		"movie.1080p.bluray.mkv":    Quality1080p,
		"Show.S01E01.HDTV.x264.mkv": Quality720p,
		"Movie 480p.avi":            Quality480p,
		"movie.dvdrip.avi":          QualitySD,
		"movie.mkv":                 QualityUnknown,
	}

	for name, want := range tests {
		assert.Equal(t, want, DetectQuality(name), name)
	}
}

func TestCompareQuality(t *testing.T) {
	assert.Equal(t, 1, CompareQuality(Quality4K, Quality1080p))
	assert.Equal(t, -1, CompareQuality(QualityUnknown, QualitySD))
	assert.Equal(t, 0, CompareQuality(Quality720p, Quality720p))
	assert.Equal(t, 0, CompareQuality("bogus", QualityUnknown))
}
