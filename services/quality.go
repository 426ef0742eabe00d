package services

import (
	"regexp"
	"strings"
)

// Quality levels
const (
	Quality4K      = "4k"
	Quality1080p   = "1080p"
	Quality720p    = "720p"
	Quality480p    = "480p"
	QualitySD      = "SD"
	QualityUnknown = "Unknown"
)

var qualityRank = map[string]int{
	Quality4K:      4,
	Quality1080p:   3,
	Quality720p:    2,
	Quality480p:    1,
	QualitySD:      0,
	QualityUnknown: -1,
}

var qualityPatterns = []struct {
	quality string
	re      *regexp.Regexp
}{
	{Quality4K, regexp.MustCompile(`\b(2160p|4k|uhd)\b`)},
	{Quality1080p, regexp.MustCompile(`\b(1080[pi]|fhd)\b`)},
	{Quality720p, regexp.MustCompile(`\b(720p|hdtv)\b`)},
	{Quality480p, regexp.MustCompile(`\b(480p|576p)\b`)},
	{QualitySD, regexp.MustCompile(`\b(dvd|dvdrip|sd|xvid|divx)\b`)},
}

func DetectQuality(filename string) string {
	filename = strings.ToLower(normalizeSeparators(filename))

	for _, p := range qualityPatterns {
		if p.re.MatchString(filename) {
			return p.quality
		}
	}
	return QualityUnknown
}

// CompareQuality returns:
// 1 if q1 > q2
// -1 if q1 < q2
// 0 if q1 == q2
func CompareQuality(q1, q2 string) int {
	v1, ok := qualityRank[q1]
	if !ok {
		v1 = qualityRank[QualityUnknown]
	}
	v2, ok := qualityRank[q2]
	if !ok {
		v2 = qualityRank[QualityUnknown]
	}

	switch {
	case v1 > v2:
		return 1
	case v1 < v2:
		return -1
	default:
		return 0
	}
}
