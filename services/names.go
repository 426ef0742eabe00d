package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// "Title (2004)" or "Title [2004]", anything after the year is ignored.
	bracketYearRegex = regexp.MustCompile(`^(.*?)\s*[\(\[]((?:19|20)\d{2})[\)\]]`)
	bareYearRegex    = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

	releaseTagRegex = regexp.MustCompile(`(?i)\b(2160p|1080[pi]|720p|576p|480p|4k|uhd|bluray|blu ray|brrip|bdrip|web ?dl|web ?rip|hdtv|hdrip|dvdrip|dvdscr|xvid|divx|x ?264|x ?265|h ?264|h ?265|hevc|10bit|remux|proper|repack|extended|unrated|imax)\b`)

	seasonEpisodeRegex = regexp.MustCompile(`(?i)\bs(\d{1,2})[ ._-]?e(\d{1,3})\b`)
	crossEpisodeRegex  = regexp.MustCompile(`(?i)\b(\d{1,2})x(\d{2,3})\b`)
	seasonDirRegex     = regexp.MustCompile(`(?i)^(?:season|series|s)[ ._-]*(\d{1,3})$`)

	spaceRegex = regexp.MustCompile(`\s+`)
)

// ParseMovieName extracts a title and year from a file or directory name
// without extension. Year is 0 when none is found.
func ParseMovieName(name string) (string, int) {
	if matches := bracketYearRegex.FindStringSubmatch(name); len(matches) == 3 {
		year, _ := strconv.Atoi(matches[2])
		if title := cleanName(matches[1]); title != "" {
			return title, year
		}
	}

	normalized := normalizeSeparators(name)

	// The year is the last year-like token before the release tags, so a year
	// inside the title ("Blade Runner 2049 2017") stays in the title. A year at
	// the very start is part of the title ("2001 A Space Odyssey").
	end := len(normalized)
	if tag := releaseTagRegex.FindStringIndex(normalized); tag != nil {
		end = tag[0]
	}
	var best []int
	for _, loc := range bareYearRegex.FindAllStringSubmatchIndex(normalized, -1) {
		if loc[0] == 0 {
			continue
		}
		if loc[1] > end {
			if best == nil {
				best = loc
			}
			break
		}
		best = loc
	}
	if best != nil {
		year, _ := strconv.Atoi(normalized[best[2]:best[3]])
		if title := cleanName(normalized[:best[0]]); title != "" {
			return title, year
		}
	}

	return cleanName(stripReleaseTags(normalized)), 0
}

// ParseShowName extracts a show name and optional year from a show directory name.
func ParseShowName(name string) (string, int) {
	return ParseMovieName(name)
}

// EpisodeInfo is what can be learned about an episode from its file name.
type EpisodeInfo struct {
	Season  int
	Episode int
	Title   string
}

// ParseEpisodeName parses "S01E02" and "1x02" style names. ok is false when
// neither marker is present; Title then holds the cleaned file name.
func ParseEpisodeName(name string) (EpisodeInfo, bool) {
	normalized := normalizeSeparators(name)

	loc := seasonEpisodeRegex.FindStringSubmatchIndex(normalized)
	if loc == nil {
		loc = crossEpisodeRegex.FindStringSubmatchIndex(normalized)
	}
	if loc == nil {
		return EpisodeInfo{Title: cleanName(stripReleaseTags(normalized))}, false
	}

	season, _ := strconv.Atoi(normalized[loc[2]:loc[3]])
	episode, _ := strconv.Atoi(normalized[loc[4]:loc[5]])

	title := cleanName(stripReleaseTags(normalized[loc[1]:]))
	if title == "" {
		title = fmt.Sprintf("Episode %d", episode)
	}

	return EpisodeInfo{Season: season, Episode: episode, Title: title}, true
}

// ParseSeasonDir returns the season number for folders like "Season 2", "S02"
// or "Specials".
func ParseSeasonDir(name string) (int, bool) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "specials") {
		return 0, true
	}
	matches := seasonDirRegex.FindStringSubmatch(name)
	if len(matches) < 2 {
		return 0, false
	}
	season, _ := strconv.Atoi(matches[1])
	return season, true
}

func normalizeSeparators(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || r == '_' {
			return ' '
		}
		return r
	}, name)
}

func stripReleaseTags(name string) string {
	if loc := releaseTagRegex.FindStringIndex(name); loc != nil {
		return name[:loc[0]]
	}
	return name
}

func cleanName(name string) string {
	name = spaceRegex.ReplaceAllString(name, " ")
	name = strings.Trim(name, " -[](){}")
	if name == strings.ToLower(name) {
		// Casers keep state, so one per call.
		name = cases.Title(language.English).String(name)
	}
	return name
}
