package twitch

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mediapeek/twitchpeek/internal/domain"
)

// resolutionRegexp matches levels like "720p", "720p60", "1080p60fps".
var resolutionRegexp = regexp.MustCompile(`^(\d{3,4})p(\d{2,3})?`)

// ParseQuality normalizes a raw Twitch quality level string into a Quality
// object. It understands "chunked"/"source" as the original broadcast,
// "auto" as the adaptive level, and "audio_only"/"audio only".
// Unparseable levels return false.
func ParseQuality(level string) (domain.Quality, bool) {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if normalized == "" {
		return domain.Quality{}, false
	}

	switch normalized {
	case "chunked", "source":
		return domain.Quality{Level: normalized, Source: true}, true
	case "auto":
		return domain.Quality{Level: normalized, Auto: true}, true
	case "audio_only", "audio only", "audio":
		return domain.Quality{Level: "audio_only", AudioOnly: true}, true
	}

	m := resolutionRegexp.FindStringSubmatch(normalized)
	if m == nil {
		return domain.Quality{}, false
	}

	height, err := strconv.Atoi(m[1])
	if err != nil {
		return domain.Quality{}, false
	}

	fps := 30
	if m[2] != "" {
		fps, err = strconv.Atoi(m[2])
		if err != nil {
			return domain.Quality{}, false
		}
	}

	return domain.Quality{Level: normalized, Height: height, FPS: fps}, true
}

// AdaptQualities converts the raw quality level list reported by the embed
// player into normalized Quality objects: unparseable levels are dropped,
// duplicates collapse to one, and the result is sorted for display.
func AdaptQualities(levels []string) ([]domain.Quality, error) {
	seen := make(map[string]struct{}, len(levels))
	qualities := make([]domain.Quality, 0, len(levels))

	for _, level := range levels {
		q, ok := ParseQuality(level)
		if !ok {
			continue
		}
		if _, dup := seen[q.Level]; dup {
			continue
		}
		seen[q.Level] = struct{}{}
		qualities = append(qualities, q)
	}

	if len(qualities) == 0 {
		return nil, domain.ErrNoQualities
	}

	SortQualities(qualities)
	return qualities, nil
}

// SortQualities orders qualities for display: source first, then by height
// and frame rate descending, with audio_only and auto trailing.
func SortQualities(qualities []domain.Quality) {
	sort.SliceStable(qualities, func(i, j int) bool {
		return qualityRank(qualities[i]) > qualityRank(qualities[j])
	})
}

// BestMatch returns the highest quality whose height does not exceed
// maxHeight. Source counts as unbounded height. When everything exceeds
// the cap, the lowest video quality is returned.
func BestMatch(qualities []domain.Quality, maxHeight int) (domain.Quality, bool) {
	var best domain.Quality
	var lowest domain.Quality
	found := false
	haveVideo := false

	for _, q := range qualities {
		if q.AudioOnly || q.Auto {
			continue
		}
		if !haveVideo || qualityRank(q) < qualityRank(lowest) {
			lowest = q
			haveVideo = true
		}
		if q.Source {
			continue
		}
		if q.Height <= maxHeight && (!found || qualityRank(q) > qualityRank(best)) {
			best = q
			found = true
		}
	}

	if found {
		return best, true
	}
	if haveVideo {
		return lowest, true
	}
	return domain.Quality{}, false
}

// qualityRank produces a comparable ordering weight for a quality level.
func qualityRank(q domain.Quality) int {
	switch {
	case q.Source:
		return 1 << 30
	case q.AudioOnly:
		return -1
	case q.Auto:
		return -2
	}
	return q.Height*1000 + q.FPS
}
