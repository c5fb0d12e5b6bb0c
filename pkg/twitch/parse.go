package twitch

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/mediapeek/twitchpeek/internal/domain"
)

// Match patterns like:
// https://www.twitch.tv/videos/1586110158
// https://twitch.tv/videos/1586110158?t=1h2m3s
// https://www.twitch.tv/shroud/video/1586110158 (legacy shape)
var videoRegexp = regexp.MustCompile(`(?i)twitch\.tv/(?:videos|[a-z0-9_]{3,25}/video)/(\d+)`)

// Match patterns like:
// https://www.twitch.tv/shroud
// https://m.twitch.tv/shroud/clips
// twitch.tv/shroud?referrer=raid
var channelRegexp = regexp.MustCompile(`(?i)twitch\.tv/([a-z0-9_]{3,25})(?:[/?#]|$)`)

// handleRegexp validates a bare channel login handed over without a URL.
// Twitch logins are 3 to 25 characters.
var handleRegexp = regexp.MustCompile(`^[a-zA-Z0-9_]{3,25}$`)

// reservedSegments are twitch.tv paths that are site sections, not channels.
var reservedSegments = map[string]struct{}{
	"videos":        {},
	"directory":     {},
	"downloads":     {},
	"friends":       {},
	"jobs":          {},
	"p":             {},
	"settings":      {},
	"subscriptions": {},
	"wallet":        {},
}

// ParseMedia extracts Twitch media identity from a URL or bare handle.
// Video shapes win over channel shapes, so "twitch.tv/videos/123" never
// resolves as a channel named "videos". Channel logins are normalized to
// lowercase.
func ParseMedia(raw string) (domain.Media, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Media{}, domain.ErrEmptyInput
	}

	if m := videoRegexp.FindStringSubmatch(raw); len(m) > 1 {
		return domain.Media{Kind: domain.KindVideo, VideoID: m[1]}, nil
	}

	if m := channelRegexp.FindStringSubmatch(raw); len(m) > 1 {
		login := strings.ToLower(m[1])
		if _, reserved := reservedSegments[login]; reserved {
			return domain.Media{}, domain.ErrNotTwitchMedia
		}
		return domain.Media{Kind: domain.KindChannel, Channel: login}, nil
	}

	// Bare handle: only when the input has no URL structure at all.
	if !strings.ContainsAny(raw, "/.:") && handleRegexp.MatchString(raw) {
		return domain.Media{Kind: domain.KindChannel, Channel: strings.ToLower(raw)}, nil
	}

	return domain.Media{}, domain.ErrNotTwitchMedia
}

// BuildEmbedURL returns the player.twitch.tv src for the given media.
// The parent domain is required by Twitch for embedding on third-party
// sites; an empty parent leaves the parameter out.
func BuildEmbedURL(m domain.Media, parent string) string {
	v := url.Values{}
	switch m.Kind {
	case domain.KindVideo:
		v.Set("video", m.VideoID)
	default:
		v.Set("channel", m.Channel)
	}
	if parent != "" {
		v.Set("parent", parent)
	}
	return "https://player.twitch.tv/?" + v.Encode()
}
